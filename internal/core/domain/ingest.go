package domain

import "time"

// Default source layout of the claim datasets
const (
	DefaultTextColumn  = "tweet_text"
	DefaultIDColumn    = "tweet_id"
	DefaultLabelColumn = "class_label"
)

// DefaultSourceFiles are the dataset files loaded when none are given
var DefaultSourceFiles = []string{"claim_dataset.tsv", "checkworthiness_dataset.tsv"}

// IngestRequest configures one ingestion run
type IngestRequest struct {
	// DataDir is joined with relative entries of Files
	DataDir string `json:"data_dir"`

	// Files to load, in order. Defaults to DefaultSourceFiles.
	Files []string `json:"files"`

	// Reset clears the index before writing. Without it, new entries are
	// appended and entries whose ID already exists are left untouched.
	Reset bool `json:"reset"`

	// SanityQuery, when set, is run as a k=2 similarity search after ingestion
	SanityQuery string `json:"sanity_query,omitempty"`
}

// IngestResult summarises an ingestion run
type IngestResult struct {
	RunID        string         `json:"run_id"`
	FilesLoaded  int            `json:"files_loaded"`
	FilesSkipped int            `json:"files_skipped"`
	RowsLoaded   int            `json:"rows_loaded"`
	RowsSkipped  int            `json:"rows_skipped"`
	Records      int            `json:"records"`
	Chunks       int            `json:"chunks"`
	EntriesAdded int            `json:"entries_added"`
	Duration     time.Duration  `json:"duration" swaggertype:"integer"`
	SanityHits   []*QueryResult `json:"sanity_hits,omitempty"`
}
