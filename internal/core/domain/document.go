package domain

import (
	"encoding/hex"
	"strconv"

	"golang.org/x/crypto/blake2b"
)

// Well-known metadata keys carried by every chunk and index entry
const (
	MetaSourceFilename = "source_filename"
	MetaRecordID       = "record_id"
	MetaClassLabel     = "class_label"
	MetaStartIndex     = "start_index"
)

// Chunk is a contiguous substring of a record's normalized text
type Chunk struct {
	Text           string            `json:"text"`
	RecordID       string            `json:"record_id"`
	ClassLabel     string            `json:"class_label,omitempty"`
	SourceFilename string            `json:"source_filename"`
	Row            int               `json:"row"`
	Position       int               `json:"position"`    // Chunk ordinal within the record
	StartIndex     int               `json:"start_index"` // Offset in characters, not bytes
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// EntryMetadata flattens the chunk provenance into the metadata map stored with its index entry.
// Passthrough columns are copied first so the well-known keys always win.
func (c *Chunk) EntryMetadata() map[string]string {
	meta := make(map[string]string, len(c.Metadata)+4)
	for k, v := range c.Metadata {
		meta[k] = v
	}
	meta[MetaSourceFilename] = c.SourceFilename
	meta[MetaRecordID] = c.RecordID
	meta[MetaStartIndex] = strconv.Itoa(c.StartIndex)
	if c.ClassLabel != "" {
		meta[MetaClassLabel] = c.ClassLabel
	}
	return meta
}

// IndexEntry is a persisted (embedding, text, metadata) triple.
// Entries are immutable once written.
type IndexEntry struct {
	ID        string            `json:"id"`
	Seq       int64             `json:"seq"` // Insertion order, assigned by the index
	Text      string            `json:"text"`
	Metadata  map[string]string `json:"metadata"`
	Embedding []float32         `json:"embedding,omitempty"`
}

// NewIndexEntry builds the entry for an embedded chunk
func NewIndexEntry(chunk *Chunk, embedding []float32) *IndexEntry {
	return &IndexEntry{
		ID:        EntryID(chunk),
		Text:      chunk.Text,
		Metadata:  chunk.EntryMetadata(),
		Embedding: embedding,
	}
}

// EntryID derives a stable identifier from a chunk's provenance and text.
// Ingesting the same source twice yields the same IDs.
func EntryID(chunk *Chunk) string {
	h, _ := blake2b.New(16, nil)
	for _, part := range []string{
		chunk.SourceFilename,
		chunk.RecordID,
		strconv.Itoa(chunk.Row),
		strconv.Itoa(chunk.StartIndex),
		chunk.Text,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// IndexInfo describes the embedding space an index was built with
type IndexInfo struct {
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
	Entries    int    `json:"entries"`
}
