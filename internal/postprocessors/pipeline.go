package postprocessors

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Splitter = (*Pipeline)(nil)

// Pipeline implements Splitter.
// It chains multiple post-processors in order, starting with a Chunker.
type Pipeline struct {
	mu         sync.RWMutex
	processors []driven.PostProcessor
	sorted     bool
}

// NewPipeline creates a new post-processor pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{
		processors: make([]driven.PostProcessor, 0),
	}
}

// Add adds a processor to the pipeline.
// Processors are sorted by Order() before processing.
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processors = append(p.processors, processor)
	p.sorted = false
}

// Split applies all processors to each document independently.
// Output chunks keep document order and carry their record's provenance.
func (p *Pipeline) Split(documents []driven.Document) []domain.Chunk {
	processors := p.ordered()

	var result []domain.Chunk
	for _, doc := range documents {
		if doc.Text == "" {
			continue
		}

		// Start with a single chunk containing the whole text
		chunks := []domain.Chunk{seedChunk(doc)}
		for _, proc := range processors {
			chunks = proc.Process(chunks)
		}
		result = append(result, chunks...)
	}

	return result
}

// List returns processor names in order.
func (p *Pipeline) List() []string {
	processors := p.ordered()

	names := make([]string, len(processors))
	for i, proc := range processors {
		names[i] = proc.Name()
	}
	return names
}

func (p *Pipeline) ordered() []driven.PostProcessor {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.sorted {
		sort.SliceStable(p.processors, func(i, j int) bool {
			return p.processors[i].Order() < p.processors[j].Order()
		})
		p.sorted = true
	}

	processors := make([]driven.PostProcessor, len(p.processors))
	copy(processors, p.processors)
	return processors
}

func seedChunk(doc driven.Document) domain.Chunk {
	chunk := domain.Chunk{Text: doc.Text}
	if r := doc.Record; r != nil {
		chunk.RecordID = r.ID
		chunk.ClassLabel = r.ClassLabel
		chunk.SourceFilename = r.SourceFilename
		chunk.Row = r.Row
		if len(r.Fields) > 0 {
			chunk.Metadata = make(map[string]string, len(r.Fields))
			for k, v := range r.Fields {
				chunk.Metadata[k] = v
			}
		}
	}
	return chunk
}

// DefaultPipeline creates a pipeline with the default chunker.
func DefaultPipeline() *Pipeline {
	p := NewPipeline()
	c, _ := NewChunker(DefaultChunkConfig())
	p.Add(c)
	return p
}

// Default chunking parameters, in characters
const (
	DefaultChunkSize    = 512
	DefaultChunkOverlap = 50
)

// ChunkConfig configures the chunker behavior.
// Sizes are counted in characters (runes), not bytes.
type ChunkConfig struct {
	// ChunkSize is the maximum characters per chunk
	ChunkSize int

	// Overlap is the number of characters shared by consecutive chunks
	Overlap int

	// PreserveSentences tries to break at sentence boundaries
	PreserveSentences bool

	// PreserveParagraphs tries to break at paragraph boundaries
	PreserveParagraphs bool
}

// DefaultChunkConfig returns the defaults used for claim text.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		ChunkSize:          DefaultChunkSize,
		Overlap:            DefaultChunkOverlap,
		PreserveSentences:  true,
		PreserveParagraphs: true,
	}
}

// Validate checks that the window always advances.
func (c ChunkConfig) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidInput, c.ChunkSize)
	}
	if c.Overlap < 0 || c.Overlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d", domain.ErrInvalidInput, c.ChunkSize, c.Overlap)
	}
	return nil
}

// breakWindow is how far back from the window end a break point is searched for.
const breakWindow = 100

var sentenceEnders = []string{". ", "! ", "? ", ".\n", "!\n", "?\n"}

// Chunker splits text into overlapping windows.
// This is the first processor in the pipeline (Order = 0).
type Chunker struct {
	config ChunkConfig
}

// Verify interface compliance
var _ driven.PostProcessor = (*Chunker)(nil)

// NewChunker creates a new chunker with the given config.
func NewChunker(config ChunkConfig) (*Chunker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Chunker{config: config}, nil
}

// Process splits every incoming chunk and numbers the output from zero.
func (c *Chunker) Process(chunks []domain.Chunk) []domain.Chunk {
	var result []domain.Chunk
	position := 0

	for _, chunk := range chunks {
		result = append(result, c.split(chunk, &position)...)
	}

	return result
}

// Name returns the processor name.
func (c *Chunker) Name() string {
	return "chunker"
}

// Order returns 0 - chunker should be first.
func (c *Chunker) Order() int {
	return 0
}

// split cuts one chunk into windows of at most ChunkSize runes.
// Consecutive windows share exactly Overlap runes.
func (c *Chunker) split(parent domain.Chunk, position *int) []domain.Chunk {
	runes := []rune(parent.Text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	emit := func(start, end int) domain.Chunk {
		chunk := parent
		chunk.Text = string(runes[start:end])
		chunk.StartIndex = parent.StartIndex + start
		chunk.Position = *position
		*position++
		return chunk
	}

	if n <= c.config.ChunkSize {
		return []domain.Chunk{emit(0, n)}
	}

	var chunks []domain.Chunk
	start := 0

	for {
		end := start + c.config.ChunkSize
		if end > n {
			end = n
		}

		// A break must leave more than Overlap runes so the next window advances
		if end < n {
			if bp := c.findBreakPoint(runes, start+c.config.Overlap, end); bp > 0 {
				end = bp
			}
		}

		chunks = append(chunks, emit(start, end))

		if end >= n {
			break
		}
		start = end - c.config.Overlap
	}

	return chunks
}

// findBreakPoint returns the rune index just past the best break in
// (floor, maxEnd], or 0 if there is none.
func (c *Chunker) findBreakPoint(runes []rune, floor, maxEnd int) int {
	searchStart := maxEnd - breakWindow
	if searchStart < floor {
		searchStart = floor
	}
	if searchStart >= maxEnd {
		return 0
	}

	window := string(runes[searchStart:maxEnd])
	at := func(byteIdx int) int {
		return searchStart + utf8.RuneCountInString(window[:byteIdx])
	}

	// Try to break at paragraph boundary (double newline)
	if c.config.PreserveParagraphs {
		if idx := strings.LastIndex(window, "\n\n"); idx != -1 {
			return at(idx + 2)
		}
	}

	// Try to break at sentence boundary
	if c.config.PreserveSentences {
		best := -1
		for _, ender := range sentenceEnders {
			if idx := strings.LastIndex(window, ender); idx != -1 && idx+len(ender) > best {
				best = idx + len(ender)
			}
		}
		if best > 0 {
			return at(best)
		}
	}

	// Try to break at word boundary
	if idx := strings.LastIndex(window, " "); idx != -1 {
		return at(idx + 1)
	}

	return 0
}
