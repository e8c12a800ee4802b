package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/custodia-labs/checkprioritizer/internal/adapters/driven/tsv"
	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven"
	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/checkprioritizer/internal/normalisers"
	"github.com/custodia-labs/checkprioritizer/internal/postprocessors"
	"github.com/custodia-labs/checkprioritizer/internal/runtime"
)

const tsvHeader = "tweet_id\ttweet_text\tclass_label\n"

// writeTSV writes a source file under dir and returns its name
func writeTSV(t *testing.T, dir, name, body string) string {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(tsvHeader+body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return name
}

// newIngest wires the real loader, normaliser and chunker around the given index and embedder
func newIngest(index driven.VectorIndex, embedder driven.EmbeddingService, lock driven.DistributedLock) *ingestService {
	return NewIngestService(IngestServiceConfig{
		Loader:      tsv.NewLoader(tsv.Config{}),
		Normalisers: normalisers.DefaultRegistry(),
		Splitter:    postprocessors.DefaultPipeline(),
		Index:       index,
		Embedding:   embedder,
		Lock:        lock,
		IndexName:   "test",
	}).(*ingestService)
}

func newSearch(index driven.VectorIndex, embedder driven.EmbeddingService) *searchService {
	return NewSearchService(SearchServiceConfig{
		Index:    index,
		Services: runtime.NewServices(embedder),
	}).(*searchService)
}

// entry builds an index entry with a fixed embedding
func entry(id, text string, vec ...float32) *domain.IndexEntry {
	return &domain.IndexEntry{
		ID:        id,
		Text:      text,
		Metadata:  map[string]string{domain.MetaRecordID: id},
		Embedding: vec,
	}
}

// seededIndex returns a MemoryIndex holding entries in the static embedder's space
func seededIndex(t *testing.T, embedder *mocks.StaticEmbeddingService, entries ...*domain.IndexEntry) *mocks.MemoryIndex {
	t.Helper()
	index := mocks.NewMemoryIndex()
	if err := index.EnsureSpace(t.Context(), embedder.Model(), embedder.Dimensions()); err != nil {
		t.Fatalf("EnsureSpace: %v", err)
	}
	if _, err := index.Add(t.Context(), entries); err != nil {
		t.Fatalf("Add: %v", err)
	}
	return index
}

func texts(results []*domain.QueryResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Text
	}
	return out
}
