package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven"
	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driving"
	"github.com/custodia-labs/checkprioritizer/internal/metrics"
	"github.com/custodia-labs/checkprioritizer/internal/normalisers"
)

// Ensure ingestService implements IngestService
var _ driving.IngestService = (*ingestService)(nil)

const (
	// DefaultEmbedBatchSize is the number of chunks sent per embedding call
	DefaultEmbedBatchSize = 64

	// DefaultIngestLockTTL bounds how long a crashed run can block the next one
	DefaultIngestLockTTL = 5 * time.Minute

	// DefaultIndexName names the ingestion lock when none is configured
	DefaultIndexName = "default"

	sanityQueryK      = 2
	sanityPrefixChars = 120
)

// IngestServiceConfig holds dependencies for the ingestion service
type IngestServiceConfig struct {
	Loader      driven.RecordLoader
	Normalisers driven.NormaliserRegistry
	Splitter    driven.Splitter
	Index       driven.VectorIndex
	Embedding   driven.EmbeddingService
	Lock        driven.DistributedLock // Optional; nil runs without locking
	IndexName   string
	BatchSize   int
	Concurrency int // Embedding batches in flight, default 1
	LockTTL     time.Duration
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// ingestService implements the IngestService interface
type ingestService struct {
	loader      driven.RecordLoader
	normalisers driven.NormaliserRegistry
	splitter    driven.Splitter
	index       driven.VectorIndex
	embedding   driven.EmbeddingService
	lock        driven.DistributedLock
	lockName    string
	batchSize   int
	concurrency int
	lockTTL     time.Duration
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewIngestService creates a new IngestService
func NewIngestService(cfg IngestServiceConfig) driving.IngestService {
	s := &ingestService{
		loader:      cfg.Loader,
		normalisers: cfg.Normalisers,
		splitter:    cfg.Splitter,
		index:       cfg.Index,
		embedding:   cfg.Embedding,
		lock:        cfg.Lock,
		lockName:    "ingest:" + cfg.IndexName,
		batchSize:   cfg.BatchSize,
		concurrency: cfg.Concurrency,
		lockTTL:     cfg.LockTTL,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
	}
	if cfg.IndexName == "" {
		s.lockName = "ingest:" + DefaultIndexName
	}
	if s.batchSize <= 0 {
		s.batchSize = DefaultEmbedBatchSize
	}
	if s.concurrency <= 0 {
		s.concurrency = 1
	}
	if s.lockTTL <= 0 {
		s.lockTTL = DefaultIngestLockTTL
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Ingest runs load → normalise → chunk → embed → persist over the requested files
func (s *ingestService) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	start := time.Now()
	result := &domain.IngestResult{RunID: uuid.NewString()}
	logger := s.logger.With("run_id", result.RunID)

	err := s.run(ctx, req, result, logger)
	result.Duration = time.Since(start)
	s.metrics.ObserveIngest(result.Duration, err)
	s.metrics.AddIngestCounts(result.Records, result.Chunks, result.EntriesAdded, result.FilesSkipped, result.RowsSkipped)
	if err != nil {
		logger.Error("ingestion failed", "error", err)
		return nil, err
	}

	logger.Info("ingestion complete",
		"files", result.FilesLoaded,
		"files_skipped", result.FilesSkipped,
		"records", result.Records,
		"rows_skipped", result.RowsSkipped,
		"chunks", result.Chunks,
		"entries_added", result.EntriesAdded,
		"duration", result.Duration)
	return result, nil
}

func (s *ingestService) run(ctx context.Context, req domain.IngestRequest, result *domain.IngestResult, logger *slog.Logger) error {
	if s.embedding == nil {
		return fmt.Errorf("%w: no embedding service", domain.ErrNotConfigured)
	}

	release, err := s.acquire(ctx, logger)
	if err != nil {
		return err
	}
	defer release()

	if req.Reset {
		if err := s.index.Reset(ctx); err != nil {
			return fmt.Errorf("reset index: %w", err)
		}
		logger.Info("index reset")
	}

	if err := s.index.EnsureSpace(ctx, s.embedding.Model(), s.embedding.Dimensions()); err != nil {
		return err
	}

	table, err := s.load(ctx, req, result, logger)
	if err != nil {
		return err
	}
	result.Records = table.Len()
	if result.Records == 0 {
		logger.Warn("no records loaded")
		return nil
	}

	docs := s.normalise(table)
	chunks := s.splitter.Split(docs)
	result.Chunks = len(chunks)
	logger.Info("chunked records", "records", result.Records, "chunks", result.Chunks)
	if len(chunks) == 0 {
		return nil
	}

	vectors, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return err
	}

	entries := make([]*domain.IndexEntry, len(chunks))
	for i := range chunks {
		entries[i] = domain.NewIndexEntry(&chunks[i], vectors[i])
	}

	added, err := s.index.Add(ctx, entries)
	if err != nil {
		return fmt.Errorf("persist entries: %w", err)
	}
	result.EntriesAdded = added
	if skipped := len(entries) - added; skipped > 0 {
		logger.Info("entries already indexed", "count", skipped)
	}

	if req.SanityQuery != "" {
		hits, err := s.sanityCheck(ctx, req.SanityQuery, logger)
		if err != nil {
			return err
		}
		result.SanityHits = hits
	}
	return nil
}

// acquire takes the ingestion lock and keeps it alive until release is called
func (s *ingestService) acquire(ctx context.Context, logger *slog.Logger) (func(), error) {
	if s.lock == nil {
		return func() {}, nil
	}

	acquired, err := s.lock.Acquire(ctx, s.lockName, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", s.lockName, err)
	}
	if !acquired {
		return nil, fmt.Errorf("%w: %s is held", domain.ErrIngestInProgress, s.lockName)
	}

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(s.lockTTL / 3)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := s.lock.Extend(ctx, s.lockName, s.lockTTL); err != nil {
					logger.Warn("failed to extend ingestion lock", "lock", s.lockName, "error", err)
				}
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
		if err := s.lock.Release(context.WithoutCancel(ctx), s.lockName); err != nil {
			logger.Warn("failed to release ingestion lock", "lock", s.lockName, "error", err)
		}
	}, nil
}

// load reads every source file into one table. Missing, unsupported and
// unreadable files are skipped; malformed rows are reported by the loader.
func (s *ingestService) load(ctx context.Context, req domain.IngestRequest, result *domain.IngestResult, logger *slog.Logger) (*domain.Table, error) {
	files := req.Files
	if len(files) == 0 {
		files = domain.DefaultSourceFiles
	}

	combined := &domain.Table{}
	for _, f := range files {
		path := f
		if req.DataDir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(req.DataDir, path)
		}

		table, rowErrs, err := s.loader.Load(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			result.FilesSkipped++
			if errors.Is(err, fs.ErrNotExist) {
				logger.Warn("source file not found, skipping", "file", path)
			} else {
				logger.Warn("skipping source file", "file", path, "error", err)
			}
			continue
		}

		for _, rowErr := range rowErrs {
			logger.Warn("skipping malformed row", "file", rowErr.File, "row", rowErr.Row, "reason", rowErr.Reason)
		}
		result.RowsSkipped += len(rowErrs)
		result.RowsLoaded += table.Len()
		result.FilesLoaded++
		logger.Info("loaded source file", "file", path, "rows", table.Len(), "skipped", len(rowErrs))

		combined.Append(table)
	}
	return combined, nil
}

// normalise cleans each record's text and wraps it for the splitter
func (s *ingestService) normalise(table *domain.Table) []driven.Document {
	n := s.normalisers.Get(normalisers.MIMETypeTSV)

	docs := make([]driven.Document, 0, table.Len())
	for _, rec := range table.Records {
		text := rec.Text
		if n != nil {
			text = n.Normalise(text, normalisers.MIMETypeTSV)
		}
		rec.Text = text
		docs = append(docs, driven.Document{Text: text, Record: rec})
	}
	return docs
}

// embedChunks embeds chunk texts in batches. Vectors are written back by
// position so result i always belongs to chunk i.
func (s *ingestService) embedChunks(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))
	dims := s.embedding.Dimensions()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for lo := 0; lo < len(chunks); lo += s.batchSize {
		hi := min(lo+s.batchSize, len(chunks))

		g.Go(func() error {
			texts := make([]string, 0, hi-lo)
			for i := lo; i < hi; i++ {
				texts = append(texts, chunks[i].Text)
			}

			started := time.Now()
			batch, err := s.embedding.Embed(gctx, texts)
			if err != nil {
				return fmt.Errorf("embed chunks %d-%d: %w", lo, hi-1, err)
			}
			s.metrics.ObserveEmbeddingBatch(time.Since(started))

			if len(batch) != len(texts) {
				return fmt.Errorf("embed chunks %d-%d: got %d vectors for %d texts", lo, hi-1, len(batch), len(texts))
			}
			for i, vec := range batch {
				if len(vec) != dims {
					return fmt.Errorf("%w: chunk %d has %d dimensions, expected %d",
						domain.ErrEmbeddingMismatch, lo+i, len(vec), dims)
				}
				vectors[lo+i] = vec
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// sanityCheck runs a small similarity search against the fresh index and logs the hits
func (s *ingestService) sanityCheck(ctx context.Context, query string, logger *slog.Logger) ([]*domain.QueryResult, error) {
	vec, err := s.embedding.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sanity query: %w", err)
	}
	ranked, err := s.index.Search(ctx, vec, sanityQueryK)
	if err != nil {
		return nil, fmt.Errorf("sanity query: %w", err)
	}

	hits := domain.NewQueryResults(ranked)
	for _, h := range hits {
		logger.Info("sanity match",
			"query", query,
			"rank", h.Rank,
			"text", prefix(h.Text, sanityPrefixChars),
			"source_filename", h.Metadata[domain.MetaSourceFilename],
			"record_id", h.Metadata[domain.MetaRecordID])
	}
	return hits, nil
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
