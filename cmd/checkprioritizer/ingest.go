package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/checkprioritizer/internal/adapters/driven/tsv"
	"github.com/custodia-labs/checkprioritizer/internal/config"
	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
	"github.com/custodia-labs/checkprioritizer/internal/core/services"
	"github.com/custodia-labs/checkprioritizer/internal/normalisers"
	"github.com/custodia-labs/checkprioritizer/internal/postprocessors"
)

func newIngestCmd(a *app) *cobra.Command {
	var (
		reset       bool
		sanityQuery string
		noSanity    bool
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load the claim datasets and build the vector index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			ctx := cmd.Context()

			chunker, err := postprocessors.NewChunker(a.cfg.ChunkConfig())
			if err != nil {
				return err
			}
			pipeline := postprocessors.NewPipeline()
			pipeline.Add(chunker)

			b, err := a.openBackend(ctx, true)
			if err != nil {
				return err
			}
			embedding, err := a.newEmbedding(b, true)
			if err != nil {
				return err
			}
			lock := b.lock()
			if c, ok := lock.(io.Closer); ok {
				a.closers = append(a.closers, c)
			}

			svc := services.NewIngestService(services.IngestServiceConfig{
				Loader:      tsv.NewLoader(tsv.Config{Logger: a.logger}),
				Normalisers: normalisers.DefaultRegistry(),
				Splitter:    pipeline,
				Index:       b.index,
				Embedding:   embedding,
				Lock:        lock,
				IndexName:   b.indexName,
				BatchSize:   a.cfg.Embedding.BatchSize,
				Concurrency: a.cfg.Embedding.Concurrency,
				Metrics:     a.metrics,
				Logger:      a.logger,
			})

			req := domain.IngestRequest{
				DataDir:     a.cfg.DataDir,
				Files:       a.cfg.Files,
				Reset:       reset,
				SanityQuery: sanityQuery,
			}
			if noSanity {
				req.SanityQuery = ""
			}

			result, err := svc.Ingest(ctx, req)
			if err != nil {
				return err
			}
			printIngestResult(a.out, result, req.SanityQuery)
			return nil
		},
	}

	cmd.Flags().StringSlice("files", domain.DefaultSourceFiles, "source TSV files, relative to --data-dir")
	cmd.Flags().Int("chunk-size", postprocessors.DefaultChunkSize, "maximum characters per chunk")
	cmd.Flags().Int("chunk-overlap", postprocessors.DefaultChunkOverlap, "characters shared by consecutive chunks")
	cmd.Flags().BoolVar(&reset, "reset", false, "clear the index before writing")
	cmd.Flags().StringVar(&sanityQuery, "sanity-query", config.DefaultSanityQuery, "query run against the fresh index")
	cmd.Flags().BoolVar(&noSanity, "no-sanity", false, "skip the post-ingestion sanity query")
	return cmd
}

func printIngestResult(w io.Writer, r *domain.IngestResult, sanityQuery string) {
	fmt.Fprintf(w, "%s run %s finished in %s\n", heading("INGEST:"), r.RunID, r.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  files: %d loaded, %d skipped\n", r.FilesLoaded, r.FilesSkipped)
	fmt.Fprintf(w, "  rows:  %d loaded, %d skipped\n", r.RowsLoaded, r.RowsSkipped)
	fmt.Fprintf(w, "  %d records -> %d chunks -> %d new entries\n", r.Records, r.Chunks, r.EntriesAdded)

	if sanityQuery == "" {
		return
	}
	fmt.Fprintf(w, "\n%s %s\n", heading("SANITY QUERY:"), sanityQuery)
	printResults(w, r.SanityHits, sanityPrefix)
}
