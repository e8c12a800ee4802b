package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/checkprioritizer/internal/config"
	"github.com/custodia-labs/checkprioritizer/internal/metrics"
)

// app carries what every command needs once flags are parsed
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	reg     *prometheus.Registry
	out     io.Writer

	closers []io.Closer
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
	a.closers = nil
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:          "checkprioritizer",
		Short:        "Claim retrieval for fact-checking: ingest, search and ask",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg

			logger, closer, err := newLogger(cfg.Log, errOut)
			if err != nil {
				return err
			}
			if closer != nil {
				a.closers = append(a.closers, closer)
			}
			a.logger = logger
			slog.SetDefault(logger)

			// Per-run registry, exposed by serve on /metrics
			a.reg = prometheus.NewRegistry()
			a.reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			a.metrics = metrics.New(a.reg)
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (yaml, json or toml)")
	pf.String("data-dir", "data", "directory holding the source TSV files")
	pf.String("index-path", "db/claims_index", "vector index directory (sqlite backend)")
	pf.String("index-backend", config.BackendSQLite, "vector index backend: sqlite or postgres")
	pf.String("provider", "local", "embedding provider: local, openai or ollama")
	pf.String("model", "", "embedding model name")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.String("log-format", "text", "log format: text or json")
	pf.String("log-file", "", "also append log lines to this file")

	root.AddCommand(
		newIngestCmd(a),
		newSearchCmd(a),
		newAskCmd(a),
		newServeCmd(a),
		newTokenCmd(a),
	)
	return root
}

// retrievalFlags adds the MMR tuning flags shared by search, ask and serve
func retrievalFlags(cmd *cobra.Command) {
	cmd.Flags().Int("fetch-k", 20, "MMR candidate pool size")
	cmd.Flags().Float64("lambda", 0.5, "MMR trade-off: 1 relevance only, 0 diversity only")
}

func newLogger(cfg config.LogConfig, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	w := stderr
	var closer io.Closer
	if cfg.File != "" {
		if dir := filepath.Dir(cfg.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(stderr, f)
		closer = f
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), closer, nil
}
