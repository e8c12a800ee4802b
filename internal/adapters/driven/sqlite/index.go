// Package sqlite provides a directory-backed vector index stored in a single
// SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven"
	"github.com/custodia-labs/checkprioritizer/internal/vector"
)

//go:embed schema.sql
var schemaSQL string

// FileName is the database file inside an index directory
const FileName = "index.db"

const (
	metaModel      = "model"
	metaDimensions = "dimensions"
)

// Verify interface compliance
var _ driven.VectorIndex = (*Index)(nil)

// Options configures how an index directory is opened
type Options struct {
	// Create makes the directory and schema if they do not exist.
	// Without it a missing index is reported as domain.ErrIndexUnavailable.
	Create bool
	Logger *slog.Logger
}

// Index implements driven.VectorIndex with brute-force cosine search over SQLite rows
type Index struct {
	db     *sql.DB
	dir    string
	logger *slog.Logger
}

// Open opens the index stored in dir.
func Open(ctx context.Context, dir string, opts Options) (*Index, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	path := filepath.Join(dir, FileName)
	if opts.Create {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create index directory: %w", err)
		}
	} else if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no index at %s", domain.ErrIndexUnavailable, dir)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrIndexUnavailable, path, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping %s: %v", domain.ErrIndexUnavailable, path, err)
	}

	if opts.Create {
		if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
			db.Close()
			return nil, fmt.Errorf("initialize index schema: %w", err)
		}
	} else if err := checkSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("opened vector index", "path", path, "create", opts.Create)
	return &Index{db: db, dir: dir, logger: logger}, nil
}

func checkSchema(ctx context.Context, db *sql.DB) error {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('entries', 'index_meta')`).Scan(&n)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	if n != 2 {
		return fmt.Errorf("%w: index schema is incomplete", domain.ErrIndexUnavailable)
	}
	return nil
}

// Dir returns the index directory
func (x *Index) Dir() string {
	return x.dir
}

// Add inserts entries in one transaction, ignoring IDs already present.
func (x *Index) Add(ctx context.Context, entries []*domain.IndexEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin: %v", domain.ErrIndexUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO entries (id, text, metadata, embedding) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, e := range entries {
		if len(e.Embedding) == 0 {
			return 0, fmt.Errorf("%w: entry %s has no embedding", domain.ErrInvalidInput, e.ID)
		}
		meta, err := json.Marshal(e.Metadata)
		if err != nil {
			return 0, fmt.Errorf("marshal metadata: %w", err)
		}

		res, err := stmt.ExecContext(ctx, e.ID, e.Text, string(meta), vector.Encode(e.Embedding))
		if err != nil {
			return 0, fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 1 {
			if seq, err := res.LastInsertId(); err == nil {
				e.Seq = seq
			}
			added++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit entries: %w", err)
	}
	return added, nil
}

// Search scans every entry in insertion order and ranks by cosine similarity.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]*domain.RankedEntry, error) {
	if k <= 0 {
		return nil, nil
	}

	rows, err := x.db.QueryContext(ctx, `SELECT seq, id, text, metadata, embedding FROM entries ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%w: query entries: %v", domain.ErrIndexUnavailable, err)
	}
	defer rows.Close()

	var entries []*domain.IndexEntry
	for rows.Next() {
		var (
			e    domain.IndexEntry
			meta string
			blob []byte
		)
		if err := rows.Scan(&e.Seq, &e.ID, &e.Text, &meta, &blob); err != nil {
			return nil, fmt.Errorf("%w: scan entry: %v", domain.ErrIndexUnavailable, err)
		}
		if err := json.Unmarshal([]byte(meta), &e.Metadata); err != nil {
			return nil, fmt.Errorf("%w: entry %s metadata: %v", domain.ErrIndexUnavailable, e.ID, err)
		}
		if e.Embedding, err = vector.Decode(blob); err != nil {
			return nil, fmt.Errorf("%w: entry %s: %v", domain.ErrIndexUnavailable, e.ID, err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}

	return vector.TopK(query, entries, k), nil
}

// EnsureSpace records the embedding space on first call and verifies it after.
func (x *Index) EnsureSpace(ctx context.Context, model string, dimensions int) error {
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrIndexUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	info, err := readSpace(ctx, tx)
	if err != nil {
		return err
	}

	if info.Model == "" && info.Dimensions == 0 {
		for key, value := range map[string]string{
			metaModel:      model,
			metaDimensions: strconv.Itoa(dimensions),
		} {
			if _, err := tx.ExecContext(ctx, `INSERT INTO index_meta (key, value) VALUES (?, ?)`, key, value); err != nil {
				return fmt.Errorf("record embedding space: %w", err)
			}
		}
		x.logger.Info("recorded embedding space", "model", model, "dimensions", dimensions)
		return tx.Commit()
	}

	if info.Model != model || info.Dimensions != dimensions {
		return fmt.Errorf("%w: index built with %s/%d, embedder is %s/%d",
			domain.ErrEmbeddingMismatch, info.Model, info.Dimensions, model, dimensions)
	}
	return nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func readSpace(ctx context.Context, q querier) (*domain.IndexInfo, error) {
	rows, err := q.QueryContext(ctx, `SELECT key, value FROM index_meta`)
	if err != nil {
		return nil, fmt.Errorf("%w: read index meta: %v", domain.ErrIndexUnavailable, err)
	}
	defer rows.Close()

	info := &domain.IndexInfo{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
		}
		switch key {
		case metaModel:
			info.Model = value
		case metaDimensions:
			info.Dimensions, _ = strconv.Atoi(value)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	return info, nil
}

// Info returns the embedding space and entry count
func (x *Index) Info(ctx context.Context) (*domain.IndexInfo, error) {
	info, err := readSpace(ctx, x.db)
	if err != nil {
		return nil, err
	}
	if err := x.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&info.Entries); err != nil {
		return nil, fmt.Errorf("%w: count entries: %v", domain.ErrIndexUnavailable, err)
	}
	return info, nil
}

// Reset deletes all entries and the recorded embedding space
func (x *Index) Reset(ctx context.Context) error {
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrIndexUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{`DELETE FROM entries`, `DELETE FROM index_meta`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("reset index: %w", err)
		}
	}
	return tx.Commit()
}

// Ping verifies the database is reachable
func (x *Index) Ping(ctx context.Context) error {
	if err := x.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	return nil
}

// Close closes the database handle
func (x *Index) Close() error {
	return x.db.Close()
}
