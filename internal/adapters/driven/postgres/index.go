package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorIndex = (*Index)(nil)

const (
	metaModel      = "model"
	metaDimensions = "dimensions"
)

// Index implements driven.VectorIndex on PostgreSQL with the pgvector extension.
// Ranking uses the cosine distance operator; equal distances fall back to seq.
type Index struct {
	db     *DB
	logger *slog.Logger
}

// NewIndex creates a pgvector index over an initialized database
func NewIndex(db *DB, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{db: db, logger: logger}
}

// Add inserts entries, skipping IDs that already exist
func (x *Index) Add(ctx context.Context, entries []*domain.IndexEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	added := 0
	err := x.db.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO index_entries (id, text, metadata, embedding)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING
			RETURNING seq
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, e := range entries {
			if len(e.Embedding) == 0 {
				return fmt.Errorf("%w: entry %s has no embedding", domain.ErrInvalidInput, e.ID)
			}
			meta, err := json.Marshal(e.Metadata)
			if err != nil {
				return fmt.Errorf("marshal metadata: %w", err)
			}

			var seq int64
			err = stmt.QueryRowContext(ctx, e.ID, e.Text, string(meta), pgvector.NewVector(e.Embedding)).Scan(&seq)
			if errors.Is(err, sql.ErrNoRows) {
				continue // already indexed
			}
			if err != nil {
				return fmt.Errorf("insert entry %s: %w", e.ID, err)
			}
			e.Seq = seq
			added++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// Search returns the k nearest entries by cosine distance
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]*domain.RankedEntry, error) {
	if k <= 0 {
		return nil, nil
	}

	rows, err := x.db.QueryContext(ctx, `
		SELECT seq, id, text, metadata, embedding, 1 - (embedding <=> $1) AS score
		FROM index_entries
		ORDER BY embedding <=> $1, seq
		LIMIT $2
	`, pgvector.NewVector(query), k)
	if err != nil {
		return nil, fmt.Errorf("%w: query entries: %v", domain.ErrIndexUnavailable, err)
	}
	defer rows.Close()

	var ranked []*domain.RankedEntry
	for rows.Next() {
		var (
			e     domain.IndexEntry
			meta  []byte
			emb   pgvector.Vector
			score float64
		)
		if err := rows.Scan(&e.Seq, &e.ID, &e.Text, &meta, &emb, &score); err != nil {
			return nil, fmt.Errorf("%w: scan entry: %v", domain.ErrIndexUnavailable, err)
		}
		if err := json.Unmarshal(meta, &e.Metadata); err != nil {
			return nil, fmt.Errorf("%w: entry %s metadata: %v", domain.ErrIndexUnavailable, e.ID, err)
		}
		e.Embedding = emb.Slice()
		// <=> is NaN against a zero vector
		if math.IsNaN(score) {
			score = 0
		}
		ranked = append(ranked, &domain.RankedEntry{Entry: &e, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	return ranked, nil
}

// EnsureSpace records the embedding space on first use and verifies it afterwards
func (x *Index) EnsureSpace(ctx context.Context, model string, dimensions int) error {
	return x.db.Transaction(ctx, func(tx *sql.Tx) error {
		info, err := readSpace(ctx, tx)
		if err != nil {
			return err
		}

		if info.Model == "" && info.Dimensions == 0 {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO index_meta (key, value) VALUES ($1, $2), ($3, $4) ON CONFLICT (key) DO NOTHING`,
				metaModel, model, metaDimensions, strconv.Itoa(dimensions))
			if err != nil {
				return fmt.Errorf("record embedding space: %w", err)
			}
			x.logger.Info("recorded embedding space", "model", model, "dimensions", dimensions)
			return nil
		}

		if info.Model != model || info.Dimensions != dimensions {
			return fmt.Errorf("%w: index built with %s/%d, embedder is %s/%d",
				domain.ErrEmbeddingMismatch, info.Model, info.Dimensions, model, dimensions)
		}
		return nil
	})
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

// Info returns the recorded embedding space and entry count
func (x *Index) Info(ctx context.Context) (*domain.IndexInfo, error) {
	info, err := readSpace(ctx, x.db)
	if err != nil {
		return nil, err
	}
	if err := x.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM index_entries`).Scan(&info.Entries); err != nil {
		return nil, fmt.Errorf("%w: count entries: %v", domain.ErrIndexUnavailable, err)
	}
	return info, nil
}

// Reset removes every entry and the recorded embedding space
func (x *Index) Reset(ctx context.Context) error {
	return x.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `TRUNCATE index_entries`); err != nil {
			return fmt.Errorf("truncate entries: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM index_meta`); err != nil {
			return fmt.Errorf("clear index meta: %w", err)
		}
		return nil
	})
}

// Ping checks if the database is reachable
func (x *Index) Ping(ctx context.Context) error {
	if err := x.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	return nil
}

// Close closes the connection pool
func (x *Index) Close() error {
	return x.db.Close()
}
