// Package tsv loads claim datasets from tab-separated files.
package tsv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.RecordLoader = (*Loader)(nil)

var (
	// ErrUnsupportedFormat is returned for files without a .tsv extension
	ErrUnsupportedFormat = errors.New("unsupported source format")

	// ErrMissingColumn is returned when the header lacks the text column
	ErrMissingColumn = errors.New("missing required column")
)

// Config holds loader configuration
type Config struct {
	TextColumn  string
	IDColumn    string
	LabelColumn string
	Decoders    []Decoder
	Logger      *slog.Logger
}

// Loader reads TSV files into domain tables
type Loader struct {
	textColumn  string
	idColumn    string
	labelColumn string
	decoders    []Decoder
	logger      *slog.Logger
}

// NewLoader creates a loader; empty column names fall back to the claim dataset defaults.
func NewLoader(cfg Config) *Loader {
	l := &Loader{
		textColumn:  cfg.TextColumn,
		idColumn:    cfg.IDColumn,
		labelColumn: cfg.LabelColumn,
		decoders:    cfg.Decoders,
		logger:      cfg.Logger,
	}
	if l.textColumn == "" {
		l.textColumn = domain.DefaultTextColumn
	}
	if l.idColumn == "" {
		l.idColumn = domain.DefaultIDColumn
	}
	if l.labelColumn == "" {
		l.labelColumn = domain.DefaultLabelColumn
	}
	if len(l.decoders) == 0 {
		l.decoders = DefaultDecoders()
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Load reads one file. Rows whose field count differs from the header are
// skipped and returned as SourceErrors.
func (l *Loader) Load(ctx context.Context, path string) (*domain.Table, []*domain.SourceError, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	name := filepath.Base(path)
	if !strings.EqualFold(filepath.Ext(path), ".tsv") {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", name, err)
	}

	text, encoding, err := decode(raw, l.decoders)
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", name, err)
	}
	l.logger.Debug("decoded source file", "file", name, "encoding", encoding, "bytes", len(raw))

	return l.parse(name, text)
}

func (l *Loader) parse(name, text string) (*domain.Table, []*domain.SourceError, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return &domain.Table{Columns: []string{domain.MetaSourceFilename}}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header of %s: %w", name, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	textIdx, idIdx, labelIdx := -1, -1, -1
	for i, col := range header {
		switch col {
		case l.textColumn:
			textIdx = i
		case l.idColumn:
			idIdx = i
		case l.labelColumn:
			labelIdx = i
		}
	}
	if textIdx < 0 {
		return nil, nil, fmt.Errorf("%w: %s has no %q column", ErrMissingColumn, name, l.textColumn)
	}

	table := &domain.Table{Columns: append(append([]string{}, header...), domain.MetaSourceFilename)}
	var skipped []*domain.SourceError

	for row := 1; ; row++ {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped = append(skipped, &domain.SourceError{File: name, Row: row, Reason: perr.Err.Error()})
				continue
			}
			return nil, nil, fmt.Errorf("read %s: %w", name, err)
		}

		if len(fields) != len(header) {
			skipped = append(skipped, &domain.SourceError{
				File:   name,
				Row:    row,
				Reason: fmt.Sprintf("expected %d fields, got %d", len(header), len(fields)),
			})
			continue
		}

		rec := &domain.Record{
			Text:           fields[textIdx],
			SourceFilename: name,
			Row:            row,
			Fields:         make(map[string]string, len(header)),
		}
		for i, col := range header {
			if i != textIdx {
				rec.Fields[col] = fields[i]
			}
		}
		if idIdx >= 0 {
			rec.ID = strings.TrimSpace(fields[idIdx])
		}
		if rec.ID == "" {
			rec.ID = strconv.Itoa(row)
		}
		if labelIdx >= 0 {
			rec.ClassLabel = strings.TrimSpace(fields[labelIdx])
		}
		table.Records = append(table.Records, rec)
	}

	return table, skipped, nil
}
