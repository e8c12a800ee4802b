package domain

import (
	"errors"
	"testing"
)

func TestDefaultSearchOptions(t *testing.T) {
	opts := DefaultSearchOptions()

	if opts.K != 4 {
		t.Errorf("expected K 4, got %d", opts.K)
	}
	if !opts.UseDiversity {
		t.Error("expected diversity on by default")
	}
	if opts.FetchK != 20 {
		t.Errorf("expected FetchK 20, got %d", opts.FetchK)
	}
	if opts.Lambda != 0.5 {
		t.Errorf("expected Lambda 0.5, got %g", opts.Lambda)
	}
	if opts.Mode() != SearchModeMMR {
		t.Errorf("expected mmr mode, got %s", opts.Mode())
	}
}

func TestSearchOptions_Mode(t *testing.T) {
	opts := SearchOptions{K: 1}
	if opts.Mode() != SearchModeSimilarity {
		t.Errorf("expected similarity mode, got %s", opts.Mode())
	}
}

func TestSearchOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    SearchOptions
		wantErr bool
	}{
		{"defaults", DefaultSearchOptions(), false},
		{"k one", SearchOptions{K: 1}, false},
		{"lambda bounds", SearchOptions{K: 1, Lambda: 1}, false},
		{"k zero", SearchOptions{K: 0}, true},
		{"k negative", SearchOptions{K: -3}, true},
		{"lambda negative", SearchOptions{K: 1, Lambda: -0.1}, true},
		{"lambda above one", SearchOptions{K: 1, Lambda: 1.1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSearchOptions_PoolSize(t *testing.T) {
	tests := []struct {
		name string
		opts SearchOptions
		want int
	}{
		{"fetch_k used", SearchOptions{K: 4, FetchK: 20}, 20},
		{"unset falls back to default", SearchOptions{K: 4}, DefaultFetchK},
		{"clamped up to k", SearchOptions{K: 10, FetchK: 3}, 10},
		{"default clamped up to k", SearchOptions{K: 50}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.PoolSize(); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestNewQueryResults(t *testing.T) {
	ranked := []*RankedEntry{
		{Entry: &IndexEntry{Text: "first", Metadata: map[string]string{"tweet_id": "1"}}, Score: 0.9},
		{Entry: &IndexEntry{Text: "second"}, Score: 0.4},
	}

	results := NewQueryResults(ranked)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Text != "first" || results[0].Rank != 1 || results[0].Metadata["tweet_id"] != "1" {
		t.Errorf("unexpected first result %+v", results[0])
	}
	if results[1].Rank != 2 {
		t.Errorf("expected rank 2, got %d", results[1].Rank)
	}
}

func TestNewQueryResults_Empty(t *testing.T) {
	results := NewQueryResults(nil)
	if results == nil || len(results) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", results)
	}
}

func TestSourcesFrom(t *testing.T) {
	sources := SourcesFrom([]*QueryResult{
		{Text: "a", Metadata: map[string]string{"class_label": "Yes"}, Rank: 1},
		{Text: "b", Rank: 2},
	})

	if len(sources) != 2 || sources[0].Text != "a" || sources[1].Text != "b" {
		t.Fatalf("unexpected sources %+v", sources)
	}
	if sources[0].Metadata["class_label"] != "Yes" {
		t.Error("expected metadata to carry over")
	}
}
