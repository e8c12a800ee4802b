package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/checkprioritizer/internal/runtime"
)

func newAnswer(t *testing.T, generator *mocks.MockAnswerGenerator) (*answerService, *mocks.StaticEmbeddingService) {
	t.Helper()
	embedder := mocks.NewStaticEmbeddingService(2)
	embedder.Set("vaccines in Cuba?", []float32{1, 0})
	index := seededIndex(t, embedder,
		&domain.IndexEntry{ID: "1", Text: "Vaccine trials begin in Cuba", Embedding: []float32{1, 0.1},
			Metadata: map[string]string{domain.MetaClassLabel: "Yes"}},
		&domain.IndexEntry{ID: "2", Text: "Local bakery wins award", Embedding: []float32{0, 1},
			Metadata: map[string]string{}},
	)

	services := runtime.NewServices(embedder)
	if generator != nil {
		services.SetAnswerGenerator(generator)
	}
	search := NewSearchService(SearchServiceConfig{Index: index, Services: services})
	return NewAnswerService(AnswerServiceConfig{Search: search, Services: services}).(*answerService), embedder
}

func TestFormatContext(t *testing.T) {
	results := []*domain.QueryResult{
		{Text: "Vaccine trials begin in Cuba", Metadata: map[string]string{domain.MetaClassLabel: "Yes"}},
		{Text: "Local bakery wins award", Metadata: map[string]string{}},
	}

	got := FormatContext(results)
	want := "Source [1]: Vaccine trials begin in Cuba (Label: Yes)\n\n" +
		"Source [2]: Local bakery wins award (Label: N/A)"
	if got != want {
		t.Errorf("unexpected context:\n%s\nwant:\n%s", got, want)
	}

	if FormatContext(nil) != "" {
		t.Error("expected empty context for no results")
	}
}

func TestAnswerService_Ask(t *testing.T) {
	generator := mocks.NewMockAnswerGenerator("Yes, trials have begun [1].")
	svc, _ := newAnswer(t, generator)

	answer, err := svc.Ask(context.Background(), "vaccines in Cuba?", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Answer != "Yes, trials have begun [1]." || answer.Query != "vaccines in Cuba?" {
		t.Errorf("unexpected answer %+v", answer)
	}
	if len(answer.Sources) != 2 || answer.Sources[0].Text != "Vaccine trials begin in Cuba" {
		t.Errorf("unexpected sources %+v", answer.Sources)
	}

	if generator.LastQuery() != "vaccines in Cuba?" {
		t.Errorf("generator got query %q", generator.LastQuery())
	}
	if !strings.HasPrefix(generator.LastContext(), "Source [1]: Vaccine trials begin in Cuba (Label: Yes)") {
		t.Errorf("generator got context %q", generator.LastContext())
	}
}

func TestAnswerService_InvalidK(t *testing.T) {
	generator := mocks.NewMockAnswerGenerator("x")
	svc, _ := newAnswer(t, generator)

	_, err := svc.Ask(context.Background(), "q", 0)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if generator.Calls() != 0 {
		t.Error("generator must not be called on invalid input")
	}
}

func TestAnswerService_NoGenerator(t *testing.T) {
	svc, embedder := newAnswer(t, nil)

	_, err := svc.Ask(context.Background(), "q", 1)
	if !errors.Is(err, domain.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	if embedder.QueryCalls() != 0 {
		t.Error("retrieval must not run without a generator")
	}
}

func TestAnswerService_GeneratorFailure(t *testing.T) {
	generator := mocks.NewMockAnswerGenerator("")
	generator.SetError(domain.ErrServiceUnavailable)
	svc, _ := newAnswer(t, generator)

	_, err := svc.Ask(context.Background(), "q", 1)
	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}
