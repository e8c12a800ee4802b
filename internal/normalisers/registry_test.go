package normalisers

import (
	"testing"

	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven"
)

// Mock normaliser for testing
type mockNormaliser struct {
	name     string
	types    []string
	priority int
}

func (m *mockNormaliser) Normalise(content string, mimeType string) string {
	return content + "-" + m.name
}

func (m *mockNormaliser) SupportedTypes() []string {
	return m.types
}

func (m *mockNormaliser) Priority() int {
	return m.priority
}

var _ driven.Normaliser = (*mockNormaliser)(nil)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("expected non-nil registry")
	}
	if len(r.List()) != 0 {
		t.Errorf("expected empty registry, got %v", r.List())
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockNormaliser{name: "test", types: []string{MIMETypeTSV}, priority: 50})

	types := r.List()
	if len(types) != 1 {
		t.Fatalf("expected 1 type, got %d", len(types))
	}
	if types[0] != MIMETypeTSV {
		t.Errorf("expected %s, got %s", MIMETypeTSV, types[0])
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockNormaliser{name: "test", types: []string{"text/plain"}, priority: 50})

	if n := r.Get("text/plain"); n == nil {
		t.Fatal("expected to find normaliser")
	}
	if n := r.Get("application/json"); n != nil {
		t.Error("expected nil for unregistered type")
	}
}

func TestRegistry_Get_PrioritySelection(t *testing.T) {
	r := NewRegistry()

	// Register in random order
	r.Register(&mockNormaliser{name: "low", types: []string{"text/plain"}, priority: 10})
	r.Register(&mockNormaliser{name: "high", types: []string{"text/plain"}, priority: 90})
	r.Register(&mockNormaliser{name: "medium", types: []string{"text/plain"}, priority: 50})

	n := r.Get("text/plain")
	if n == nil {
		t.Fatal("expected to find normaliser")
	}
	if got := n.Normalise("x", "text/plain"); got != "x-high" {
		t.Errorf("expected high priority normaliser, got %q", got)
	}

	all := r.GetAll("text/plain")
	if len(all) != 3 {
		t.Fatalf("expected 3 normalisers, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Priority() < all[i].Priority() {
			t.Errorf("normalisers not sorted by priority at %d", i)
		}
	}
}

func TestMatchesMIMEType(t *testing.T) {
	tests := []struct {
		supported []string
		mimeType  string
		want      bool
	}{
		{[]string{"text/plain"}, "text/plain", true},
		{[]string{"text/plain"}, "TEXT/PLAIN", true},
		{[]string{"text/plain"}, "text/plain; charset=utf-8", true},
		{[]string{"text/*"}, MIMETypeTSV, true},
		{[]string{"*/*"}, "application/octet-stream", true},
		{[]string{MIMETypeTSV}, "text/csv", false},
		{nil, "text/plain", false},
	}

	for _, tt := range tests {
		if got := matchesMIMEType(tt.supported, tt.mimeType); got != tt.want {
			t.Errorf("matchesMIMEType(%v, %q) = %v, want %v", tt.supported, tt.mimeType, got, tt.want)
		}
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	if _, ok := r.Get(MIMETypeTSV).(*ClaimNormaliser); !ok {
		t.Errorf("expected ClaimNormaliser for %s", MIMETypeTSV)
	}
	if _, ok := r.Get("application/pdf").(*PlaintextNormaliser); !ok {
		t.Error("expected PlaintextNormaliser fallback for unknown type")
	}
}

func TestPlaintextNormaliser(t *testing.T) {
	n := &PlaintextNormaliser{}
	if got := n.Normalise("  a\r\nb\rc  ", "text/plain"); got != "a\nb\nc" {
		t.Errorf("got %q", got)
	}
}
