package domain

// Source is one piece of evidence returned alongside an answer
type Source struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata"`
}

// Answer is a synthesized response with the evidence it was drafted from
type Answer struct {
	Query   string    `json:"query"`
	Answer  string    `json:"answer"`
	Sources []*Source `json:"sources"`
}

// SourcesFrom converts query results into answer sources, preserving order
func SourcesFrom(results []*QueryResult) []*Source {
	sources := make([]*Source, 0, len(results))
	for _, r := range results {
		sources = append(sources, &Source{Text: r.Text, Metadata: r.Metadata})
	}
	return sources
}
