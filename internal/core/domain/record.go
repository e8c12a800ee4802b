package domain

// Record is one source row
type Record struct {
	Text           string            `json:"text"`
	ID             string            `json:"id"`
	ClassLabel     string            `json:"class_label,omitempty"`
	SourceFilename string            `json:"source_filename"`
	Row            int               `json:"row"`    // 1-based data row within the source file
	Fields         map[string]string `json:"fields"` // Passthrough columns verbatim, everything but the text column
}

// Table is the unified set of records loaded from one or more source files
type Table struct {
	Columns []string  `json:"columns"`
	Records []*Record `json:"records"`
}

// Append merges another table, extending the column union in first-seen order.
// Records from sources lacking a column simply have no value for it.
func (t *Table) Append(other *Table) {
	if other == nil {
		return
	}
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		seen[c] = struct{}{}
	}
	for _, c := range other.Columns {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		t.Columns = append(t.Columns, c)
	}
	t.Records = append(t.Records, other.Records...)
}

// Len returns the number of records
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}
