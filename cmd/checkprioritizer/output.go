package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
)

// Text prefix lengths, in characters
const (
	resultPrefix = 150
	sanityPrefix = 120
)

var (
	heading    = color.New(color.FgCyan, color.Bold).SprintFunc()
	rank       = color.New(color.FgYellow).SprintFunc()
	faint      = color.New(color.Faint).SprintFunc()
	answerText = color.New(color.FgGreen).SprintFunc()
)

func printResults(w io.Writer, results []*domain.QueryResult, width int) {
	if len(results) == 0 {
		fmt.Fprintln(w, faint("  no results"))
		return
	}
	for _, r := range results {
		fmt.Fprintf(w, "%s %s\n", rank(fmt.Sprintf("[%d]", r.Rank)), truncate(r.Text, width))
		fmt.Fprintf(w, "    %s\n", faint(formatMetadata(r.Metadata)))
	}
}

func formatMetadata(md map[string]string) string {
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("metadata:")
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, md[k])
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
