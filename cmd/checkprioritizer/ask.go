package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	apihttp "github.com/custodia-labs/checkprioritizer/internal/adapters/driving/http"
)

func newAskCmd(a *app) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from retrieved claims",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			r, err := a.newRetrieval(cmd.Context(), true)
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			result, err := r.answer.Ask(cmd.Context(), query, count)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "%s %s\n\n", heading("QUERY:"), query)
			fmt.Fprintf(a.out, "%s %s\n\n", heading("ANSWER:"), answerText(result.Answer))
			fmt.Fprintln(a.out, heading("SOURCES:"))
			for i, s := range result.Sources {
				fmt.Fprintf(a.out, "%s %s\n", rank(fmt.Sprintf("[%d]", i+1)), truncate(s.Text, resultPrefix))
				fmt.Fprintf(a.out, "    %s\n", faint(formatMetadata(s.Metadata)))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", apihttp.DefaultAskCount, "number of sources to retrieve")
	retrievalFlags(cmd)
	return cmd
}
