package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		k           int
		noDiversity bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Retrieve the claims closest to a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			r, err := a.newRetrieval(cmd.Context(), false)
			if err != nil {
				return err
			}

			opts := a.cfg.SearchOptions()
			if cmd.Flags().Changed("k") {
				opts.K = k
			}
			if noDiversity {
				opts.UseDiversity = false
			}

			query := strings.Join(args, " ")
			result, err := r.search.Search(cmd.Context(), query, opts)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "%s %s %s\n", heading("QUERY:"), query, faint("("+string(result.Mode)+")"))
			printResults(a.out, result.Results, resultPrefix)
			return nil
		},
	}

	cmd.Flags().IntVarP(&k, "k", "k", 4, "number of results")
	cmd.Flags().BoolVar(&noDiversity, "no-diversity", false, "plain similarity ranking instead of MMR")
	retrievalFlags(cmd)
	return cmd
}
