package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/search"
)

var queriesCmd = &cobra.Command{
	Use:   "queries [query]",
	Short: "List accumulated search records, or show one with its leads",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if len(args) == 1 {
			svc := search.New(st, nil, nil, search.Options{})
			rec, leads, err := svc.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			if rec == nil {
				return eris.Errorf("no record for %q", args[0])
			}
			return enc.Encode(map[string]any{"record": rec, "results": leads})
		}

		recs, err := st.ListSearches(ctx)
		if err != nil {
			return err
		}
		return enc.Encode(recs)
	},
}

func init() {
	rootCmd.AddCommand(queriesCmd)
}
