package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var leadsLimit int

var leadsCmd = &cobra.Command{
	Use:   "leads [id]",
	Short: "List stored leads, or show one by id",
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
			lead, err := st.GetLead(ctx, args[0])
			if err != nil {
				return err
			}
			if lead == nil {
				return eris.Errorf("lead %s not found", args[0])
			}
			return enc.Encode(lead)
		}

		leads, err := st.ListLeads(ctx, leadsLimit)
		if err != nil {
			return err
		}
		return enc.Encode(leads)
	},
}

func init() {
	leadsCmd.Flags().IntVar(&leadsLimit, "limit", 50, "maximum leads to list")
	rootCmd.AddCommand(leadsCmd)
}
