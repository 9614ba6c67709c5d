package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var searchCount int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Discover, enrich and score leads for a text query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		resp, err := env.Service.Search(ctx, args[0], searchCount)
		if err != nil {
			return err
		}

		zap.L().Info("search complete",
			zap.String("query", resp.Query),
			zap.Int("results", len(resp.Leads)),
			zap.Bool("cached", resp.Cached),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchCount, "count", 0, "desired result count (default from config)")
	rootCmd.AddCommand(searchCmd)
}
