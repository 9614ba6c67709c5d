package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := *cfg
		// Credentials stay out of terminal output.
		shown.Places.Key = redact(shown.Places.Key)
		shown.PageSpeed.Key = redact(shown.PageSpeed.Key)
		shown.OpenAI.Key = redact(shown.OpenAI.Key)

		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(shown); err != nil {
			return eris.Wrap(err, "encode config")
		}
		return enc.Close()
	},
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "[set]"
}

func init() {
	rootCmd.AddCommand(configCmd)
}
