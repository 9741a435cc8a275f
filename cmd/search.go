package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var (
	searchProfession string
	searchCity       string
	searchCountry    string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one ad-hoc profession/location search and capture the leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Pipeline.Search(cmd.Context(), searchProfession, searchCity, searchCountry)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchProfession, "profession", "", "profession to search for (required)")
	searchCmd.Flags().StringVar(&searchCity, "city", "", "city to search in (required)")
	searchCmd.Flags().StringVar(&searchCountry, "country", "", "country qualifier")
	searchCmd.MarkFlagRequired("profession") //nolint:errcheck
	searchCmd.MarkFlagRequired("city")       //nolint:errcheck
	rootCmd.AddCommand(searchCmd)
}
