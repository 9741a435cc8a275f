package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Ship captured leads downstream",
}

var xlsxOut string

var exportXLSXCmd = &cobra.Command{
	Use:   "xlsx",
	Short: "Write all captured leads to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := export.WriteXLSX(cmd.Context(), env.Store, xlsxOut)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %d leads to %s\n", n, xlsxOut)
		return nil
	},
}

var exportSalesforceCmd = &cobra.Command{
	Use:   "salesforce",
	Short: "Insert all captured leads into Salesforce as Lead records",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		sfClient, err := initSalesforce()
		if err != nil {
			return err
		}

		res, err := export.PushLeads(cmd.Context(), env.Store, sfClient)
		if err != nil {
			return err
		}
		fmt.Printf("Inserted %d leads, %d rejected\n", res.Inserted, res.Failed)
		return nil
	},
}

func init() {
	exportXLSXCmd.Flags().StringVar(&xlsxOut, "out", "leads.xlsx", "output workbook path")

	exportCmd.AddCommand(exportXLSXCmd, exportSalesforceCmd)
	rootCmd.AddCommand(exportCmd)
}
