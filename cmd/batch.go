package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.uber.org/zap"
)

var batchLimit int

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Process queued search jobs from the job table",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		limit := batchLimit
		if limit == 0 {
			limit = cfg.Batch.Limit
		}

		res, err := env.Pipeline.RunBatch(cmd.Context(), limit)
		if err != nil {
			return err
		}

		if res.Message != "" {
			fmt.Println(res.Message)
			return nil
		}

		zap.L().Info("batch complete",
			zap.Int("processed", res.Processed),
			zap.Int("total_queued", res.TotalQueued),
		)
		fmt.Printf("Processed %d of %d queued jobs\n", res.Processed, res.TotalQueued)
		return nil
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max jobs per pass (default from config)")
	rootCmd.AddCommand(batchCmd)
}
