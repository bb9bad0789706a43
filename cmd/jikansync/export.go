package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/varoOP/jikansync/internal/app"
)

var exportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Write a snapshot of all synced anime to a JSON or YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.NewApp(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer application.Close()

		count, err := application.ExportService.Snapshot(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Exported %d records to %s\n", count, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
