package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write a backup archive of the whole inventory",
	Long: `Write every room, container, category and item to a zip archive,
together with the photos the items reference. The archive is written to a
temporary file next to <file> and renamed into place once complete.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := cur.codec.ExportToFile(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rooms, %d containers, %d items and %d photos to %s\n",
			report.Rooms, report.Containers, report.Items, report.Images, args[0])
		if report.SkippedImages > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Skipped %d unreadable photos\n", report.SkippedImages)
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Restore a backup archive into the inventory",
	Long: `Restore a zip archive written by export. Existing rows with the same
names are replaced; rows that fail to insert are reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := cur.codec.ImportFile(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d rooms, %d containers, %d sub containers, %d third containers, %d categories, %d items and %d photos\n",
			report.Rooms, report.Containers, report.SubContainers, report.ThirdContainers,
			report.Categories, report.Items, report.Images)
		if report.MissingImages > 0 || report.FailedRows > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%d photos missing, %d rows failed\n", report.MissingImages, report.FailedRows)
		}
		return nil
	},
}
