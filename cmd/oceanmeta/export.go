package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"oceanmeta/internal/archive"
	"oceanmeta/internal/core"
	"oceanmeta/internal/persistence/memory"
)

var exportDir string

func init() {
	exportCmd.Flags().StringVar(&exportDir, "out", "./archivedata", "directory receiving the export bundle")
}

var exportCmd = &cobra.Command{
	Use:   "export <dataset.json>",
	Short: "Validate a dataset record file and write its export bundle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadSchema()
		if err != nil {
			return err
		}
		dataset, err := readDatasetFile(args[0])
		if err != nil {
			return err
		}
		archiveStore, err := archive.NewFilesystem(exportDir)
		if err != nil {
			return err
		}

		// A throwaway in-memory store gives the export the same path the
		// server uses, rules and validation included.
		store := memory.NewStore(core.DefaultRulesEngine())
		service := core.NewService(store, doc, core.WithArchive(archiveStore))
		created, _, err := service.CreateDataset(cmd.Context(), dataset)
		if err != nil {
			return err
		}

		record, err := service.ExportDataset(cmd.Context(), created.ID)
		if err != nil {
			var failed core.ValidationFailedError
			if errors.As(err, &failed) {
				for _, msg := range failed.Report.AllMessages() {
					fmt.Fprintln(cmd.OutOrStdout(), msg)
				}
			}
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), record.Key)
		return nil
	},
}
