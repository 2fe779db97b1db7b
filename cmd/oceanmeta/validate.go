package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"oceanmeta/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate <dataset.json>",
	Short: "Validate a dataset record file against the schema bundle",
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
		report, err := validation.ValidateDataset(dataset, doc)
		if err != nil {
			return err
		}
		if report.IsValid() {
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		}
		for _, msg := range report.AllMessages() {
			fmt.Fprintln(cmd.OutOrStdout(), msg)
		}
		return fmt.Errorf("%d invalid variables, %d dataset-level errors",
			report.InvalidVariableCount(), len(report.DatasetErrors))
	},
}
