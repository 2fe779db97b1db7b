// Command oceanmeta runs the metadata service and offers local tooling for
// the variable form engine and dataset validation.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"oceanmeta/internal/schemadoc"
	"oceanmeta/pkg/domain"
)

var schemaPath string

var rootCmd = &cobra.Command{
	Use:           "oceanmeta",
	Short:         "Ocean carbon metadata entry service and tooling",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema", defaultSchemaPath(), "path to the JSON schema bundle")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(sectionsCmd)
	rootCmd.AddCommand(definitionsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(exportCmd)
}

func defaultSchemaPath() string {
	if p := os.Getenv("OCEANMETA_SCHEMA_PATH"); p != "" {
		return p
	}
	return "docs/schema/ocean_carbon_bundle.json"
}

func loadSchema() (*schemadoc.Document, error) {
	doc, err := schemadoc.Load(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("load schema bundle %s: %w", schemaPath, err)
	}
	return doc, nil
}

// readDatasetFile decodes a dataset record from a local JSON file. The file
// uses the same shape as the API request body: variables are raw field maps.
func readDatasetFile(path string) (domain.Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Dataset{}, err
	}
	var record struct {
		Title     string           `json:"title"`
		DOI       string           `json:"doi"`
		Authors   []string         `json:"authors"`
		Fields    map[string]any   `json:"fields"`
		Variables []map[string]any `json:"variables"`
	}
	if err := json.Unmarshal(raw, &record); err != nil {
		return domain.Dataset{}, fmt.Errorf("decode dataset file %s: %w", path, err)
	}
	dataset := domain.Dataset{
		Title:   record.Title,
		DOI:     record.DOI,
		Authors: record.Authors,
		Fields:  record.Fields,
	}
	for _, fields := range record.Variables {
		dataset.Variables = append(dataset.Variables, domain.Variable{Fields: fields})
	}
	return dataset, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
