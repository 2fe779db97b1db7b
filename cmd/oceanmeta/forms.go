package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"oceanmeta/internal/formengine"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <variable_type> [genesis] [sampling]",
	Short: "Map a discriminator tuple to its schema variant",
	Args:  cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		variableType := args[0]
		var genesis, sampling string
		if len(args) > 1 {
			genesis = args[1]
		}
		if len(args) > 2 {
			sampling = args[2]
		}
		name, ok := formengine.Resolve(variableType, genesis, sampling)
		if !ok {
			return fmt.Errorf("tuple (%q, %q, %q) does not resolve to a variant", variableType, genesis, sampling)
		}
		fmt.Fprintln(cmd.OutOrStdout(), name)
		return nil
	},
}

var definitionsCmd = &cobra.Command{
	Use:   "definitions",
	Short: "List all schema variant names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range formengine.DefinitionNames() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var sectionsCmd = &cobra.Command{
	Use:   "sections <definition>",
	Short: "Render the form sections of a schema variant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := formengine.DefinitionName(args[0])
		if !formengine.KnownDefinition(name) {
			return fmt.Errorf("unknown variable definition %q", args[0])
		}
		return printJSON(formengine.BuildSections(name))
	},
}
