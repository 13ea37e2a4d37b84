package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/eddalmond/pulumi-tech-holiday/internal/stackconf"
)

// newExportCmd creates the "export" subcommand.
func newExportCmd() *cobra.Command {
	var (
		configFile   string
		outputFormat string
		outputFile   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Show the configured stack's exports",
		Long: `Export runs the configured stack program and prints its exported
values, resolved against the mock backend.

Examples:
    tech-holiday export
    tech-holiday export --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(configFile, outputFormat, outputFile)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", stackconf.DefaultFile, "Stack config file")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text, json, or yaml")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runExport(configFile, outputFormat, outputFile string) error {
	st, _, err := runStack(configFile)
	if err != nil {
		return err
	}

	exports := st.Exports()

	var data []byte
	switch outputFormat {
	case "text":
		out := ""
		for _, ex := range exports {
			out += fmt.Sprintf("%s: %v\n", ex.Name, ex.Value)
		}
		data = []byte(out)
	case "json":
		values := make(map[string]any, len(exports))
		for _, ex := range exports {
			values[ex.Name] = ex.Value
		}
		data, err = json.MarshalIndent(values, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case "yaml":
		values := make(map[string]any, len(exports))
		for _, ex := range exports {
			values[ex.Name] = ex.Value
		}
		data, err = yaml.Marshal(values)
	default:
		return fmt.Errorf("unknown format: %s (expected text, json, or yaml)", outputFormat)
	}
	if err != nil {
		return fmt.Errorf("failed to format exports: %w", err)
	}

	return writeOutput(outputFile, data)
}
