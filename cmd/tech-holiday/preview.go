package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/eddalmond/pulumi-tech-holiday/aws/awsconf"
	"github.com/eddalmond/pulumi-tech-holiday/engine"
	"github.com/eddalmond/pulumi-tech-holiday/engine/mock"
	"github.com/eddalmond/pulumi-tech-holiday/internal/guardrails"
	"github.com/eddalmond/pulumi-tech-holiday/internal/stackconf"
	"github.com/eddalmond/pulumi-tech-holiday/stacks"
)

// newPreviewCmd creates the "preview" subcommand.
func newPreviewCmd() *cobra.Command {
	var (
		configFile   string
		outputFormat string
		outputFile   string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Preview resources for the configured stack",
		Long: `Preview runs the configured stack program against a mock provisioning
backend and lists every resource it would declare.

Examples:
    tech-holiday preview
    tech-holiday preview --format json
    tech-holiday preview --config other-stack.yaml -o preview.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(configFile, outputFormat, outputFile)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", stackconf.DefaultFile, "Stack config file")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text, json, or yaml")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

// runStack runs the configured stack program against a fresh mock backend.
func runStack(configFile string) (*engine.Stack, *mock.Backend, error) {
	conf, err := stackconf.Load(configFile)
	if err != nil {
		return nil, nil, err
	}

	backend := mock.New()
	backend.AccountID = conf.AccountID
	backend.Region = conf.Region

	st := engine.NewStack(conf.Stack, backend)
	cfg, err := awsconf.Load(st)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if err := stacks.Deploy(st, cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to run stack %s: %w", conf.Stack, err)
	}

	return st, backend, nil
}

// previewEntry is one resource row in the structured preview output.
type previewEntry struct {
	Name      string   `json:"name" yaml:"name"`
	Kind      string   `json:"kind" yaml:"kind"`
	ID        string   `json:"id" yaml:"id"`
	DependsOn []string `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`
}

func runPreview(configFile, outputFormat, outputFile string) error {
	st, _, err := runStack(configFile)
	if err != nil {
		return err
	}

	resources := st.Resources()
	entries := make([]previewEntry, 0, len(resources))
	for _, res := range resources {
		entry := previewEntry{
			Name: res.LogicalName(),
			Kind: res.Kind(),
			ID:   res.ID(),
		}
		for _, dep := range res.DependsOn() {
			entry.DependsOn = append(entry.DependsOn, dep.LogicalName())
		}
		entries = append(entries, entry)
	}

	exports := make(map[string]any, len(st.Exports()))
	for _, ex := range st.Exports() {
		exports[ex.Name] = ex.Value
	}
	advisories := guardrails.Check(resources)

	var data []byte
	switch outputFormat {
	case "text":
		data = []byte(formatPreviewText(st.Name(), entries, st.Exports(), advisories))
	case "json":
		out := map[string]any{
			"stack":     st.Name(),
			"resources": entries,
			"exports":   exports,
		}
		if len(advisories) > 0 {
			out["advisories"] = advisories
		}
		data, err = json.MarshalIndent(out, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case "yaml":
		out := map[string]any{
			"stack":     st.Name(),
			"resources": entries,
			"exports":   exports,
		}
		if len(advisories) > 0 {
			out["advisories"] = advisories
		}
		data, err = yaml.Marshal(out)
	default:
		return fmt.Errorf("unknown format: %s (expected text, json, or yaml)", outputFormat)
	}
	if err != nil {
		return fmt.Errorf("failed to format preview: %w", err)
	}

	return writeOutput(outputFile, data)
}

func formatPreviewText(stackName string, entries []previewEntry, exports []engine.Export, advisories []guardrails.Issue) string {
	out := fmt.Sprintf("Stack: %s\n\n", stackName)
	for _, e := range entries {
		out += fmt.Sprintf("  + %s  [%s]\n", e.Name, e.Kind)
	}
	out += fmt.Sprintf("\n%d resources\n", len(entries))
	if len(exports) > 0 {
		out += "\nExports:\n"
		for _, ex := range exports {
			out += fmt.Sprintf("  %s: %v\n", ex.Name, ex.Value)
		}
	}
	if len(advisories) > 0 {
		out += "\nAdvisories:\n"
		for _, issue := range advisories {
			out += fmt.Sprintf("  %s: %s [%s]\n", issue.Resource, issue.Message, issue.Rule)
		}
	}
	return out
}

func writeOutput(outputFile string, data []byte) error {
	if outputFile == "" {
		fmt.Print(string(data))
		return nil
	}
	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Printf("Wrote %s\n", outputFile)
	return nil
}
