package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eddalmond/pulumi-tech-holiday/internal/graphviz"
	"github.com/eddalmond/pulumi-tech-holiday/internal/stackconf"
)

// newGraphCmd creates the "graph" subcommand.
func newGraphCmd() *cobra.Command {
	var (
		configFile   string
		outputFormat string
		outputFile   string
		cluster      bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the stack's dependency graph",
		Long: `Graph runs the configured stack program and renders its resource
dependency graph.

Examples:
    tech-holiday graph
    tech-holiday graph --format mermaid
    tech-holiday graph --cluster -o stack.dot`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(configFile, outputFormat, outputFile, cluster)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", stackconf.DefaultFile, "Stack config file")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "dot", "Output format: dot or mermaid")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&cluster, "cluster", false, "Group resources by AWS service")

	return cmd
}

func runGraph(configFile, outputFormat, outputFile string, cluster bool) error {
	switch graphviz.Format(outputFormat) {
	case graphviz.FormatDOT, graphviz.FormatMermaid:
	default:
		return fmt.Errorf("unknown format: %s (expected dot or mermaid)", outputFormat)
	}

	st, _, err := runStack(configFile)
	if err != nil {
		return err
	}

	gen := &graphviz.Generator{
		Format:           graphviz.Format(outputFormat),
		ClusterByService: cluster,
	}

	if outputFile == "" {
		return gen.Generate(st.Resources(), os.Stdout)
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := gen.Generate(st.Resources(), f); err != nil {
		return fmt.Errorf("failed to render graph: %w", err)
	}
	fmt.Printf("Wrote %s\n", outputFile)
	return nil
}
