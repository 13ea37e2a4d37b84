// Command tech-holiday previews the tech-holiday infrastructure stacks.
//
// Usage:
//
//	tech-holiday preview              Preview resources for the configured stack
//	tech-holiday graph                Render the dependency graph
//	tech-holiday export               Show stack exports
//	tech-holiday watch                Re-preview on config changes
//	tech-holiday version              Show version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tech-holiday",
		Short: "Preview tech-holiday infrastructure stacks",
		Long: `tech-holiday runs the infrastructure stack programs against a mock
provisioning backend and shows what would be created.

The stack is selected by stack.yaml in the working directory:

    stack: dev
    accountId: "123456789012"
    region: us-west-2

The literal stack name "bootstrap" selects the state-storage stack;
any other name selects the application stack.`,
	}

	rootCmd.AddCommand(
		newPreviewCmd(),
		newGraphCmd(),
		newExportCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tech-holiday %s\n", getVersion())
		},
	}
}
