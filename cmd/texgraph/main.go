package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "texgraph",
	Short: "Dependency graphs for mathematical LaTeX projects",
	Long: `texgraph expands a multi-file LaTeX project, scans it for statement
environments annotated with \uses and \proves, and emits the resulting
dependency graph as Graphviz DOT and TikZ.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(categoriesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
