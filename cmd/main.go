package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	rootCmd = &cobra.Command{
		Use:   "funcz",
		Short: "Functional consumer demos and benchmarks",
		Long: `funcz is a CLI for exploring composable consumers, named stages
and flag fields through runnable demonstrations and benchmarks.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(benchmarkCmd)
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available examples",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Available examples:")
		fmt.Fprintln(out)
		for _, ex := range getAllExamples() {
			fmt.Fprintf(out, "  %-12s %s\n", ex.Name(), ex.Description())
		}
		return nil
	},
}
