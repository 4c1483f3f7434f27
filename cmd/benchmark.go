package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

var (
	benchAll bool

	benchmarkCmd = &cobra.Command{
		Use:     "benchmark [example]",
		Aliases: []string{"bench"},
		Short:   "Run performance benchmarks",
		Long: `Run in-process benchmarks for funcz examples.

When run without arguments or with --all, benchmarks every example.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeExampleNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			example := ""
			if len(args) > 0 {
				example = args[0]
			}
			return runBenchmark(cmd.OutOrStdout(), example, benchAll)
		},
	}
)

func init() {
	benchmarkCmd.Flags().BoolVar(&benchAll, "all", false, "Run all benchmarks")
}

func runBenchmark(out io.Writer, example string, all bool) error {
	if example != "" && all {
		return fmt.Errorf("cannot specify an example with --all")
	}

	examples := getAllExamples()
	if example != "" {
		ex, ok := getExampleByName(example)
		if !ok {
			return fmt.Errorf("unknown example: %s\n\nRun 'funcz list' to see available examples", example)
		}
		examples = []Example{ex}
	}

	for _, ex := range examples {
		fmt.Fprintf(out, "%s═══ %s BENCHMARK ═══%s\n", colorCyan, strings.ToUpper(ex.Name()), colorReset)
		r := testing.Benchmark(ex.Benchmark)
		fmt.Fprintf(out, "  %s%s%s\n", colorYellow, r.String(), colorReset)
		fmt.Fprintf(out, "  %s%s%s\n", colorGray, r.MemString(), colorReset)
	}
	return nil
}
