package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var (
	demoAll bool

	demoCmd = &cobra.Command{
		Use:   "demo [example]",
		Short: "Run demonstrations",
		Long: `Run demonstrations of funcz examples.

Available examples:
  notify      Order notifications routed, filtered and fanned out
  resilience  Retry, circuit breaker, rate limiter and fallback
  flags       Flag fields and consumer chains`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeExampleNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			example := ""
			if len(args) > 0 {
				example = args[0]
			}
			return runDemo(cmd.Context(), cmd.OutOrStdout(), example, demoAll)
		},
	}
)

func init() {
	demoCmd.Flags().BoolVar(&demoAll, "all", false, "Run all demos sequentially")
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[37m"
)

func runDemo(ctx context.Context, out io.Writer, example string, all bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if all || example == "" {
		for _, ex := range getAllExamples() {
			if err := ex.Demo(ctx, out); err != nil {
				return fmt.Errorf("%s demo: %w", ex.Name(), err)
			}
		}
		return nil
	}

	ex, ok := getExampleByName(example)
	if !ok {
		return fmt.Errorf("unknown example: %s\n\nRun 'funcz list' to see available examples", example)
	}
	return ex.Demo(ctx, out)
}

func header(out io.Writer, title string) {
	fmt.Fprintf(out, "\n%s═══ %s ═══%s\n", colorCyan, title, colorReset)
}

func result(out io.Writer, ok bool, format string, args ...any) {
	color, mark := colorGreen, "✓"
	if !ok {
		color, mark = colorRed, "✗"
	}
	fmt.Fprintf(out, "  %s%s%s %s\n", color, mark, colorReset, fmt.Sprintf(format, args...))
}
