package main

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// Example is a runnable demonstration with a matching benchmark.
type Example interface {
	Name() string
	Description() string
	Demo(ctx context.Context, out io.Writer) error
	Benchmark(b *testing.B)
}

func getAllExamples() []Example {
	return []Example{
		&NotifyExample{},
		&ResilienceExample{},
		&FlagsExample{},
	}
}

func getExampleByName(name string) (Example, bool) {
	for _, ex := range getAllExamples() {
		if ex.Name() == name {
			return ex, true
		}
	}
	return nil, false
}

func completeExampleNames(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var completions []string
	for _, ex := range getAllExamples() {
		if strings.HasPrefix(ex.Name(), toComplete) {
			completions = append(completions, ex.Name())
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}
