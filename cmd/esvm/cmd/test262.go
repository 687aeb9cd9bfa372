package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/esvm-go/esvm/internal/test262"
)

var includesDir string

var test262Cmd = &cobra.Command{
	Use:   "test262 <dir>",
	Short: "Run a directory of test262-shaped JSON AST fixtures",
	Long: `Walks a directory of .json fixtures (YAML frontmatter over a JSON AST
body, per internal/test262's convention), runs each against a fresh VM, and
prints a JSON summary.`,
	Args: cobra.ExactArgs(1),
	RunE: runTest262,
}

func init() {
	rootCmd.AddCommand(test262Cmd)
	test262Cmd.Flags().StringVar(&includesDir, "includes", "", "directory holding shared include fixtures")
}

func runTest262(_ *cobra.Command, args []string) error {
	root := args[0]
	fixtures, loadErrs := test262.DiscoverFixtures(root, ".json")
	for _, e := range loadErrs {
		fmt.Fprintln(os.Stderr, "warning:", e)
	}
	if len(fixtures) == 0 {
		return fmt.Errorf("no fixtures found under %s", root)
	}

	h := &test262.Harness{IncludesDir: includesDir}
	ctx := context.Background()
	outcomes := make([]test262.Outcome, 0, len(fixtures))
	for _, fx := range fixtures {
		outcomes = append(outcomes, h.Run(ctx, fx))
	}

	report, err := test262.Report(outcomes)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	fmt.Println(report)

	for _, o := range outcomes {
		if !o.Passed {
			return fmt.Errorf("%d/%d fixtures failed", countFailed(outcomes), len(outcomes))
		}
	}
	return nil
}

func countFailed(outcomes []test262.Outcome) int {
	n := 0
	for _, o := range outcomes {
		if !o.Passed {
			n++
		}
	}
	return n
}
