package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set by build flags.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "esvm",
	Short: "esvm: a specification-faithful ECMAScript evaluation runtime",
	Long: `esvm runs an already-parsed ECMAScript syntax tree (given as a JSON AST
document of the shape the ast package fixes) and reports the observable effects
the language standard prescribes: expression values, control flow,
exceptions, and microtask ordering.

esvm never parses source text itself; "run" consumes a JSON AST produced by
a host's own parser (or a test fixture), not .js source.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose structured logging")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
