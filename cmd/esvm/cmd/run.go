package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/esvm-go/esvm/internal/builtins"
	"github.com/esvm-go/esvm/internal/vmlog"
	"github.com/esvm-go/esvm/pkg/esvm"
)

var (
	evalExpr   string
	dumpAST    bool
	trace      bool
	watch      bool
	minimal    bool
	bundleFile string
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a JSON AST document",
	Long: `Execute a program already parsed into the JSON AST shape the ast package
and pkg/esvm.LoadTree define, reading it from a file or from -e.

Examples:
  # Run a JSON AST fixture
  esvm run program.ast.json

  # Evaluate an inline document
  esvm run -e '{"kind":"Program","body":[]}'

  # Dump the decoded tree before running it
  esvm run --dump-ast program.ast.json

  # Re-run on every save
  esvm run --watch program.ast.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate an inline JSON AST document instead of reading from file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the decoded AST before running it")
	runCmd.Flags().BoolVar(&trace, "trace", false, "trace execution via structured logging")
	runCmd.Flags().BoolVar(&watch, "watch", false, "re-run the file on every save (ignored with -e)")
	runCmd.Flags().BoolVar(&minimal, "minimal", false, "assemble the minimal plugin bundle instead of the full one")
	runCmd.Flags().StringVar(&bundleFile, "bundle", "", "assemble the plugin bundle described by this YAML manifest instead of the full one")
}

func runScript(_ *cobra.Command, args []string) error {
	var (
		source   []byte
		filename string
		err      error
	)

	if evalExpr != "" {
		source = []byte(evalExpr)
		filename = "<eval>"
	} else if len(args) == 1 {
		filename = args[0]
		source, err = os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", filename, err)
		}
	} else {
		return fmt.Errorf("either provide a file path or use -e for an inline document")
	}

	if evalExpr == "" && watch {
		return watchAndRun(filename)
	}
	return runOnce(source, filename)
}

func runOnce(source []byte, filename string) error {
	program, err := esvm.LoadTree(source)
	if err != nil {
		return fmt.Errorf("failed to decode AST: %w", err)
	}

	if dumpAST {
		fmt.Println("AST:")
		fmt.Printf("%+v\n", program)
		fmt.Println()
	}

	log := vmlog.Nop()
	if verbose || trace {
		z, zerr := zap.NewDevelopment()
		if zerr == nil {
			log = vmlog.New(z)
		}
	}

	opts := []esvm.Option{esvm.WithLogger(log)}
	switch {
	case bundleFile != "":
		manifestData, merr := os.ReadFile(bundleFile)
		if merr != nil {
			return fmt.Errorf("failed to read bundle manifest %s: %w", bundleFile, merr)
		}
		plugins, perr := builtins.ParseManifest(manifestData)
		if perr != nil {
			return fmt.Errorf("failed to parse bundle manifest %s: %w", bundleFile, perr)
		}
		opts = append(opts, esvm.WithBundle(plugins))
	case minimal:
		opts = append(opts, esvm.WithMinimalBundle())
	}

	vm, err := esvm.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to assemble VM: %w", err)
	}

	if trace {
		fmt.Fprintf(os.Stderr, "[trace] evaluating %s\n", filename)
	}

	result := vm.RunScript(context.Background(), program, string(source), filename)
	if result.Diagnostic != nil {
		fmt.Fprint(os.Stderr, result.Diagnostic.Format(true))
		fmt.Fprintln(os.Stderr)
		return fmt.Errorf("uncaught exception")
	}

	fmt.Println(esvm.Inspect(result.Value))
	return nil
}

func watchAndRun(filename string) error {
	if err := runFromFile(filename); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filename); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filename, err)
	}

	fmt.Fprintf(os.Stderr, "[watch] watching %s for changes, ctrl-c to stop\n", filename)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fmt.Fprintf(os.Stderr, "[watch] re-running %s\n", filename)
			if err := runFromFile(filename); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "[watch] error: %v\n", werr)
		}
	}
}

func runFromFile(filename string) error {
	source, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return runOnce(source, filename)
}
