package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/esvm-go/esvm/internal/builtins"
	"github.com/esvm-go/esvm/internal/plugin"
)

var bundlesManifestFile string

var bundlesCmd = &cobra.Command{
	Use:   "bundles",
	Short: "List the plugin bundles a VM can be assembled from",
	Long: `Shows the dependency-ordered plugin list for both the "full" bundle
(every built-in library object) and the "minimal" bundle (just enough to run
a script that touches no built-in beyond Object/Function/Error). With
--manifest, instead resolves and
lists the bundle described by a YAML plugin manifest.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if bundlesManifestFile != "" {
			data, err := os.ReadFile(bundlesManifestFile)
			if err != nil {
				return fmt.Errorf("failed to read bundle manifest %s: %w", bundlesManifestFile, err)
			}
			plugins, err := builtins.ParseManifest(data)
			if err != nil {
				return fmt.Errorf("failed to parse bundle manifest %s: %w", bundlesManifestFile, err)
			}
			printOrder(bundlesManifestFile, plugins)
			return nil
		}
		printOrder("full", builtins.Bundle())
		fmt.Println()
		printOrder("minimal", builtins.MinimalBundle())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bundlesCmd)
	bundlesCmd.Flags().StringVar(&bundlesManifestFile, "manifest", "", "list the bundle described by this YAML plugin manifest instead of full/minimal")
}

func printOrder(label string, plugins []plugin.Plugin) {
	ordered, err := plugin.Order(plugins)
	if err != nil {
		fmt.Printf("%s: error: %v\n", label, err)
		return
	}
	fmt.Printf("%s bundle (%d plugins, load order):\n", label, len(ordered))
	for _, p := range ordered {
		fmt.Printf("  - %s\n", p.ID)
	}
}
