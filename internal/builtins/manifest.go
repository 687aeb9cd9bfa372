package builtins

import (
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/esvm-go/esvm/internal/plugin"
)

// manifest is the on-disk shape of a bundle manifest: a plain list of
// plugin IDs (see Registry for the recognized names). The list doubles as
// the plugin DAG's entry set, since internal/plugin.Order derives the
// rest from each plugin's own Depends.
type manifest struct {
	Name    string   `yaml:"name"`
	Plugins []string `yaml:"plugins"`
}

// Registry maps every built-in plugin's ID (internal/plugin.Plugin.ID) to
// its constructor, so a manifest can name plugins without this package
// exposing a giant switch at every call site that wants one.
func Registry() map[string]func() plugin.Plugin {
	return map[string]func() plugin.Plugin{
		"core":        CorePlugin,
		"array":       ArrayPlugin,
		"string":      StringPlugin,
		"number":      NumberPlugin,
		"boolean":     BooleanPlugin,
		"symbol":      SymbolPlugin,
		"math":        MathPlugin,
		"json":        JSONPlugin,
		"error":       ErrorPlugin,
		"mapset":      MapSetPlugin,
		"promise":     PromisePlugin,
		"regexp":      RegExpPlugin,
		"globalfuncs": GlobalFunctionsPlugin,
		"console":     ConsolePlugin,
	}
}

// ParseManifest decodes a YAML bundle manifest and resolves each named
// plugin through Registry, returning the plugin
// set in manifest order (internal/plugin.Order re-sorts it topologically;
// manifest order only affects nothing observable, same as Bundle()'s own
// slice order).
//
// An unrecognized plugin name is reported with the manifest's own Name
// field for context — the manifest-level analogue of Order's
// unresolved-dependency error, one layer before internal/plugin.Order
// ever runs.
func ParseManifest(data []byte) ([]plugin.Plugin, error) {
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("builtins: invalid bundle manifest: %w", err)
	}
	if len(m.Plugins) == 0 {
		return nil, fmt.Errorf("builtins: bundle manifest %q lists no plugins", m.Name)
	}

	registry := Registry()
	plugins := make([]plugin.Plugin, 0, len(m.Plugins))
	seen := make(map[string]bool, len(m.Plugins))
	for _, name := range m.Plugins {
		if seen[name] {
			continue
		}
		seen[name] = true
		ctor, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("builtins: bundle manifest %q names unknown plugin %q", m.Name, name)
		}
		plugins = append(plugins, ctor())
	}
	return plugins, nil
}
