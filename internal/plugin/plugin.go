// Package plugin implements the VM's plugin composition: each built-in
// library object (and the evaluator core itself) declares an ID, a list
// of dependency IDs, and a pair of realm-construction hooks.
// internal/realm computes a topological order over the loaded set and
// runs those hooks in that order, so a plugin can rely on every
// dependency's intrinsics being installed before its own hooks fire.
package plugin

import (
	"fmt"
	"sort"

	"github.com/esvm-go/esvm/internal/runtime"
	"github.com/maruel/natural"
)

// Plugin is one contribution to a realm: an id, its dependencies, and
// two realm-construction hooks. Either hook may be nil
// (e.g. a plugin whose CreateIntrinsics stages everything it needs, or one
// that only declares a dependency ordering point with no intrinsics of its
// own).
type Plugin struct {
	ID      string
	Depends []string

	// CreateIntrinsics receives the partly-built realm and a staging area
	// for global bindings; it populates realm.Intrinsics and calls
	// Globals.Stage for anything that should end up on the global object.
	CreateIntrinsics func(realm *runtime.Realm, globals *Globals) error

	// SetDefaultGlobalBindings stages further global bindings, typically
	// ones that depend on another plugin's now-populated intrinsics. Run
	// as its own pass, after every plugin's CreateIntrinsics has run, so a
	// later plugin can already see an earlier plugin's intrinsics table
	// entries; internal/realm flushes the staged set afterwards.
	SetDefaultGlobalBindings func(realm *runtime.Realm, globals *Globals)
}

// Globals is the staging map for global bindings: CreateIntrinsics and
// SetDefaultGlobalBindings hooks populate it, and internal/realm flushes
// it onto the realm's actual global object once every hook has run.
type Globals struct {
	entries map[string]*runtime.PropertyDescriptor
	order   []string
}

func NewGlobals() *Globals {
	return &Globals{entries: make(map[string]*runtime.PropertyDescriptor)}
}

// Stage records a property that should land on the global object, keyed by
// its name (e.g. "Array", "Math", "undefined").
func (g *Globals) Stage(name string, desc *runtime.PropertyDescriptor) {
	if _, exists := g.entries[name]; !exists {
		g.order = append(g.order, name)
	}
	g.entries[name] = desc
}

// Get looks up a value staged earlier by this or another plugin — used
// when one plugin's SetDefaultGlobalBindings needs another's intrinsic
// (e.g. %Array.prototype.values% being wired onto `arguments` objects).
func (g *Globals) Get(name string) (*runtime.PropertyDescriptor, bool) {
	d, ok := g.entries[name]
	return d, ok
}

// Flush commits every staged entry onto obj in staging (first-insertion)
// order. Since string keys keep their insertion order on an object, this
// is also the order in which those names appear among obj's own keys.
func (g *Globals) Flush(obj *runtime.Obj) {
	for _, name := range g.order {
		obj.DefineOwnProperty(runtime.StringKey(name), g.entries[name])
	}
}

// Order computes the topological order over plugins: a dependency must
// precede its dependent. Two plugins with no ordering relationship
// between them are ordered by natural (numeric-aware) comparison of their
// IDs so the same set of plugins composes identically across runs and
// platforms. Returns an error naming the first unresolved dependency id,
// or the first cycle detected.
func Order(plugins []Plugin) ([]Plugin, error) {
	byID := make(map[string]Plugin, len(plugins))
	for _, p := range plugins {
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("plugin: duplicate plugin id %q", p.ID)
		}
		byID[p.ID] = p
	}
	for _, p := range plugins {
		for _, dep := range p.Depends {
			if _, ok := byID[dep]; !ok {
				return nil, fmt.Errorf("plugin: %q depends on unresolved plugin %q", p.ID, dep)
			}
		}
	}

	visited := make(map[string]int) // 0 unvisited, 1 visiting, 2 done
	var order []Plugin
	var visit func(id string, path []string) error
	visit = func(id string, path []string) error {
		switch visited[id] {
		case 2:
			return nil
		case 1:
			return fmt.Errorf("plugin: dependency cycle detected: %v", append(path, id))
		}
		visited[id] = 1
		p := byID[id]
		deps := append([]string(nil), p.Depends...)
		sort.Slice(deps, func(i, j int) bool { return natural.Less(deps[i], deps[j]) })
		for _, dep := range deps {
			if err := visit(dep, append(path, id)); err != nil {
				return err
			}
		}
		visited[id] = 2
		order = append(order, p)
		return nil
	}

	ids := make([]string, 0, len(plugins))
	for _, p := range plugins {
		ids = append(ids, p.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return natural.Less(ids[i], ids[j]) })
	for _, id := range ids {
		if err := visit(id, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}
