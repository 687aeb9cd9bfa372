package plugin

import (
	"testing"

	"github.com/esvm-go/esvm/internal/runtime"
)

func idsOf(plugins []Plugin) []string {
	ids := make([]string, len(plugins))
	for i, p := range plugins {
		ids[i] = p.ID
	}
	return ids
}

func TestOrderRespectsDependencies(t *testing.T) {
	plugins := []Plugin{
		{ID: "Array", Depends: []string{"Object"}},
		{ID: "Object"},
		{ID: "Map", Depends: []string{"Object", "Array"}},
	}

	ordered, err := Order(plugins)
	if err != nil {
		t.Fatalf("Order() error = %v", err)
	}

	pos := make(map[string]int, len(ordered))
	for i, p := range ordered {
		pos[p.ID] = i
	}
	if pos["Object"] > pos["Array"] {
		t.Errorf("Object must precede Array, got order %v", idsOf(ordered))
	}
	if pos["Array"] > pos["Map"] {
		t.Errorf("Array must precede Map, got order %v", idsOf(ordered))
	}
}

func TestOrderBreaksTiesNaturally(t *testing.T) {
	// No dependency relationship among these three: tie-break must be
	// natural (numeric-aware) order of the IDs, not insertion order.
	plugins := []Plugin{
		{ID: "Plugin10"},
		{ID: "Plugin2"},
		{ID: "Plugin1"},
	}

	ordered, err := Order(plugins)
	if err != nil {
		t.Fatalf("Order() error = %v", err)
	}

	got := idsOf(ordered)
	want := []string{"Plugin1", "Plugin2", "Plugin10"}
	for i, id := range want {
		if got[i] != id {
			t.Fatalf("Order() = %v, want %v", got, want)
		}
	}
}

func TestOrderIsDeterministicAcrossInputOrders(t *testing.T) {
	a := []Plugin{{ID: "Plugin1"}, {ID: "Plugin2"}, {ID: "Plugin10"}}
	b := []Plugin{{ID: "Plugin10"}, {ID: "Plugin1"}, {ID: "Plugin2"}}

	orderedA, err := Order(a)
	if err != nil {
		t.Fatalf("Order(a) error = %v", err)
	}
	orderedB, err := Order(b)
	if err != nil {
		t.Fatalf("Order(b) error = %v", err)
	}

	gotA, gotB := idsOf(orderedA), idsOf(orderedB)
	if len(gotA) != len(gotB) {
		t.Fatalf("length mismatch: %v vs %v", gotA, gotB)
	}
	for i := range gotA {
		if gotA[i] != gotB[i] {
			t.Errorf("order differs by input order: %v vs %v", gotA, gotB)
		}
	}
}

func TestOrderReportsUnresolvedDependency(t *testing.T) {
	plugins := []Plugin{{ID: "Array", Depends: []string{"Object"}}}
	if _, err := Order(plugins); err == nil {
		t.Error("expected an error for an unresolved dependency")
	}
}

func TestOrderReportsCycle(t *testing.T) {
	plugins := []Plugin{
		{ID: "A", Depends: []string{"B"}},
		{ID: "B", Depends: []string{"A"}},
	}
	if _, err := Order(plugins); err == nil {
		t.Error("expected an error for a dependency cycle")
	}
}

func TestOrderReportsDuplicateID(t *testing.T) {
	plugins := []Plugin{{ID: "Array"}, {ID: "Array"}}
	if _, err := Order(plugins); err == nil {
		t.Error("expected an error for a duplicate plugin id")
	}
}

func TestGlobalsStageGetFlush(t *testing.T) {
	g := NewGlobals()
	if _, ok := g.Get("Array"); ok {
		t.Fatal("fresh Globals should have no entries")
	}

	desc := runtime.NewDataDescriptor(runtime.Number(1), true, false, true)
	g.Stage("Array", desc)

	got, ok := g.Get("Array")
	if !ok || got != desc {
		t.Fatalf("Get(\"Array\") = %v, %v, want the staged descriptor", got, ok)
	}

	// Re-staging the same name updates the value without adding a second
	// flush entry.
	desc2 := runtime.NewDataDescriptor(runtime.Number(2), true, false, true)
	g.Stage("Array", desc2)

	obj := runtime.NewOrdinaryObject(nil)
	g.Flush(obj)

	prop := obj.GetOwnProperty(runtime.StringKey("Array"))
	if prop == nil {
		t.Fatal("Flush() did not define Array on the object")
	}
	if n, ok := prop.Value.(runtime.Number); !ok || n != 2 {
		t.Errorf("flushed Array value = %v, want the re-staged descriptor's value 2", prop.Value)
	}
}
