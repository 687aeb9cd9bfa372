package realm

import (
	"testing"

	"github.com/esvm-go/esvm/internal/builtins"
	"github.com/esvm-go/esvm/internal/plugin"
	"github.com/esvm-go/esvm/internal/runtime"
)

func TestBuildMinimalBundleLinksGlobalObjectPrototype(t *testing.T) {
	r, err := Build(builtins.MinimalBundle())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if r.GlobalObj == nil {
		t.Fatal("Build() should set GlobalObj")
	}
	objProto := r.Intrinsic("%Object.prototype%")
	if objProto == nil {
		t.Fatal("core plugin should install %Object.prototype%")
	}
	if r.GlobalObj.GetPrototypeOf() != objProto {
		t.Error("GlobalObj should be retroactively linked to %Object.prototype%")
	}
}

func TestBuildFullBundleBindsExpectedGlobals(t *testing.T) {
	r, err := Build(builtins.Bundle())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	for _, name := range []string{"Object", "Array", "Function", "Error", "Math", "JSON", "undefined"} {
		if !r.GlobalObj.HasProperty(runtime.StringKey(name)) {
			t.Errorf("global object missing binding %q", name)
		}
	}
}

func TestBuildAppliesOptions(t *testing.T) {
	called := false
	r, err := Build(builtins.MinimalBundle(),
		WithRandom(func() float64 { return 0.5 }),
		WithUnhandledRejectionSink(func(reason runtime.Value) { called = true }),
		WithCompileStringsAllowed(false),
	)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if r.Random == nil || r.Random() != 0.5 {
		t.Error("WithRandom should install the given PRNG hook")
	}
	if r.CompileStringsAllowed {
		t.Error("WithCompileStringsAllowed(false) should disable string compilation")
	}
	r.UnhandledRejection(runtime.Undefined{})
	if !called {
		t.Error("WithUnhandledRejectionSink should install the given hook")
	}
}

func TestBuildReportsPluginOrderingErrors(t *testing.T) {
	plugins := []plugin.Plugin{
		{ID: "broken", Depends: []string{"missing"}},
	}
	if _, err := Build(plugins); err == nil {
		t.Error("Build() should propagate a plugin ordering error")
	}
}
