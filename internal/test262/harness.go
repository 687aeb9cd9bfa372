package test262

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/esvm-go/esvm/internal/runtime"
	"github.com/esvm-go/esvm/pkg/esvm"
)

// Harness resolves a fixture's includes against a directory of shared
// support files (test262's own harness/ directory equivalent) and runs
// each fixture against a freshly-assembled VM, matching how the real
// test262 runner gives every test case its own realm.
type Harness struct {
	IncludesDir string
	Opts        []esvm.Option
}

// Outcome is a single fixture's verdict.
type Outcome struct {
	Fixture *Fixture
	Passed  bool
	Reason  string
}

// Run executes one fixture: its declared includes first, in file order,
// then its own body, all against one VM so top-level `var`/function
// declarations from an include are visible to the test body (test262's own
// execution model for harness files).
func (h *Harness) Run(ctx context.Context, fx *Fixture) Outcome {
	vm, err := esvm.New(h.Opts...)
	if err != nil {
		return Outcome{Fixture: fx, Passed: false, Reason: fmt.Sprintf("VM assembly failed: %v", err)}
	}

	for _, include := range fx.Meta.Includes {
		incPath := include
		if h.IncludesDir != "" && !filepath.IsAbs(incPath) {
			incPath = filepath.Join(h.IncludesDir, include)
		}
		incFixture, err := LoadFixture(incPath)
		if err != nil {
			return Outcome{Fixture: fx, Passed: false, Reason: fmt.Sprintf("include %s: %v", include, err)}
		}
		program, err := esvm.LoadTree([]byte(incFixture.Body))
		if err != nil {
			return Outcome{Fixture: fx, Passed: false, Reason: fmt.Sprintf("include %s: decode: %v", include, err)}
		}
		res := vm.RunScript(ctx, program, incFixture.Body, incPath)
		if res.Diagnostic != nil {
			return Outcome{Fixture: fx, Passed: false, Reason: fmt.Sprintf("include %s threw: %s", include, res.Diagnostic.Message)}
		}
	}

	program, err := esvm.LoadTree([]byte(fx.Body))
	if err != nil {
		return Outcome{Fixture: fx, Passed: false, Reason: fmt.Sprintf("decode: %v", err)}
	}

	result := vm.RunScript(ctx, program, fx.Body, fx.Path)
	return h.judge(fx, result)
}

// judge compares a run's outcome against the fixture's negative expectation
// (if any): a negative fixture passes only if evaluation threw an error of
// the declared Type; a positive fixture passes only if it didn't throw.
func (h *Harness) judge(fx *Fixture, result esvm.Result) Outcome {
	if fx.Meta.Negative == nil {
		if result.Diagnostic != nil {
			return Outcome{Fixture: fx, Passed: false, Reason: "unexpected throw: " + result.Diagnostic.Message}
		}
		return Outcome{Fixture: fx, Passed: true}
	}

	if result.Diagnostic == nil {
		return Outcome{Fixture: fx, Passed: false, Reason: fmt.Sprintf("expected a %s but evaluation completed normally", fx.Meta.Negative.Type)}
	}
	if fx.Meta.Negative.Type == "" {
		return Outcome{Fixture: fx, Passed: true}
	}
	gotType := errorTypeOf(result.Value)
	if gotType != fx.Meta.Negative.Type {
		return Outcome{Fixture: fx, Passed: false, Reason: fmt.Sprintf("expected %s, got %s (%s)", fx.Meta.Negative.Type, gotType, result.Diagnostic.Message)}
	}
	return Outcome{Fixture: fx, Passed: true}
}

func errorTypeOf(v runtime.Value) string {
	obj, ok := v.(*runtime.Obj)
	if !ok {
		return ""
	}
	return runtime.ToGoString(obj.Get(runtime.StringKey("name")))
}
