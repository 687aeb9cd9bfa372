package esvm

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/esvm-go/esvm/internal/runtime"
)

// Builders for the JSON AST documents the scenario tests feed LoadTree.
// Each returns the JSON text of one node; programs are assembled by plain
// string concatenation, which keeps the scripts below readable without a
// parser in the loop.

func jProgram(stmts ...string) string {
	return `{"kind":"Program","body":[` + strings.Join(stmts, ",") + `]}`
}

func jExpr(e string) string { return `{"kind":"ExpressionStatement","expression":` + e + `}` }

func jIdent(name string) string { return `{"kind":"Identifier","name":"` + name + `"}` }

func jNum(lit string) string { return `{"kind":"NumericLiteral","value":` + lit + `}` }

func jStr(s string) string { return `{"kind":"StringLiteral","value":"` + s + `"}` }

func jBool(lit string) string { return `{"kind":"BooleanLiteral","value":` + lit + `}` }

func jArray(elems ...string) string {
	return `{"kind":"ArrayExpression","elements":[` + strings.Join(elems, ",") + `]}`
}

func jDecl(kind, name, init string) string {
	d := `{"kind":"VariableDeclarator","id":` + jIdent(name)
	if init != "" {
		d += `,"init":` + init
	}
	d += `}`
	return `{"kind":"VariableDeclaration","varKind":"` + kind + `","declarations":[` + d + `]}`
}

func jAssign(left, right string) string {
	return `{"kind":"AssignmentExpression","operator":"=","left":` + left + `,"right":` + right + `}`
}

func jBinary(op, left, right string) string {
	return `{"kind":"BinaryExpression","operator":"` + op + `","left":` + left + `,"right":` + right + `}`
}

func jMember(obj, prop string) string {
	return `{"kind":"MemberExpression","object":` + obj + `,"property":` + jIdent(prop) + `}`
}

func jCall(callee string, args ...string) string {
	return `{"kind":"CallExpression","callee":` + callee + `,"arguments":[` + strings.Join(args, ",") + `]}`
}

func jNew(callee string, args ...string) string {
	return `{"kind":"NewExpression","callee":` + callee + `,"arguments":[` + strings.Join(args, ",") + `]}`
}

func jReturn(arg string) string {
	if arg == "" {
		return `{"kind":"ReturnStatement"}`
	}
	return `{"kind":"ReturnStatement","argument":` + arg + `}`
}

func jBlock(stmts ...string) string {
	return `{"kind":"BlockStatement","body":[` + strings.Join(stmts, ",") + `]}`
}

func jFunc(name, flags string, params []string, stmts ...string) string {
	ps := make([]string, len(params))
	for i, p := range params {
		ps[i] = jIdent(p)
	}
	out := `{"kind":"FunctionDeclaration","id":` + jIdent(name)
	if flags != "" {
		out += "," + flags
	}
	return out + `,"params":[` + strings.Join(ps, ",") + `],"body":` + jBlock(stmts...) + `}`
}

// jArrow builds an arrow function; a single statement body string starting
// with {"kind":"BlockStatement" is used as-is, anything else becomes an
// expression body.
func jArrow(async bool, params []string, body string) string {
	ps := make([]string, len(params))
	for i, p := range params {
		ps[i] = jIdent(p)
	}
	out := `{"kind":"ArrowFunctionExpression","params":[` + strings.Join(ps, ",") + `],"body":` + body
	if !strings.HasPrefix(body, `{"kind":"BlockStatement"`) {
		out += `,"expressionBody":true`
	}
	if async {
		out += `,"async":true`
	}
	return out + `}`
}

func jYield(arg string) string {
	return `{"kind":"YieldExpression","argument":` + arg + `}`
}

func jAwait(arg string) string {
	return `{"kind":"AwaitExpression","argument":` + arg + `}`
}

func jTryCatch(tryStmts []string, param string, catchStmts []string) string {
	return `{"kind":"TryStatement","block":` + jBlock(tryStmts...) +
		`,"handler":{"kind":"CatchClause","param":` + jIdent(param) + `,"body":` + jBlock(catchStmts...) + `}}`
}

func runScenario(t *testing.T, src string) *VM {
	t.Helper()
	program, err := LoadTree([]byte(src))
	if err != nil {
		t.Fatalf("LoadTree() error = %v", err)
	}
	vm, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	result := vm.RunScript(context.Background(), program, src, "<scenario>")
	if result.Diagnostic != nil {
		t.Fatalf("unexpected diagnostic: %s", result.Diagnostic.Message)
	}
	return vm
}

// global reads a top-level `var` binding off the realm's global object
// after the script (and its microtasks) finished.
func global(t *testing.T, vm *VM, name string) runtime.Value {
	t.Helper()
	return vm.Realm.GlobalObj.Get(runtime.StringKey(name))
}

func globalString(t *testing.T, vm *VM, name string) string {
	t.Helper()
	s, ok := global(t, vm, name).(runtime.String)
	if !ok {
		t.Fatalf("global %q = %#v, want runtime.String", name, global(t, vm, name))
	}
	return s.String()
}

func globalNumber(t *testing.T, vm *VM, name string) float64 {
	t.Helper()
	n, ok := global(t, vm, name).(runtime.Number)
	if !ok {
		t.Fatalf("global %q = %#v, want runtime.Number", name, global(t, vm, name))
	}
	return float64(n)
}

// TestScenarioFibonacciGenerator drives a synchronous generator through ten
// next() pulls: function* fib(){ let a=0,b=1; while(true){ yield a; ... } }.
func TestScenarioFibonacciGenerator(t *testing.T) {
	src := jProgram(
		jFunc("fib", `"generator":true`, nil,
			jDecl("let", "a", jNum("0")),
			jDecl("let", "b", jNum("1")),
			`{"kind":"WhileStatement","test":`+jBool("true")+`,"body":`+jBlock(
				jExpr(jYield(jIdent("a"))),
				jDecl("let", "t", jBinary("+", jIdent("a"), jIdent("b"))),
				jExpr(jAssign(jIdent("a"), jIdent("b"))),
				jExpr(jAssign(jIdent("b"), jIdent("t"))),
			)+`}`,
		),
		jDecl("const", "g", jCall(jIdent("fib"))),
		jDecl("const", "out", jArray()),
		`{"kind":"ForStatement","init":`+jDecl("let", "i", jNum("0"))+
			`,"test":`+jBinary("<", jIdent("i"), jNum("10"))+
			`,"update":{"kind":"UpdateExpression","operator":"++","argument":`+jIdent("i")+`,"prefix":false}`+
			`,"body":`+jExpr(jCall(jMember(jIdent("out"), "push"), jMember(jCall(jMember(jIdent("g"), "next")), "value")))+`}`,
		jDecl("var", "result", jCall(jMember(jIdent("out"), "join"), jStr(","))),
	)
	vm := runScenario(t, src)
	if got := globalString(t, vm, "result"); got != "0,1,1,2,3,5,8,13,21,34" {
		t.Errorf("fib sequence = %q, want %q", got, "0,1,1,2,3,5,8,13,21,34")
	}
}

// TestScenarioGeneratorInjectedValue checks next(v) injecting v as the
// value of the suspended yield expression.
func TestScenarioGeneratorInjectedValue(t *testing.T) {
	src := jProgram(
		jFunc("f", `"generator":true`, nil,
			jDecl("const", "x", jYield(jNum("1"))),
			jExpr(jYield(jBinary("+", jIdent("x"), jNum("1")))),
		),
		jDecl("const", "i", jCall(jIdent("f"))),
		jExpr(jCall(jMember(jIdent("i"), "next"))),
		jDecl("var", "result", jMember(jCall(jMember(jIdent("i"), "next"), jNum("10")), "value")),
	)
	vm := runScenario(t, src)
	if got := globalNumber(t, vm, "result"); got != 11 {
		t.Errorf("injected yield result = %v, want 11", got)
	}
}

// TestScenarioPromiseOrdering asserts reactions run after the synchronous
// body, in registration order.
func TestScenarioPromiseOrdering(t *testing.T) {
	record := func(tag string) string {
		return jArrow(false, []string{"x"},
			jCall(jMember(jIdent("order"), "push"), jBinary("+", jStr(tag), jIdent("x"))))
	}
	src := jProgram(
		jDecl("var", "order", jArray()),
		jExpr(jCall(jMember(jCall(jMember(jIdent("Promise"), "resolve"), jNum("1")), "then"), record("a"))),
		jExpr(jCall(jMember(jCall(jMember(jIdent("Promise"), "resolve"), jNum("2")), "then"), record("b"))),
		jExpr(jCall(jMember(jIdent("order"), "push"), jStr("sync"))),
	)
	vm := runScenario(t, src)
	order, ok := global(t, vm, "order").(*runtime.Obj)
	if !ok {
		t.Fatal("global order is not an object")
	}
	var got []string
	for i := 0; ; i++ {
		v := order.Get(runtime.StringKey(strconv.Itoa(i)))
		if _, isUndef := v.(runtime.Undefined); v == nil || isUndef {
			break
		}
		got = append(got, runtime.ToGoString(v))
	}
	want := []string{"sync", "a1", "b2"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("reaction order = %v, want %v", got, want)
	}
}

// TestScenarioAsyncAwait: an async function awaiting an already-resolved
// promise settles its own promise on a later microtask turn.
func TestScenarioAsyncAwait(t *testing.T) {
	src := jProgram(
		jFunc("f", `"async":true`, nil,
			jDecl("const", "x", jAwait(jCall(jMember(jIdent("Promise"), "resolve"), jNum("3")))),
			jReturn(jBinary("+", jIdent("x"), jNum("1"))),
		),
		jDecl("var", "result", jNum("0")),
		jExpr(jCall(jMember(jCall(jIdent("f")), "then"),
			jArrow(false, []string{"v"}, jAssign(jIdent("result"), jIdent("v"))))),
	)
	vm := runScenario(t, src)
	if got := globalNumber(t, vm, "result"); got != 4 {
		t.Errorf("await result = %v, want 4", got)
	}
}

// TestScenarioDerivedClassSuper: super.m() dispatches through the home
// object's prototype with the original this.
func TestScenarioDerivedClassSuper(t *testing.T) {
	method := func(name string, stmts ...string) string {
		return `{"kind":"MethodDefinition","key":` + jIdent(name) + `,"methodKind":"method","value":` +
			`{"kind":"FunctionExpression","params":[],"body":` + jBlock(stmts...) + `}}`
	}
	src := jProgram(
		`{"kind":"ClassDeclaration","id":`+jIdent("A")+`,"body":{"kind":"ClassBody","body":[`+
			method("m", jReturn(jNum("1")))+`]}}`,
		`{"kind":"ClassDeclaration","id":`+jIdent("B")+`,"superClass":`+jIdent("A")+`,"body":{"kind":"ClassBody","body":[`+
			method("m", jReturn(jBinary("+",
				jCall(`{"kind":"MemberExpression","object":{"kind":"SuperExpression"},"property":`+jIdent("m")+`}`),
				jNum("10"))))+`]}}`,
		jDecl("var", "result", jCall(jMember(jNew(jIdent("B")), "m"))),
	)
	vm := runScenario(t, src)
	if got := globalNumber(t, vm, "result"); got != 11 {
		t.Errorf("super dispatch result = %v, want 11", got)
	}
}

// TestScenarioTemporalDeadZone: reading a let binding before its
// declaration throws ReferenceError.
func TestScenarioTemporalDeadZone(t *testing.T) {
	src := jProgram(
		jDecl("var", "result", jStr("")),
		jTryCatch(
			[]string{jExpr(jIdent("x")), jDecl("let", "x", jNum("1"))},
			"e",
			[]string{jExpr(jAssign(jIdent("result"), jMember(jIdent("e"), "name")))},
		),
	)
	vm := runScenario(t, src)
	if got := globalString(t, vm, "result"); got != "ReferenceError" {
		t.Errorf("TDZ error name = %q, want %q", got, "ReferenceError")
	}
}

// TestScenarioStrictDeleteOfVariable: delete of an unqualified identifier
// in strict-mode code (the parser's propagated `strict` annotation)
// surfaces as SyntaxError; the same delete in sloppy code instead asks the
// environment and reports false for the non-deletable var.
func TestScenarioStrictDeleteOfVariable(t *testing.T) {
	src := jProgram(
		jDecl("var", "result", jStr("")),
		jTryCatch(
			[]string{
				jDecl("var", "y", jNum("1")),
				jExpr(`{"kind":"UnaryExpression","operator":"delete","strict":true,"argument":{"kind":"Identifier","name":"y","strict":true}}`),
			},
			"e",
			[]string{jExpr(jAssign(jIdent("result"), jMember(jIdent("e"), "name")))},
		),
	)
	vm := runScenario(t, src)
	if got := globalString(t, vm, "result"); got != "SyntaxError" {
		t.Errorf("delete error name = %q, want %q", got, "SyntaxError")
	}
}

// TestScenarioSloppyDeleteOfVariable: without the strict annotation the
// same delete is answered by DeleteBinding, which refuses to remove a
// var-declared global.
func TestScenarioSloppyDeleteOfVariable(t *testing.T) {
	src := jProgram(
		jDecl("var", "y", jNum("1")),
		jDecl("var", "result", `{"kind":"UnaryExpression","operator":"delete","argument":`+jIdent("y")+`}`),
	)
	vm := runScenario(t, src)
	v, ok := global(t, vm, "result").(runtime.Boolean)
	if !ok || bool(v) {
		t.Errorf("sloppy delete of a var = %#v, want false", global(t, vm, "result"))
	}
}

// TestScenarioAsyncGeneratorBackpressure: for await over an async generator
// observes each yield on its own microtask turn, in order.
func TestScenarioAsyncGeneratorBackpressure(t *testing.T) {
	src := jProgram(
		jDecl("var", "seen", jArray()),
		jFunc("g", `"generator":true,"async":true`, nil,
			jExpr(jYield(jNum("1"))),
			jExpr(jYield(jNum("2"))),
			jExpr(jYield(jNum("3"))),
		),
		jExpr(jCall(jArrow(true, nil, jBlock(
			`{"kind":"ForOfStatement","await":true,"left":`+jDecl("const", "v", "")+
				`,"right":`+jCall(jIdent("g"))+
				`,"body":`+jExpr(jCall(jMember(jIdent("seen"), "push"), jIdent("v")))+`}`,
		)))),
	)
	vm := runScenario(t, src)
	seen, ok := global(t, vm, "seen").(*runtime.Obj)
	if !ok {
		t.Fatal("global seen is not an object")
	}
	for i, want := range []float64{1, 2, 3} {
		v, ok := seen.Get(runtime.StringKey(strconv.Itoa(i))).(runtime.Number)
		if !ok || float64(v) != want {
			t.Errorf("seen[%d] = %#v, want %v", i, seen.Get(runtime.StringKey(strconv.Itoa(i))), want)
		}
	}
	if length, ok := seen.Get(runtime.StringKey("length")).(runtime.Number); !ok || length != 3 {
		t.Errorf("seen.length = %#v, want 3", seen.Get(runtime.StringKey("length")))
	}
}
