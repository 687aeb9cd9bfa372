package builtins

import (
	"testing"

	"github.com/esvm-go/esvm/internal/realm"
	"github.com/esvm-go/esvm/internal/runtime"
)

func buildFullRealm(t *testing.T) *runtime.Realm {
	t.Helper()
	r, err := realm.Build(Bundle())
	if err != nil {
		t.Fatalf("realm.Build(Bundle()) error = %v", err)
	}
	return r
}

func callGlobalMethod(t *testing.T, r *runtime.Realm, ns, method string, args ...runtime.Value) runtime.Value {
	t.Helper()
	nsObj, ok := r.GlobalObj.Get(runtime.StringKey(ns)).(*runtime.Obj)
	if !ok {
		t.Fatalf("global %q is not an object", ns)
	}
	fn, ok := nsObj.Get(runtime.StringKey(method)).(*runtime.Obj)
	if !ok || !fn.IsCallable() {
		t.Fatalf("%s.%s is not callable", ns, method)
	}
	c := fn.Fn.Call(nsObj, args)
	if c.Type == runtime.Throw {
		t.Fatalf("%s.%s threw: %v", ns, method, runtime.ToGoString(c.Value))
	}
	return c.Value
}

func TestArrayIsArray(t *testing.T) {
	r := buildFullRealm(t)
	arrCtor, ok := r.GlobalObj.Get(runtime.StringKey("Array")).(*runtime.Obj)
	if !ok || !arrCtor.IsConstructor() {
		t.Fatal("Array should be a constructor on the global object")
	}
	arr := arrCtor.Fn.Construct([]runtime.Value{runtime.Number(1), runtime.Number(2)}, arrCtor)
	if arr.Type == runtime.Throw {
		t.Fatalf("new Array(1, 2) threw: %v", arr.Value)
	}

	got := callGlobalMethod(t, r, "Array", "isArray", arr.Value)
	b, ok := got.(runtime.Boolean)
	if !ok || !bool(b) {
		t.Errorf("Array.isArray(new Array(...)) = %#v, want true", got)
	}

	got = callGlobalMethod(t, r, "Array", "isArray", runtime.Number(1))
	b, ok = got.(runtime.Boolean)
	if !ok || bool(b) {
		t.Errorf("Array.isArray(1) = %#v, want false", got)
	}
}

func TestJSONStringifyAndParseRoundTrip(t *testing.T) {
	r := buildFullRealm(t)

	obj := runtime.NewOrdinaryObject(r.Intrinsic("%Object.prototype%"))
	obj.DefineOwnProperty(runtime.StringKey("a"), runtime.NewDataDescriptor(runtime.Number(1), true, true, true))
	obj.DefineOwnProperty(runtime.StringKey("b"), runtime.NewDataDescriptor(runtime.NewStringFromGo("x"), true, true, true))

	stringified := callGlobalMethod(t, r, "JSON", "stringify", obj)
	s, ok := stringified.(runtime.String)
	if !ok {
		t.Fatalf("JSON.stringify result = %#v, want a String", stringified)
	}

	parsed := callGlobalMethod(t, r, "JSON", "parse", s)
	parsedObj, ok := parsed.(*runtime.Obj)
	if !ok {
		t.Fatalf("JSON.parse result = %#v, want an object", parsed)
	}
	a, _ := parsedObj.Get(runtime.StringKey("a")).(runtime.Number)
	if a != 1 {
		t.Errorf("round-tripped a = %v, want 1", a)
	}
	b, _ := parsedObj.Get(runtime.StringKey("b")).(runtime.String)
	if b.String() != "x" {
		t.Errorf("round-tripped b = %v, want \"x\"", b)
	}
}

func TestJSONParseRejectsInvalidText(t *testing.T) {
	r := buildFullRealm(t)
	jsonObj, _ := r.GlobalObj.Get(runtime.StringKey("JSON")).(*runtime.Obj)
	parse, _ := jsonObj.Get(runtime.StringKey("parse")).(*runtime.Obj)

	c := parse.Fn.Call(jsonObj, []runtime.Value{runtime.NewStringFromGo("{not json")})
	if c.Type != runtime.Throw {
		t.Error("JSON.parse(\"{not json\") should throw a SyntaxError")
	}
}

func TestMathPow(t *testing.T) {
	r := buildFullRealm(t)
	got := callGlobalMethod(t, r, "Math", "pow", runtime.Number(2), runtime.Number(10))
	n, ok := got.(runtime.Number)
	if !ok || n != 1024 {
		t.Errorf("Math.pow(2, 10) = %#v, want 1024", got)
	}
}

func TestMinimalBundleHasNoArrayOrJSON(t *testing.T) {
	r, err := realm.Build(MinimalBundle())
	if err != nil {
		t.Fatalf("realm.Build(MinimalBundle()) error = %v", err)
	}
	if r.GlobalObj.HasProperty(runtime.StringKey("Array")) {
		t.Error("MinimalBundle should not include Array")
	}
	if r.GlobalObj.HasProperty(runtime.StringKey("JSON")) {
		t.Error("MinimalBundle should not include JSON")
	}
	if !r.GlobalObj.HasProperty(runtime.StringKey("Error")) {
		t.Error("MinimalBundle should still include Error")
	}
}
