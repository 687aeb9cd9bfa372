package builtins

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/esvm-go/esvm/internal/plugin"
	"github.com/esvm-go/esvm/internal/runtime"
)

// JSONPlugin builds the JSON namespace object. JSON.parse is built on
// tidwall/gjson's generic Result walk (the same library pkg/esvm uses for
// host AST ingestion) rather than a hand-rolled parser. JSON.stringify has
// no gjson/sjson analogue for "serialize an arbitrary live Value graph"
// (sjson only patches existing JSON text by path), so it is a direct
// recursive encoder.
func JSONPlugin() plugin.Plugin {
	return plugin.Plugin{
		ID:               "json",
		Depends:          []string{"core"},
		CreateIntrinsics: createJSONIntrinsics,
	}
}

func createJSONIntrinsics(realm *runtime.Realm, globals *plugin.Globals) error {
	j := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	j.DefineOwnProperty(runtime.SymbolKey(runtime.SymToStringTag), runtime.NewDataDescriptor(runtime.NewStringFromGo("JSON"), false, false, true))

	staticMethod(realm, j, "parse", 2, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		text := runtime.ToGoString(argAt(args, 0))
		if !gjson.Valid(text) {
			return runtime.ThrowCompletion(realm.NewError("SyntaxError", "Unexpected token in JSON"))
		}
		return ok(gjsonToValue(realm, gjson.Parse(text)))
	})
	staticMethod(realm, j, "stringify", 3, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		indent := ""
		if sp := argAt(args, 2); sp != nil {
			switch v := sp.(type) {
			case runtime.Number:
				n := int(v)
				if n > 10 {
					n = 10
				}
				if n > 0 {
					indent = strings.Repeat(" ", n)
				}
			case runtime.String:
				indent = v.String()
			}
		}
		var b strings.Builder
		if !jsonStringify(&b, argAt(args, 0), indent, "") {
			return ok(runtime.Undefined{})
		}
		return ok(runtime.NewStringFromGo(b.String()))
	})

	realm.Intrinsics["%JSON%"] = j
	globals.Stage("JSON", runtime.NewDataDescriptor(j, true, false, true))
	return nil
}

func gjsonToValue(realm *runtime.Realm, r gjson.Result) runtime.Value {
	switch r.Type {
	case gjson.Null:
		return runtime.Null{}
	case gjson.False:
		return runtime.Boolean(false)
	case gjson.True:
		return runtime.Boolean(true)
	case gjson.Number:
		return runtime.Number(r.Num)
	case gjson.String:
		return runtime.NewStringFromGo(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			var items []runtime.Value
			r.ForEach(func(_, v gjson.Result) bool {
				items = append(items, gjsonToValue(realm, v))
				return true
			})
			return newArrayObj(realm, items)
		}
		o := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
		r.ForEach(func(k, v gjson.Result) bool {
			o.DefineOwnProperty(runtime.StringKey(k.String()), runtime.NewDataDescriptor(gjsonToValue(realm, v), true, true, true))
			return true
		})
		return o
	}
	return runtime.Undefined{}
}

// jsonStringify implements spec's SerializeJSONProperty for the subset of
// values JSON round-trips (undefined/functions/symbols at the top level
// serialize to nothing, per spec; returns false in that case).
func jsonStringify(b *strings.Builder, v runtime.Value, indent, cur string) bool {
	switch vv := v.(type) {
	case nil, runtime.Undefined:
		return false
	case runtime.Null:
		b.WriteString("null")
		return true
	case runtime.Boolean:
		if vv {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
		return true
	case runtime.Number:
		b.WriteString(runtime.Number(vv).String())
		return true
	case runtime.String:
		writeJSONString(b, vv.String())
		return true
	case *runtime.Symbol:
		return false
	case *runtime.Obj:
		if vv.IsCallable() {
			return false
		}
		if toJSON, isFn := vv.Get(runtime.StringKey("toJSON")).(*runtime.Obj); isFn && toJSON.IsCallable() {
			return jsonStringify(b, toJSON.Fn.Call(vv, nil).Value, indent, cur)
		}
		if vv.Kind == runtime.KindArray {
			return jsonStringifyArray(b, vv, indent, cur)
		}
		return jsonStringifyObject(b, vv, indent, cur)
	}
	return false
}

func jsonStringifyArray(b *strings.Builder, arr *runtime.Obj, indent, cur string) bool {
	n := arrLen(arr)
	if n == 0 {
		b.WriteString("[]")
		return true
	}
	next := cur + indent
	b.WriteString("[")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		newlineIndent(b, indent, next)
		if !jsonStringify(b, arrAt(arr, i), indent, next) {
			b.WriteString("null")
		}
	}
	newlineIndent(b, indent, cur)
	b.WriteString("]")
	return true
}

func jsonStringifyObject(b *strings.Builder, o *runtime.Obj, indent, cur string) bool {
	keys := enumerableOwnStringKeys(o)
	next := cur + indent
	b.WriteString("{")
	first := true
	for _, k := range keys {
		key := runtime.ToGoString(k)
		val := o.Get(runtime.StringKey(key))
		var tmp strings.Builder
		if !jsonStringify(&tmp, val, indent, next) {
			continue
		}
		if !first {
			b.WriteString(",")
		}
		first = false
		newlineIndent(b, indent, next)
		writeJSONString(b, key)
		b.WriteString(":")
		if indent != "" {
			b.WriteString(" ")
		}
		b.WriteString(tmp.String())
	}
	if !first {
		newlineIndent(b, indent, cur)
	}
	b.WriteString("}")
	return true
}

func newlineIndent(b *strings.Builder, indent, cur string) {
	if indent == "" {
		return
	}
	b.WriteString("\n")
	b.WriteString(cur)
}

func writeJSONString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				hex := strconv.FormatInt(int64(r), 16)
				b.WriteString(`\u`)
				b.WriteString(strings.Repeat("0", 4-len(hex)))
				b.WriteString(hex)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
}
