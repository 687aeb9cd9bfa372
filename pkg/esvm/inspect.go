package esvm

import "github.com/esvm-go/esvm/internal/runtime"

// Inspect renders a completion value for host display (cmd/esvm's `run`
// output, REPL-style tooling): arrays print bracketed, callables print a
// `[Function: name]` placeholder, everything else falls back to
// runtime.ToGoString. Mirrors internal/builtins's unexported
// consoleFormat closely enough that console.log output and a script's
// final expression value look consistent to a host, without this package
// depending on internal/builtins (which depends on internal/plugin,
// internal/realm's own assembly concern — pkg/esvm only needs the display
// rule, not a plugin).
func Inspect(v runtime.Value) string {
	switch vv := v.(type) {
	case nil:
		return "undefined"
	case runtime.String:
		return vv.String()
	case *runtime.Obj:
		if vv.Kind == runtime.KindArray {
			n := 0
			if lenVal, ok := vv.Get(runtime.StringKey("length")).(runtime.Number); ok {
				n = int(lenVal)
			}
			out := "[ "
			for i := 0; i < n; i++ {
				if i > 0 {
					out += ", "
				}
				out += Inspect(vv.Get(runtime.StringKey(itoaFast(i))))
			}
			return out + " ]"
		}
		if vv.IsCallable() {
			name := ""
			if vv.Fn != nil {
				name = vv.Fn.Name
			}
			return "[Function: " + name + "]"
		}
		return runtime.ToGoString(vv)
	default:
		return v.String()
	}
}

func itoaFast(i int) string {
	if i == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[pos:])
}
