package builtins

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/esvm-go/esvm/internal/plugin"
	"github.com/esvm-go/esvm/internal/runtime"
)

// ConsolePlugin stages a `console` global whose log/info/warn/error methods
// write formatted argument lists to stdout/stderr (how a script host
// usually observes a script's output) and additionally
// record the same line through realm.Log (internal/vmlog) so a host running
// headless (internal/test262, cmd/esvm without a TTY) still gets
// structured records of what a script printed.
func ConsolePlugin() plugin.Plugin {
	return plugin.Plugin{
		ID:                       "console",
		Depends:                  []string{"core"},
		SetDefaultGlobalBindings: setConsoleGlobalBindings,
	}
}

func setConsoleGlobalBindings(realm *runtime.Realm, globals *plugin.Globals) {
	console := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	install := func(name string, w *os.File, level func(msg string, fields ...zap.Field)) {
		method(realm, console, name, 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
			line := formatConsoleArgs(args)
			fmt.Fprintln(w, line)
			level(line)
			return undef()
		})
	}
	install("log", os.Stdout, realm.Log.Info)
	install("info", os.Stdout, realm.Log.Info)
	install("warn", os.Stderr, realm.Log.Warn)
	install("error", os.Stderr, realm.Log.Error)
	install("debug", os.Stdout, realm.Log.Debug)
	globals.Stage("console", runtime.NewDataDescriptor(console, true, false, true))
}

func formatConsoleArgs(args []runtime.Value) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		out += consoleFormat(a)
	}
	return out
}

func consoleFormat(v runtime.Value) string {
	switch vv := v.(type) {
	case runtime.String:
		return vv.String()
	case nil:
		return "undefined"
	case *runtime.Obj:
		if vv.Kind == runtime.KindArray {
			n := arrLen(vv)
			parts := make([]string, n)
			for i := 0; i < n; i++ {
				parts[i] = consoleFormat(arrAt(vv, i))
			}
			return "[ " + joinStrings(parts, ", ") + " ]"
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
