package builtins

import "github.com/esvm-go/esvm/internal/plugin"

// Bundle returns every built-in library plugin — the full bundle a
// general-purpose host loads. internal/realm.Build topologically sorts
// these, so declaration order here is irrelevant.
func Bundle() []plugin.Plugin {
	return []plugin.Plugin{
		CorePlugin(),
		ArrayPlugin(),
		StringPlugin(),
		NumberPlugin(),
		BooleanPlugin(),
		SymbolPlugin(),
		MathPlugin(),
		JSONPlugin(),
		ErrorPlugin(),
		MapSetPlugin(),
		PromisePlugin(),
		RegExpPlugin(),
		GlobalFunctionsPlugin(),
		ConsolePlugin(),
	}
}

// MinimalBundle returns only the plugins an evaluator needs to run at
// all — the object/function bootstrap plus Error (the evaluator throws TypeError/
// ReferenceError/... internally and needs somewhere to construct them).
func MinimalBundle() []plugin.Plugin {
	return []plugin.Plugin{
		CorePlugin(),
		ErrorPlugin(),
	}
}
