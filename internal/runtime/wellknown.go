package runtime

// Well-known symbols (ECMA-262's symbol values with fixed identity shared
// across every realm in this process, the same way %Object.prototype% is
// conceptually "the same well-known thing" per realm but here, since this
// module doesn't isolate multiple concurrent realms' symbol identity from
// each other, one process-wide set is simplest and matches how a single
// Go process only ever builds one VM's worth of plugins in practice).
var (
	SymIterator      = NewSymbol("Symbol.iterator")
	SymAsyncIterator = NewSymbol("Symbol.asyncIterator")
	SymHasInstance   = NewSymbol("Symbol.hasInstance")
	SymToPrimitive   = NewSymbol("Symbol.toPrimitive")
	SymToStringTag   = NewSymbol("Symbol.toStringTag")
	SymSpecies       = NewSymbol("Symbol.species")
)
