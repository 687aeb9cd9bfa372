package builtins

import (
	"github.com/esvm-go/esvm/internal/plugin"
	"github.com/esvm-go/esvm/internal/runtime"
)

// mapEntry preserves insertion order (Map/Set iterate in insertion
// order), so the backing store is a slice of entries plus an
// index for O(1) lookup rather than a bare Go map.
type mapEntry struct {
	key   runtime.Value
	value runtime.Value
	live  bool
}

// mapData is the native slot stashed in Obj.HostData for both Map and Set
// (a Set is a Map whose value always equals its key — mirroring the spec's
// own description of Set in terms of the Map internal-slot shape).
type mapData struct {
	entries []*mapEntry
	index   map[mapKey]int
}

// mapKey canonicalizes a Value for Go-map lookup under SameValueZero
// (spec's Map/Set key-equality algorithm): primitives compare by Go value
// equality once normalized (NaN/±0 folded), objects by pointer identity.
type mapKey struct {
	kind string
	num  float64
	str  string
	obj  *runtime.Obj
	sym  *runtime.Symbol
}

func canonicalKey(v runtime.Value) mapKey {
	switch vv := v.(type) {
	case runtime.Number:
		f := float64(vv)
		if f == 0 {
			f = 0 // fold -0 to +0 per SameValueZero
		}
		if f != f { // NaN
			return mapKey{kind: "nan"}
		}
		return mapKey{kind: "number", num: f}
	case runtime.String:
		return mapKey{kind: "string", str: vv.String()}
	case runtime.Boolean:
		return mapKey{kind: "bool", str: vv.String()}
	case runtime.Undefined:
		return mapKey{kind: "undefined"}
	case runtime.Null:
		return mapKey{kind: "null"}
	case *runtime.Obj:
		return mapKey{kind: "object", obj: vv}
	case *runtime.Symbol:
		return mapKey{kind: "symbol", sym: vv}
	}
	return mapKey{kind: "unknown"}
}

func newMapData() *mapData { return &mapData{index: make(map[mapKey]int)} }

func (m *mapData) get(key runtime.Value) (runtime.Value, bool) {
	i, found := m.index[canonicalKey(key)]
	if !found || !m.entries[i].live {
		return nil, false
	}
	return m.entries[i].value, true
}

func (m *mapData) set(key, value runtime.Value) {
	ck := canonicalKey(key)
	if i, found := m.index[ck]; found && m.entries[i].live {
		m.entries[i].value = value
		return
	}
	m.index[ck] = len(m.entries)
	m.entries = append(m.entries, &mapEntry{key: key, value: value, live: true})
}

func (m *mapData) delete(key runtime.Value) bool {
	ck := canonicalKey(key)
	i, found := m.index[ck]
	if !found || !m.entries[i].live {
		return false
	}
	m.entries[i].live = false
	delete(m.index, ck)
	return true
}

func (m *mapData) size() int {
	n := 0
	for _, e := range m.entries {
		if e.live {
			n++
		}
	}
	return n
}

// MapSetPlugin builds the Map and Set constructors/prototypes over the
// shared insertion-ordered mapData backing store.
func MapSetPlugin() plugin.Plugin {
	return plugin.Plugin{
		ID:               "mapset",
		Depends:          []string{"core"},
		CreateIntrinsics: createMapSetIntrinsics,
	}
}

func createMapSetIntrinsics(realm *runtime.Realm, globals *plugin.Globals) error {
	mapProto := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	realm.Intrinsics["%Map.prototype%"] = mapProto
	mapCtor := newConstructor(realm, "Map", 0, mapProto,
		func(this runtime.Value, args []runtime.Value) runtime.Completion {
			return throwType(realm, "Constructor Map requires 'new'")
		},
		func(args []runtime.Value, newTarget *runtime.Obj) runtime.Completion {
			o := runtime.NewOrdinaryObject(mapProto)
			o.HostData = newMapData()
			if iterable := argAt(args, 0); iterable != nil {
				if _, isUndef := iterable.(runtime.Undefined); !isUndef {
					if _, isNull := iterable.(runtime.Null); !isNull {
						pairs, c := iterableOrArrayLikeToSlice(realm, iterable)
						if c.IsAbrupt() {
							return c
						}
						for _, p := range pairs {
							pair, isObj := p.(*runtime.Obj)
							if !isObj {
								return throwType(realm, "Iterator value is not an entry object")
							}
							o.HostData.(*mapData).set(arrAt(pair, 0), arrAt(pair, 1))
						}
					}
				}
			}
			return ok(o)
		},
	)
	realm.Intrinsics["%Map%"] = mapCtor
	globals.Stage("Map", runtime.NewDataDescriptor(mapCtor, true, false, true))
	installMapPrototypeMethods(realm, mapProto, true)

	setProto := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	realm.Intrinsics["%Set.prototype%"] = setProto
	setCtor := newConstructor(realm, "Set", 0, setProto,
		func(this runtime.Value, args []runtime.Value) runtime.Completion {
			return throwType(realm, "Constructor Set requires 'new'")
		},
		func(args []runtime.Value, newTarget *runtime.Obj) runtime.Completion {
			o := runtime.NewOrdinaryObject(setProto)
			o.HostData = newMapData()
			if iterable := argAt(args, 0); iterable != nil {
				if _, isUndef := iterable.(runtime.Undefined); !isUndef {
					if _, isNull := iterable.(runtime.Null); !isNull {
						items, c := iterableOrArrayLikeToSlice(realm, iterable)
						if c.IsAbrupt() {
							return c
						}
						for _, v := range items {
							o.HostData.(*mapData).set(v, v)
						}
					}
				}
			}
			return ok(o)
		},
	)
	realm.Intrinsics["%Set%"] = setCtor
	globals.Stage("Set", runtime.NewDataDescriptor(setCtor, true, false, true))
	installSetPrototypeMethods(realm, setProto)
	return nil
}

func thisMapData(realm *runtime.Realm, this runtime.Value, who string) (*mapData, runtime.Completion) {
	o, isObj := this.(*runtime.Obj)
	if !isObj {
		return nil, throwType(realm, who+" called on non-object")
	}
	d, isMap := o.HostData.(*mapData)
	if !isMap {
		return nil, throwType(realm, who+" called on incompatible receiver")
	}
	return d, runtime.Completion{}
}

func installMapPrototypeMethods(realm *runtime.Realm, proto *runtime.Obj, isMap bool) {
	method(realm, proto, "get", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		d, c := thisMapData(realm, this, "Map.prototype.get")
		if d == nil {
			return c
		}
		v, found := d.get(argAt(args, 0))
		if !found {
			return undef()
		}
		return ok(v)
	})
	method(realm, proto, "set", 2, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		d, c := thisMapData(realm, this, "Map.prototype.set")
		if d == nil {
			return c
		}
		d.set(argAt(args, 0), argAt(args, 1))
		return ok(this)
	})
	method(realm, proto, "has", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		d, c := thisMapData(realm, this, "Map.prototype.has")
		if d == nil {
			return c
		}
		_, found := d.get(argAt(args, 0))
		return ok(runtime.Boolean(found))
	})
	method(realm, proto, "delete", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		d, c := thisMapData(realm, this, "Map.prototype.delete")
		if d == nil {
			return c
		}
		return ok(runtime.Boolean(d.delete(argAt(args, 0))))
	})
	method(realm, proto, "clear", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		d, c := thisMapData(realm, this, "Map.prototype.clear")
		if d == nil {
			return c
		}
		*d = *newMapData()
		return undef()
	})
	method(realm, proto, "forEach", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		d, c := thisMapData(realm, this, "Map.prototype.forEach")
		if d == nil {
			return c
		}
		cb, isFn := argAt(args, 0).(*runtime.Obj)
		if !isFn || !cb.IsCallable() {
			return throwType(realm, "callback is not a function")
		}
		for _, e := range append([]*mapEntry{}, d.entries...) {
			if !e.live {
				continue
			}
			if cc := cb.Fn.Call(argAt(args, 1), []runtime.Value{e.value, e.key, this}); cc.IsAbrupt() {
				return cc
			}
		}
		return undef()
	})
	proto.DefineOwnProperty(runtime.StringKey("size"), runtime.NewAccessorDescriptor(
		nativeFn(realm, "get size", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
			d, c := thisMapData(realm, this, "Map.prototype.size")
			if d == nil {
				return c
			}
			return ok(runtime.Number(d.size()))
		}), nil, false, true))
}

func installSetPrototypeMethods(realm *runtime.Realm, proto *runtime.Obj) {
	method(realm, proto, "add", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		d, c := thisMapData(realm, this, "Set.prototype.add")
		if d == nil {
			return c
		}
		v := argAt(args, 0)
		d.set(v, v)
		return ok(this)
	})
	method(realm, proto, "has", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		d, c := thisMapData(realm, this, "Set.prototype.has")
		if d == nil {
			return c
		}
		_, found := d.get(argAt(args, 0))
		return ok(runtime.Boolean(found))
	})
	method(realm, proto, "delete", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		d, c := thisMapData(realm, this, "Set.prototype.delete")
		if d == nil {
			return c
		}
		return ok(runtime.Boolean(d.delete(argAt(args, 0))))
	})
	method(realm, proto, "clear", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		d, c := thisMapData(realm, this, "Set.prototype.clear")
		if d == nil {
			return c
		}
		*d = *newMapData()
		return undef()
	})
	method(realm, proto, "forEach", 1, func(this runtime.Value, args []runtime.Value) runtime.Completion {
		d, c := thisMapData(realm, this, "Set.prototype.forEach")
		if d == nil {
			return c
		}
		cb, isFn := argAt(args, 0).(*runtime.Obj)
		if !isFn || !cb.IsCallable() {
			return throwType(realm, "callback is not a function")
		}
		for _, e := range append([]*mapEntry{}, d.entries...) {
			if !e.live {
				continue
			}
			if cc := cb.Fn.Call(argAt(args, 1), []runtime.Value{e.value, e.key, this}); cc.IsAbrupt() {
				return cc
			}
		}
		return undef()
	})
	proto.DefineOwnProperty(runtime.StringKey("size"), runtime.NewAccessorDescriptor(
		nativeFn(realm, "get size", 0, func(this runtime.Value, args []runtime.Value) runtime.Completion {
			d, c := thisMapData(realm, this, "Set.prototype.size")
			if d == nil {
				return c
			}
			return ok(runtime.Number(d.size()))
		}), nil, false, true))
}
