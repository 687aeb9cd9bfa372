package runtime

// propertyMap stores an object's own properties keyed by PropertyKey,
// preserving the canonical enumeration order from ECMA-262: integer-index
// keys ascending, then string keys in insertion order, then symbol keys in
// insertion order. A plain map would lose order; we keep the map for O(1)
// lookup plus parallel slices recording insertion order per key-class.
type propertyMap struct {
	m        map[PropertyKey]*PropertyDescriptor
	strOrder []string // string keys, insertion order, integer indices excluded
	symOrder []*Symbol
	intKeys  []uint32 // integer-index keys, kept sorted ascending
}

func newPropertyMap() *propertyMap {
	return &propertyMap{m: make(map[PropertyKey]*PropertyDescriptor)}
}

func (p *propertyMap) get(key PropertyKey) (*PropertyDescriptor, bool) {
	d, ok := p.m[key]
	return d, ok
}

func (p *propertyMap) has(key PropertyKey) bool {
	_, ok := p.m[key]
	return ok
}

func (p *propertyMap) set(key PropertyKey, desc *PropertyDescriptor) {
	_, existed := p.m[key]
	p.m[key] = desc
	if existed {
		return
	}
	if key.IsSym {
		p.symOrder = append(p.symOrder, key.Sym)
		return
	}
	if idx, ok := key.CanonicalNumericIndex(); ok {
		insertSortedUint32(&p.intKeys, idx)
		return
	}
	p.strOrder = append(p.strOrder, key.Str)
}

func (p *propertyMap) delete(key PropertyKey) {
	if !p.has(key) {
		return
	}
	delete(p.m, key)
	if key.IsSym {
		for i, s := range p.symOrder {
			if s == key.Sym {
				p.symOrder = append(p.symOrder[:i], p.symOrder[i+1:]...)
				break
			}
		}
		return
	}
	if idx, ok := key.CanonicalNumericIndex(); ok {
		for i, v := range p.intKeys {
			if v == idx {
				p.intKeys = append(p.intKeys[:i], p.intKeys[i+1:]...)
				break
			}
		}
		return
	}
	for i, s := range p.strOrder {
		if s == key.Str {
			p.strOrder = append(p.strOrder[:i], p.strOrder[i+1:]...)
			break
		}
	}
}

// keys returns all own keys in the canonical order required by ECMA-262's
// OwnPropertyKeys.
func (p *propertyMap) keys() []PropertyKey {
	out := make([]PropertyKey, 0, len(p.m))
	for _, idx := range p.intKeys {
		out = append(out, StringKey(uint32ToString(idx)))
	}
	for _, s := range p.strOrder {
		out = append(out, StringKey(s))
	}
	for _, s := range p.symOrder {
		out = append(out, SymbolKey(s))
	}
	return out
}

func insertSortedUint32(s *[]uint32, v uint32) {
	i := 0
	for i < len(*s) && (*s)[i] < v {
		i++
	}
	*s = append(*s, 0)
	copy((*s)[i+1:], (*s)[i:])
	(*s)[i] = v
}

func uint32ToString(v uint32) string {
	if v == 0 {
		return "0"
	}
	buf := [10]byte{}
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
