package runtime

import "unicode/utf16"

// utf16Encode/utf16Decode isolate the encoding package behind the two
// call sites that need it, since String's internal representation (a
// sequence of UTF-16 code units) is an implementation detail other
// packages should not depend on directly.

func utf16Encode(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

func utf16Decode(units []uint16) string {
	return string(utf16.Decode(units))
}
