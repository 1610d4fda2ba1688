package decode

// BytesToInt interprets b as a little endian unsigned integer,
// least significant byte first. No sign extension is performed, profiles
// needing signed or fixed point semantics apply their own transform on top.
// Valid for lengths 1 to 4, longer segments are a profile design error.
func BytesToInt(b []byte) int64 {
	var v int64
	for i, c := range b {
		v |= int64(c) << (8 * uint(i))
	}
	return v
}
