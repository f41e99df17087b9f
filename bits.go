package hwp

// Unsigned is the set of integer widths bit-packed fields are stored in.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Flag reports whether bit pos (0 = least significant) of bits is set.
func Flag[T Unsigned](bits T, pos uint) bool {
	return bits&(T(1)<<pos) != 0
}

// ValueRange returns bits[start..end], both ends inclusive, shifted down to
// bit 0. ValueRange(0b1110, 1, 3) == 0b111.
func ValueRange[T Unsigned](bits T, start, end uint) T {
	width := end - start + 1
	mask := T(1)<<width - 1
	return (bits >> start) & mask
}
