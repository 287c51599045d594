package hwio

// 8-bit operations
func GetBit8(v uint8, n uint) bool {
	return GetBiti8(v, n) != 0
}

func GetBiti8(v uint8, n uint) uint8 {
	return v >> (n) & 0x01
}

func SetBit8(v *uint8, n uint, set bool) {
	if set {
		*v |= (1 << n)
	} else {
		*v &= ^(1 << n)
	}
}

// Bits8 extracts the width-bit field of v starting at bit n.
func Bits8(v uint8, n, width uint) uint8 {
	return v >> n & (1<<width - 1)
}

// SignExtend interprets the low width bits of v as a two's complement value.
func SignExtend(v uint8, width uint) int8 {
	shift := 8 - width
	return int8(v<<shift) >> shift
}

// 4-bit operations, on packed nibble arrays. Nibble i lives in byte i/2, even
// indices in the low half.

func Peek4(buf []byte, i int) uint8 {
	return buf[i>>1] >> ((i & 1) << 2) & 0x0F
}

func Poke4(buf []byte, i int, v uint8) {
	shift := (i & 1) << 2
	buf[i>>1] &^= 0x0F << shift
	buf[i>>1] |= (v & 0x0F) << shift
}
