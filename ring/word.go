package ring

import "math/bits"

// Word is a 128-bit container used for every scalar in this core, arithmetic
// or boolean, regardless of its declared Field. Values are always kept
// reduced to their field's width by the caller via Mask; Word itself never
// auto-masks, mirroring the teacher's RElem types which likewise trust the
// caller to pass correctly-typed operands.
type Word struct {
	Hi, Lo uint64
}

// Zero is the additive/XOR identity.
var Zero = Word{}

// FromUint64 builds a Word from a plain 64-bit value.
func FromUint64(v uint64) Word { return Word{Lo: v} }

// Uint64 returns the low 64 bits, valid whenever the value's field is <=64.
func (w Word) Uint64() uint64 { return w.Lo }

// Mask truncates w to the low k bits (k in [0,128]).
func (w Word) Mask(k int) Word {
	switch {
	case k <= 0:
		return Word{}
	case k >= 128:
		return w
	case k <= 64:
		return Word{Lo: w.Lo & (uint64(1)<<uint(k) - 1)}
	default:
		return Word{Hi: w.Hi & (uint64(1)<<uint(k-64) - 1), Lo: w.Lo}
	}
}

// MaskField truncates w to f's width.
func (w Word) MaskField(f Field) Word { return w.Mask(f.Bits()) }

// Add computes (w+v) mod 2^128, from which callers Mask down to their field.
func (w Word) Add(v Word) Word {
	lo, carry := bits.Add64(w.Lo, v.Lo, 0)
	hi, _ := bits.Add64(w.Hi, v.Hi, carry)
	return Word{Hi: hi, Lo: lo}
}

// Sub computes (w-v) mod 2^128.
func (w Word) Sub(v Word) Word {
	lo, borrow := bits.Sub64(w.Lo, v.Lo, 0)
	hi, _ := bits.Sub64(w.Hi, v.Hi, borrow)
	return Word{Hi: hi, Lo: lo}
}

// Neg computes (-w) mod 2^128.
func (w Word) Neg() Word { return Word{}.Sub(w) }

// Xor is the boolean-sharing XOR operator.
func (w Word) Xor(v Word) Word { return Word{Hi: w.Hi ^ v.Hi, Lo: w.Lo ^ v.Lo} }

// And is the boolean-sharing AND operator (bitwise, elementwise over the
// packed bit-vector -- not to be confused with the MPC AND *gate*, which
// lives in package gate and additionally consumes randomness/communication).
func (w Word) And(v Word) Word { return Word{Hi: w.Hi & v.Hi, Lo: w.Lo & v.Lo} }

// Or is provided for completeness (bit-split helpers use it).
func (w Word) Or(v Word) Word { return Word{Hi: w.Hi | v.Hi, Lo: w.Lo | v.Lo} }

// Not is bitwise complement, unmasked -- callers mask to their field.
func (w Word) Not() Word { return Word{Hi: ^w.Hi, Lo: ^w.Lo} }

// Shl shifts left by n bits (0<=n<=128), discarding overflow past bit 127.
func (w Word) Shl(n int) Word {
	switch {
	case n <= 0:
		return w
	case n >= 128:
		return Word{}
	case n < 64:
		return Word{Hi: (w.Hi << uint(n)) | (w.Lo >> uint(64-n)), Lo: w.Lo << uint(n)}
	default:
		return Word{Hi: w.Lo << uint(n-64), Lo: 0}
	}
}

// Shr is an unsigned (logical) right shift by n bits.
func (w Word) Shr(n int) Word {
	switch {
	case n <= 0:
		return w
	case n >= 128:
		return Word{}
	case n < 64:
		return Word{Hi: w.Hi >> uint(n), Lo: (w.Lo >> uint(n)) | (w.Hi << uint(64-n))}
	default:
		return Word{Hi: 0, Lo: w.Hi >> uint(n-64)}
	}
}

// Bit extracts bit i (0 = least significant) as 0 or 1.
func (w Word) Bit(i int) uint64 {
	return w.Shr(i).Lo & 1
}

// SetBit returns w with bit i set to 0 or 1.
func (w Word) SetBit(i int, v uint64) Word {
	bitWord := FromUint64(1).Shl(i)
	if v&1 == 1 {
		return w.Or(bitWord)
	}
	return w.And(bitWord.Not())
}

// IsZero reports whether w, masked to k bits, is all-zero.
func (w Word) IsZero(k int) bool {
	m := w.Mask(k)
	return m.Hi == 0 && m.Lo == 0
}

// Equal reports bit-exact equality (no masking).
func (w Word) Equal(v Word) bool { return w.Hi == v.Hi && w.Lo == v.Lo }
