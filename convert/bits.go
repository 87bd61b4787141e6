package convert

import (
	"github.com/hhcho/sharecore/errs"
	"github.com/hhcho/sharecore/ring"
	"github.com/hhcho/sharecore/share"
)

// The pack/split helpers below implement the six-level butterfly the prefix
// adder uses to interleave and de-interleave bit-lanes. Every step is a
// delta-swap: a bit permutation, hence XOR-linear, hence safe to apply to
// each share slot independently.

// deltaMask is the swap mask for step d within an n-bit word: blocks of d
// ones starting at offset d, repeating with period 4d. For n=64 this yields
// the familiar ladder 0x2222..., 0x0C0C..., 0x00F0..., 0x0000FF00..., ...
func deltaMask(d, n int) ring.Word {
	block := ring.FromUint64(1).Shl(d).Sub(ring.FromUint64(1))
	var m ring.Word
	for off := d; off < n; off += 4 * d {
		m = m.Or(block.Shl(off))
	}
	return m.Mask(n)
}

func deltaSwap(x ring.Word, d int, m ring.Word) ring.Word {
	t := x.Xor(x.Shr(d)).And(m)
	return x.Xor(t).Xor(t.Shl(d))
}

// unshuffle gathers the even bits of an n-bit word into its low half and
// the odd bits into its high half. n must be a power of two.
func unshuffle(x ring.Word, n int) ring.Word {
	for d := 1; d <= n/4; d *= 2 {
		x = deltaSwap(x, d, deltaMask(d, n))
	}
	return x
}

// shuffle is the inverse: interleave the low half into even positions and
// the high half into odd positions.
func shuffle(x ring.Word, n int) ring.Word {
	for d := n / 4; d >= 1; d /= 2 {
		x = deltaSwap(x, d, deltaMask(d, n))
	}
	return x
}

func isPow2(n int) bool { return n > 0 && n&(n-1) == 0 }

// Pack2 interleaves two n-bit words into a single 2n-bit word: lo's bits
// land in the even positions, hi's in the odd. 2n must not exceed 128.
func Pack2(hi, lo ring.Word, n int) ring.Word {
	if !isPow2(n) || 2*n > 128 {
		errs.Invariant("Pack2: bad lane width %d", n)
	}
	return shuffle(hi.Mask(n).Shl(n).Or(lo.Mask(n)), 2*n)
}

// Unpack2 is the inverse of Pack2: split a 2n-bit interleaved word back
// into its odd-lane (hi) and even-lane (lo) halves.
func Unpack2(x ring.Word, n int) (hi, lo ring.Word) {
	if !isPow2(n) || 2*n > 128 {
		errs.Invariant("Unpack2: bad lane width %d", n)
	}
	u := unshuffle(x, 2*n)
	return u.Shr(n), u.Mask(n)
}

// BitSplit separates an n-bit word into its odd and even bit-lanes, each
// n/2 wide; concatenating hi over lo restores the unshuffled word.
func BitSplit(x ring.Word, n int) (hi, lo ring.Word) {
	if !isPow2(n) || n < 2 {
		errs.Invariant("BitSplit: bad width %d", n)
	}
	u := unshuffle(x.Mask(n), n)
	return u.Shr(n / 2), u.Mask(n / 2)
}

// BitMerge is the inverse of BitSplit.
func BitMerge(hi, lo ring.Word, n int) ring.Word {
	if !isPow2(n) || n < 2 {
		errs.Invariant("BitMerge: bad width %d", n)
	}
	return shuffle(hi.Mask(n/2).Shl(n/2).Or(lo.Mask(n/2)), n)
}

func packSlice(hi, lo []ring.Word, n int) []ring.Word {
	out := make([]ring.Word, len(hi))
	for i := range out {
		out[i] = Pack2(hi[i], lo[i], n)
	}
	return out
}

func unpackSlice(x []ring.Word, n int) (hi, lo []ring.Word) {
	hi = make([]ring.Word, len(x))
	lo = make([]ring.Word, len(x))
	for i := range x {
		hi[i], lo[i] = Unpack2(x[i], n)
	}
	return hi, lo
}

// packPairASS packs two ASS tensors of width n into a single ASS tensor of
// width 2n so one reshare carries both.
func packPairASS(hi, lo *share.BTensor) (*share.BTensor, error) {
	if hi.Kind != share.ASS || lo.Kind != share.ASS {
		return nil, errs.Precondition("packPairASS: inputs must be ASS, got %v and %v", hi.Kind, lo.Kind)
	}
	if hi.NBits != lo.NBits {
		return nil, errs.Precondition("packPairASS: width mismatch %d vs %d", hi.NBits, lo.NBits)
	}
	return share.NewASS(hi.Shape, 2*hi.NBits, packSlice(hi.X0, lo.X0, hi.NBits))
}

// packPairRSS packs two RSS tensors of width n into one of width 2n.
func packPairRSS(hi, lo *share.BTensor) (*share.BTensor, error) {
	if hi.Kind != share.RSS || lo.Kind != share.RSS {
		return nil, errs.Precondition("packPairRSS: inputs must be RSS, got %v and %v", hi.Kind, lo.Kind)
	}
	if hi.NBits != lo.NBits {
		return nil, errs.Precondition("packPairRSS: width mismatch %d vs %d", hi.NBits, lo.NBits)
	}
	n := hi.NBits
	return share.NewRSS(hi.Shape, 2*n, packSlice(hi.X0, lo.X0, n), packSlice(hi.X1, lo.X1, n))
}

// unpackPairMSS splits a 2n-bit MSS tensor back into its odd-lane and
// even-lane MSS halves. The butterfly is a bit permutation, so applying it
// to D and both mask slots independently preserves the sharing.
func unpackPairMSS(t *share.BTensor, n int) (hi, lo *share.BTensor, err error) {
	if t.Kind != share.MSS {
		return nil, nil, errs.Precondition("unpackPairMSS: input must be MSS, got %v", t.Kind)
	}
	if t.NBits != 2*n {
		return nil, nil, errs.Precondition("unpackPairMSS: width %d does not split into %d-bit lanes", t.NBits, n)
	}
	dHi, dLo := unpackSlice(t.D, n)
	x0Hi, x0Lo := unpackSlice(t.X0, n)
	x1Hi, x1Lo := unpackSlice(t.X1, n)
	hi, err = share.NewMSS(t.Shape, n, dHi, x0Hi, x1Hi)
	if err != nil {
		return nil, nil, err
	}
	lo, err = share.NewMSS(t.Shape, n, dLo, x0Lo, x1Lo)
	if err != nil {
		return nil, nil, err
	}
	return hi, lo, nil
}
