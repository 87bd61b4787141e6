package prss

import "github.com/hhcho/sharecore/ring"

// drawWords reads n 128-bit values from gen. Both generators involved in a
// pairwise draw always advance by the same amount regardless of Ctrl, so
// that the neighbor's matching generator stays in lockstep across calls;
// only the *output* is zeroed when Ctrl excludes it (spec section 9: "when
// offline randomness is disabled... parties substitute zeros").
func drawWords(gen interface{ Read([]byte) (int, error) }, n int) []ring.Word {
	out := make([]ring.Word, n)
	buf := make([]byte, 16)
	for i := range out {
		gen.Read(buf)
		out[i] = ring.Word{
			Hi: beUint64(buf[0:8]),
			Lo: beUint64(buf[8:16]),
		}
	}
	return out
}

func beUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

// FillPair draws a correlated pair (first, second) of length n: first is
// this party's draw from the generator shared with rank.Next(), second
// from the one shared with rank.Prev(). Summed (XORed) across all three
// parties, first_i^second_i always cancels to zero regardless of how the
// pair is used -- the zero-sum PRSS mask construction spec section 4.1
// relies on for local AND. Used the other way (mask with second, rotate
// right, unmask with first), the same draws instead deliver a value to
// the one neighbor entitled to see it, which is how spec section 4.2's
// ASS->RSS reshare spends them.
//
// ctrl must be supplied explicitly by every call site (spec section 9): it
// decides which half of the pair this call actually needs; the excluded
// half is zeroed, not omitted, so both generators always advance together.
func (p *PRSS) FillPair(n int, ctrl Ctrl) (first, second []ring.Word) {
	first = drawWords(p.right, n)
	second = drawWords(p.left, n)

	switch ctrl {
	case Both:
	case First:
		second = zeros(n)
	case Second:
		first = zeros(n)
	case None:
		first, second = zeros(n), zeros(n)
	}
	return first, second
}

func zeros(n int) []ring.Word { return make([]ring.Word, n) }

// FillPublic draws n values identical at every party (a publicly agreed
// random draw, e.g. the eqz pivot selection of spec section 4.3).
func (p *PRSS) FillPublic(n int) []ring.Word {
	return drawWords(p.pub, n)
}

// FillPrivate draws n values independent at every party.
func (p *PRSS) FillPrivate(n int) []ring.Word {
	return drawWords(p.priv, n)
}
