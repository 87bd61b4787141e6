// Package convert implements the share conversions built on the
// parallel-prefix adder: A2B, B2A (prefix-adder and OT variants), and
// MSB extraction, plus the bit-lane pack/split helpers the adder's cells
// consume. The prefix network mixes 4-fan-in and 2-fan-in generate/propagate
// cells over MSS inputs so the AND gates inside a cell cost no online
// rounds; the only communication per non-terminal level is the reshare of
// the (p', g') pair back to MSS (packed into one word when a double-width
// word exists). A terminal radix-4 level reshares g' alone to RSS; a
// terminal radix-2 level needs no reshare.
package convert

import (
	"fmt"

	"github.com/hhcho/sharecore/comm"
	"github.com/hhcho/sharecore/errs"
	"github.com/hhcho/sharecore/gate"
	"github.com/hhcho/sharecore/prss"
	"github.com/hhcho/sharecore/reshare"
	"github.com/hhcho/sharecore/ring"
	"github.com/hhcho/sharecore/sched"
	"github.com/hhcho/sharecore/share"
)

// level is one stage of the prefix network: cells at this stage combine
// radix adjacent (p,g) windows of width stride into one window of width
// radix*stride.
type level struct {
	stride int
	radix  int
}

// planLevels lays out the mixed-radix network for an nbits-wide adder
// (nbits a power of two): radix-4 stages at strides 1, 4, 16, ... as long
// as a full quad fits, then a single terminal radix-2 stage when a factor
// of two remains. k=64 gets the three pure radix-4 stages; k=32 and k=128
// end on the 2-fan-in terminal cell.
func planLevels(nbits int) []level {
	var ls []level
	s := 1
	for s*4 <= nbits {
		ls = append(ls, level{stride: s, radix: 4})
		s *= 4
	}
	if s*2 <= nbits {
		ls = append(ls, level{stride: s, radix: 2})
	}
	return ls
}

func shiftSlice(v []ring.Word, s, nbits int) []ring.Word {
	out := make([]ring.Word, len(v))
	sched.For(len(v), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i] = v[i].Shl(s).Mask(nbits)
		}
	})
	return out
}

// shlMSS shifts every lane of an MSS tensor left by s bits. Zeros enter at
// the bottom: the shifted D, d0, d1 still satisfy the MSS identity for the
// shifted value.
func shlMSS(t *share.BTensor, s int) *share.BTensor {
	out, _ := share.NewMSS(t.Shape, t.NBits,
		shiftSlice(t.D, s, t.NBits), shiftSlice(t.X0, s, t.NBits), shiftSlice(t.X1, s, t.NBits))
	return out
}

func shlRSS(t *share.BTensor, s int) *share.BTensor {
	out, _ := share.NewRSS(t.Shape, t.NBits,
		shiftSlice(t.X0, s, t.NBits), shiftSlice(t.X1, s, t.NBits))
	return out
}

func shrRSS(t *share.BTensor, s, nbits int) *share.BTensor {
	x0 := make([]ring.Word, len(t.X0))
	x1 := make([]ring.Word, len(t.X1))
	for i := range x0 {
		x0[i] = t.X0[i].Shr(s).Mask(nbits)
		x1[i] = t.X1[i].Shr(s).Mask(nbits)
	}
	out, _ := share.NewRSS(t.Shape, nbits, x0, x1)
	return out
}

// toASS downgrades RSS or MSS to the single-slot additive form; both
// directions are local.
func toASS(t *share.BTensor) (*share.BTensor, error) {
	switch t.Kind {
	case share.ASS:
		return t, nil
	case share.RSS:
		return reshare.RSSToASS(t)
	case share.MSS:
		rss, err := reshare.MSSToRSS(t)
		if err != nil {
			return nil, err
		}
		return reshare.RSSToASS(rss)
	default:
		errs.Invariant("toASS: unknown share kind %v", t.Kind)
		return nil, nil
	}
}

// xorASS folds any number of ASS tensors together slot-wise.
func xorASS(ts ...*share.BTensor) (*share.BTensor, error) {
	acc := ts[0]
	var err error
	for _, t := range ts[1:] {
		acc, err = gate.XOR(acc, t)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// prefixCarry runs the mixed-radix prefix network over MSS propagate and
// generate signals of width nbits and returns the final generate word as
// boolean RSS: bit i of the result is the carry OUT of bit position i.
//
// Radix-4 stage at stride s, with c = s for brevity:
//
//	A    = P·P«c                      (pair propagate, MSS-AND)
//	g'_i = G ^ P·G«c ^ A·G«2c ^ A·(P«2c·G«3c)
//	p'_i = A·A«2c
//
// The three products of MSS inputs cost nothing online; the remaining
// products are RSS-ANDs landing in ASS form. The stage's two outputs are
// packed into one double-width word and reshared back to MSS together, so
// each non-terminal stage costs exactly one logical round.
func prefixCarry(p, g *share.BTensor, pr *prss.PRSS, c comm.Communicator, offline bool, tag string) (*share.BTensor, error) {
	if p.Kind != share.MSS || g.Kind != share.MSS {
		return nil, errs.Precondition("prefixCarry: p and g must be MSS, got %v and %v", p.Kind, g.Kind)
	}
	if p.NBits != g.NBits {
		return nil, errs.Precondition("prefixCarry: width mismatch %d vs %d", p.NBits, g.NBits)
	}
	nbits := p.NBits
	if !isPow2(nbits) {
		return nil, errs.Precondition("prefixCarry: width %d is not a power of two", nbits)
	}
	if nbits == 1 {
		return reshare.MSSToRSS(g)
	}

	P, G := p, g
	levels := planLevels(nbits)
	for li, lv := range levels {
		s := lv.stride
		ltag := fmt.Sprintf("%s.l%d", tag, li)
		last := li == len(levels)-1

		if lv.radix == 2 {
			// Terminal 2-fan-in cell: g' = g ^ p·g_lower, already in RSS
			// form, no further reshare needed. planLevels only ever emits
			// radix 2 as the final stage.
			t1, err := gate.AndMSSToRSS(P, shlMSS(G, s), pr, c, offline, ltag+".pg")
			if err != nil {
				return nil, err
			}
			gRSS, err := reshare.MSSToRSS(G)
			if err != nil {
				return nil, err
			}
			return gate.XOR(gRSS, t1)
		}

		// Radix-4 cell.
		a, err := gate.AndMSSToRSS(P, shlMSS(P, s), pr, c, offline, ltag+".a")
		if err != nil {
			return nil, err
		}
		t1, err := gate.AndMSSToRSS(P, shlMSS(G, s), pr, c, offline, ltag+".t1")
		if err != nil {
			return nil, err
		}
		b, err := gate.AndMSSToRSS(shlMSS(P, 2*s), shlMSS(G, 3*s), pr, c, offline, ltag+".b")
		if err != nil {
			return nil, err
		}
		g2RSS, err := reshare.MSSToRSS(shlMSS(G, 2*s))
		if err != nil {
			return nil, err
		}
		t2, err := gate.AndRSSToASS(a, g2RSS, pr)
		if err != nil {
			return nil, err
		}
		t3, err := gate.AndRSSToASS(a, b, pr)
		if err != nil {
			return nil, err
		}
		gASS, err := toASS(G)
		if err != nil {
			return nil, err
		}
		t1ASS, err := toASS(t1)
		if err != nil {
			return nil, err
		}
		gNew, err := xorASS(gASS, t1ASS, t2, t3)
		if err != nil {
			return nil, err
		}

		if last {
			return reshare.ASSToRSS(gNew, pr, c, ltag+".out")
		}

		pNew, err := gate.AndRSSToASS(a, shlRSS(a, 2*s), pr)
		if err != nil {
			return nil, err
		}

		if 2*nbits <= 128 {
			packed, err := packPairASS(pNew, gNew)
			if err != nil {
				return nil, err
			}
			mss, err := reshare.ASSToMSS(packed, pr, c, ltag+".pack")
			if err != nil {
				return nil, err
			}
			P, G, err = unpackPairMSS(mss, nbits)
			if err != nil {
				return nil, err
			}
		} else {
			// 128-bit lanes have no double-width word to pack into; run
			// the two reshares side by side and count one logical round.
			P, err = reshare.ASSToMSS(pNew, pr, c, ltag+".p")
			if err != nil {
				return nil, err
			}
			G, err = reshare.ASSToMSS(gNew, pr, c, ltag+".g")
			if err != nil {
				return nil, err
			}
			c.AddCommStatsManually(-1, 0)
		}
	}
	errs.Invariant("prefixCarry: network for width %d produced no terminal stage", nbits)
	return nil, nil
}

// sumFromCarry finishes the addition: sum = p ^ (carry << 1).
func sumFromCarry(p *share.BTensor, carry *share.BTensor) (*share.BTensor, error) {
	pRSS, err := reshare.MSSToRSS(p)
	if err != nil {
		return nil, err
	}
	return gate.XOR(pRSS, shlRSS(carry, 1))
}
