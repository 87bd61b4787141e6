package convert

import (
	"github.com/hhcho/sharecore/comm"
	"github.com/hhcho/sharecore/errs"
	"github.com/hhcho/sharecore/party"
	"github.com/hhcho/sharecore/prss"
	"github.com/hhcho/sharecore/reshare"
	"github.com/hhcho/sharecore/ring"
	"github.com/hhcho/sharecore/sched"
	"github.com/hhcho/sharecore/share"
)

// otWidthMax is the cutover between the two B2A variants: at most this many
// input bits the quadratic-size OT beats the prefix adder's log-depth
// rounds; above it the adder wins.
const otWidthMax = 8

// B2A converts a boolean RSS tensor into an arithmetic RSS tensor over f
// whose value is the boolean value zero-extended. Narrow inputs dispatch to
// the three-party OT, wide ones to the prefix adder. A zero-width input
// costs no communication at all.
func B2A(b *share.BTensor, f ring.Field, pr *prss.PRSS, c comm.Communicator, offline bool, tag string) (*share.ATensor, error) {
	if b.Kind != share.RSS {
		return nil, errs.Precondition("B2A: input must be boolean RSS, got %v", b.Kind)
	}
	if b.NBits > f.Bits() {
		return nil, errs.Precondition("B2A: input width %d exceeds field width %d", b.NBits, f.Bits())
	}
	if b.NBits == 0 {
		nEl := b.Elements()
		return share.NewATensor(b.Shape, f, make([]ring.Word, nEl), make([]ring.Word, nEl))
	}
	if b.NBits <= otWidthMax {
		return B2AByOT(b, f, pr, c, tag)
	}
	return B2AByPPA(b, f, pr, c, offline, tag)
}

// B2AByPPA converts via a masked boolean addition: a random r, living only
// on the generator P1 and P2 share, is added to x inside the prefix adder;
// the sum c = x + r opens toward P0 alone, who contributes it as the
// plaintext component of the output while the mask holders contribute -r.
// A final rotation with fresh zero-sum randomness completes the replicated
// sharing without teaching anybody a component they should not hold.
func B2AByPPA(b *share.BTensor, f ring.Field, pr *prss.PRSS, c comm.Communicator, offline bool, tag string) (*share.ATensor, error) {
	bits := f.Bits()
	nEl := b.Elements()
	self := c.Rank()

	// Zero-extend the input to the full field width; the component words
	// are already masked to the input width, so widening is free.
	xExt, err := share.NewRSS(b.Shape, bits,
		append([]ring.Word(nil), b.X0...), append([]ring.Word(nil), b.X1...))
	if err != nil {
		return nil, err
	}

	// The mask r occupies the single sharing component P0 never holds,
	// drawn off the P1/P2 generator: its bit pattern doubles as both the
	// boolean summand and, negated, the arithmetic contribution.
	var ra []ring.Word
	r0 := make([]ring.Word, nEl)
	r1 := make([]ring.Word, nEl)
	switch self {
	case party.P0:
		pr.FillPair(nEl, prss.None)
	case party.P1:
		first, _ := pr.FillPair(nEl, prss.First)
		ra = first
		for i := range r1 {
			r1[i] = ra[i].Mask(bits)
		}
	case party.P2:
		_, second := pr.FillPair(nEl, prss.Second)
		ra = second
		for i := range r0 {
			r0[i] = ra[i].Mask(bits)
		}
	}
	rRSS, err := share.NewRSS(b.Shape, bits, r0, r1)
	if err != nil {
		return nil, err
	}

	// Lift both summands to MSS; a single packed reshare covers them when
	// a double-width word exists.
	var mX, mR *share.BTensor
	if 2*bits <= 128 {
		packed, err := packPairRSS(xExt, rRSS)
		if err != nil {
			return nil, err
		}
		pm, err := reshare.RSSToMSS(packed, pr, c, tag+".lift")
		if err != nil {
			return nil, err
		}
		mX, mR, err = unpackPairMSS(pm, bits)
		if err != nil {
			return nil, err
		}
	} else {
		mX, err = reshare.RSSToMSS(xExt, pr, c, tag+".lift.x")
		if err != nil {
			return nil, err
		}
		mR, err = reshare.RSSToMSS(rRSS, pr, c, tag+".lift.r")
		if err != nil {
			return nil, err
		}
		c.AddCommStatsManually(-1, 0)
	}

	p, g, err := pgSignals(mX, mR, pr, c, offline, tag+".pg")
	if err != nil {
		return nil, err
	}
	carry, err := prefixCarry(p, g, pr, c, offline, tag+".ppa")
	if err != nil {
		return nil, err
	}
	sum, err := sumFromCarry(p, carry)
	if err != nil {
		return nil, err
	}

	// Open c = x + r toward P0: it already holds two components, P2 ships
	// the third.
	y := make([]ring.Word, nEl)
	switch self {
	case party.P2:
		if err := c.SendAsync(party.P0, sum.X0, tag+".open"); err != nil {
			return nil, errs.Transport(err, "B2AByPPA: open send failed")
		}
		c.AddCommStatsManually(1, 0)
		sched.For(nEl, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				y[i] = ra[i].Mask(bits).Neg().Mask(bits)
			}
		})
	case party.P0:
		third, err := c.Recv(party.P2, nEl, tag+".open")
		if err != nil {
			return nil, errs.Transport(err, "B2AByPPA: open recv failed")
		}
		c.AddCommStatsManually(1, 0)
		sched.For(nEl, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				y[i] = sum.X0[i].Xor(sum.X1[i]).Xor(third[i]).Mask(bits)
			}
		})
	case party.P1:
		c.AddCommStatsManually(1, 0)
	}

	return assToRSSArith(y, b.Shape, f, pr, c, tag+".finalize")
}

// B2AByOT converts a narrow boolean tensor through a dealer-assisted
// 1-of-2 OT per bit lane: P2 offers both weighted candidates of each bit
// under one-time pads it shares with the dealer P0, P0 forwards the pad
// matching the choice bit it can see in its own replicated slots, and P1
// unmasks exactly the candidate encoding the true bit. Communication is
// quadratic in the width, rounds constant.
func B2AByOT(b *share.BTensor, f ring.Field, pr *prss.PRSS, c comm.Communicator, tag string) (*share.ATensor, error) {
	bits := f.Bits()
	nb := b.NBits
	nEl := b.Elements()
	self := c.Rank()

	// Pads: two per bit lane, shared between the sender and the dealer.
	var padCtrl prss.Ctrl
	switch self {
	case party.P2:
		padCtrl = prss.First
	case party.P0:
		padCtrl = prss.Second
	default:
		padCtrl = prss.None
	}
	padFirst, padSecond := pr.FillPair(2*nb*nEl, padCtrl)
	pads := padFirst
	if self == party.P0 {
		pads = padSecond
	}

	y := make([]ring.Word, nEl)
	switch self {
	case party.P2:
		// Sender: holds components b2 (X0) and b0 (X1); its candidate
		// messages carry (i ^ b2_j ^ b0_j) at weight 2^j, blinded by two
		// private masks whose sum becomes the sender's own output share.
		c1 := pr.FillPrivate(nb * nEl)
		c3 := pr.FillPrivate(nb * nEl)
		msgs := make([]ring.Word, 2*nb*nEl)
		sched.For(nEl, func(lo, hi int) {
			for e := lo; e < hi; e++ {
				var acc ring.Word
				for j := 0; j < nb; j++ {
					sBit := b.X0[e].Bit(j) ^ b.X1[e].Bit(j)
					base := e*nb + j
					for i := uint64(0); i < 2; i++ {
						m := ring.FromUint64((i ^ sBit) & 1).Shl(j).
							Sub(c1[base]).Sub(c3[base]).Mask(bits)
						msgs[2*base+int(i)] = m.Add(pads[2*base+int(i)]).Mask(bits)
					}
					acc = acc.Add(c1[base]).Add(c3[base])
				}
				y[e] = acc.Mask(bits)
			}
		})
		if err := c.SendAsync(party.P1, msgs, tag+".msgs"); err != nil {
			return nil, errs.Transport(err, "B2AByOT: message send failed")
		}
		c.AddCommStatsManually(1, 0)

	case party.P0:
		// Dealer: sees the choice bits b1 in its second slot and releases
		// only the pad the receiver is entitled to open.
		sel := make([]ring.Word, nb*nEl)
		sched.For(nEl, func(lo, hi int) {
			for e := lo; e < hi; e++ {
				for j := 0; j < nb; j++ {
					base := e*nb + j
					sel[base] = pads[2*base+int(b.X1[e].Bit(j))]
				}
			}
		})
		if err := c.SendAsync(party.P1, sel, tag+".pads"); err != nil {
			return nil, errs.Transport(err, "B2AByOT: pad send failed")
		}
		c.AddCommStatsManually(1, 0)

	case party.P1:
		msgs, err := c.Recv(party.P2, 2*nb*nEl, tag+".msgs")
		if err != nil {
			return nil, errs.Transport(err, "B2AByOT: message recv failed")
		}
		sel, err := c.Recv(party.P0, nb*nEl, tag+".pads")
		if err != nil {
			return nil, errs.Transport(err, "B2AByOT: pad recv failed")
		}
		c.AddCommStatsManually(1, 0)
		sched.For(nEl, func(lo, hi int) {
			for e := lo; e < hi; e++ {
				var acc ring.Word
				for j := 0; j < nb; j++ {
					base := e*nb + j
					choice := b.X0[e].Bit(j)
					acc = acc.Add(msgs[2*base+int(choice)].Sub(sel[base]))
				}
				y[e] = acc.Mask(bits)
			}
		})
	}

	return assToRSSArith(y, b.Shape, f, pr, c, tag+".finalize")
}

// assToRSSArith completes an additive arithmetic sharing into replicated
// form: every party folds a zero-sum pair difference into its component and
// ships the result one step, so the received word is the neighbor's fresh
// component and no party learns anything beyond the slot it gains.
func assToRSSArith(y []ring.Word, shape share.Shape, f ring.Field, pr *prss.PRSS, c comm.Communicator, tag string) (*share.ATensor, error) {
	bits := f.Bits()
	n := len(y)
	first, second := pr.FillPair(n, prss.Both)
	lo := make([]ring.Word, n)
	for i := 0; i < n; i++ {
		lo[i] = y[i].Add(first[i]).Sub(second[i]).Mask(bits)
	}
	hi, err := c.RotateRight(lo, tag)
	if err != nil {
		return nil, errs.Transport(err, "assToRSSArith: rotate failed")
	}
	return share.NewATensor(shape, f, lo, hi)
}
