package gate

import (
	"github.com/hhcho/sharecore/comm"
	"github.com/hhcho/sharecore/errs"
	"github.com/hhcho/sharecore/prss"
	"github.com/hhcho/sharecore/reshare"
	"github.com/hhcho/sharecore/ring"
	"github.com/hhcho/sharecore/share"
)

// AndRSSToASS computes l&r for two boolean RSS tensors, landing the result
// in ASS form with zero communication (spec section 4.1):
//
//	(l_i & r_i) ^ (l_i & r_{i+1}) ^ (l_{i+1} & r_i) ^ (s0_i ^ s1_i)
//
// where (s0,s1) is a PRSS-pair. The PRSS draw is what makes the ASS result
// a valid share of l&r rather than merely a local partial product: summed
// across all three parties the s0/s1 contributions XOR to zero (see
// package prss), leaving exactly l&r.
func AndRSSToASS(l, r *share.BTensor, p *prss.PRSS) (*share.BTensor, error) {
	if l.Kind != share.RSS || r.Kind != share.RSS {
		return nil, errs.Precondition("AndRSSToASS: both inputs must be RSS, got %v and %v", l.Kind, r.Kind)
	}
	if !shapeEqual(l.Shape, r.Shape) {
		return nil, errs.Precondition("AndRSSToASS: shape mismatch")
	}
	n := l.Elements()
	s0, s1 := p.FillPair(n, prss.Both)

	out := make([]ring.Word, n)
	for i := 0; i < n; i++ {
		out[i] = l.X0[i].And(r.X0[i]).
			Xor(l.X0[i].And(r.X1[i])).
			Xor(l.X1[i].And(r.X0[i])).
			Xor(s0[i].Xor(s1[i]))
	}
	return share.NewASS(l.Shape, minBits(l.NBits, r.NBits), out)
}

// andOfRSSPairAsRSS computes the AND of two boolean RSS tensors and returns
// an RSS-shared result by running AndRSSToASS followed by the ASS->RSS
// reshare (spec section 4.2): add a PRSS-pair mask, rotate once.
func andOfRSSPairAsRSS(l, r *share.BTensor, p *prss.PRSS, c comm.Communicator, tag string) (*share.BTensor, error) {
	ass, err := AndRSSToASS(l, r, p)
	if err != nil {
		return nil, err
	}
	return reshare.ASSToRSS(ass, p, c, tag)
}

// AndMSSToRSS computes x&y for two boolean MSS tensors, returning an RSS
// result (spec section 4.1). Using MSS(v) = (Dv, dv) with v = Dv^dv:
//
//	x&y = Dx·Dy ^ Dx·dy ^ dx·Dy ^ dx·dy
//
// The first three terms are linear in the public D values, so every party
// computes its own RSS slots for them without any communication. The
// dx·dy cross term is itself an RSS AND (d is RSS-shared) and would need a
// reshare; when offline is true this reshare is charged and then refunded
// via AddCommStatsManually, mirroring spec section 5's documented
// mechanism for rounds PRSS prearrangement makes "logically free": the
// real cost (d0,d1 were already fixed when the MSS values were formed) was
// paid earlier, not at this call site. When offline is false, parties
// substitute zero for the cross term (spec section 4.1 and section 9:
// "when offline randomness is disabled... an implementation is free to
// omit the toggle").
func AndMSSToRSS(x, y *share.BTensor, p *prss.PRSS, c comm.Communicator, offline bool, tag string) (*share.BTensor, error) {
	if x.Kind != share.MSS || y.Kind != share.MSS {
		return nil, errs.Precondition("AndMSSToRSS: both inputs must be MSS, got %v and %v", x.Kind, y.Kind)
	}
	if !shapeEqual(x.Shape, y.Shape) {
		return nil, errs.Precondition("AndMSSToRSS: shape mismatch")
	}
	n := x.Elements()
	nbits := minBits(x.NBits, y.NBits)

	// Every rank can compute both of its own RSS slots locally: slot i =
	// Dx*Dy ^ Dx*dy_i ^ dx_i*Dy (same structural form for i and i+1,
	// just swapping which d-slot is used).
	linear0 := make([]ring.Word, n)
	linear1 := make([]ring.Word, n)
	for i := 0; i < n; i++ {
		dxDy := x.D[i].And(y.D[i])
		linear0[i] = dxDy.Xor(x.D[i].And(y.X0[i])).Xor(x.X0[i].And(y.D[i]))
		linear1[i] = dxDy.Xor(x.D[i].And(y.X1[i])).Xor(x.X1[i].And(y.D[i]))
	}

	dxRSS, err := share.NewRSS(x.Shape, nbits, x.X0, x.X1)
	if err != nil {
		return nil, err
	}
	dyRSS, err := share.NewRSS(y.Shape, nbits, y.X0, y.X1)
	if err != nil {
		return nil, err
	}

	var crossX0, crossX1 []ring.Word
	if offline {
		cross, err := andOfRSSPairAsRSS(dxRSS, dyRSS, p, c, tag)
		if err != nil {
			return nil, err
		}
		crossX0, crossX1 = cross.X0, cross.X1
		// The reshare inside andOfRSSPairAsRSS charged 1 round and
		// n*16 bytes each way (sent and received); refund it since, in the full protocol,
		// this randomness is precomputed offline alongside d0,d1
		// themselves (spec section 4.1: "the online cost of MSS-AND
		// is therefore zero rounds").
		c.AddCommStatsManually(-1, -(2 * n * 16))
	} else {
		crossX0 = make([]ring.Word, n)
		crossX1 = make([]ring.Word, n)
	}

	out0 := make([]ring.Word, n)
	out1 := make([]ring.Word, n)
	for i := 0; i < n; i++ {
		out0[i] = linear0[i].Xor(crossX0[i])
		out1[i] = linear1[i].Xor(crossX1[i])
	}
	return share.NewRSS(x.Shape, nbits, out0, out1)
}

// AndFanIn3 computes a&b&c for three MSS tensors by composing
// AndMSSToRSS(a,b) (an RSS result) with an RSS AND against c downgraded
// from MSS to RSS (spec section 4.1, "Fan-in 3 AND").
func AndFanIn3(a, b, c3 *share.BTensor, p *prss.PRSS, comn comm.Communicator, offline bool, tagAB, tagFinal string) (*share.BTensor, error) {
	ab, err := AndMSSToRSS(a, b, p, comn, offline, tagAB)
	if err != nil {
		return nil, err
	}
	cRSS, err := reshare.MSSToRSS(c3)
	if err != nil {
		return nil, err
	}
	ass, err := AndRSSToASS(ab, cRSS, p)
	if err != nil {
		return nil, err
	}
	return reshare.ASSToRSS(ass, p, comn, tagFinal)
}

// AndFanIn4 computes a&b&c&d for four MSS tensors: two independent
// MSS-ANDs in parallel (a&b, c&d) each produce an RSS value, then one RSS
// AND combines them (spec section 4.1, "Fan-in 4 AND").
func AndFanIn4(a, b, c4, d *share.BTensor, p *prss.PRSS, comn comm.Communicator, offline bool, tagAB, tagCD, tagFinal string) (*share.BTensor, error) {
	ab, err := AndMSSToRSS(a, b, p, comn, offline, tagAB)
	if err != nil {
		return nil, err
	}
	cd, err := AndMSSToRSS(c4, d, p, comn, offline, tagCD)
	if err != nil {
		return nil, err
	}
	ass, err := AndRSSToASS(ab, cd, p)
	if err != nil {
		return nil, err
	}
	return reshare.ASSToRSS(ass, p, comn, tagFinal)
}
