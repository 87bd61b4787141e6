package convert

import (
	"github.com/hhcho/sharecore/comm"
	"github.com/hhcho/sharecore/errs"
	"github.com/hhcho/sharecore/gate"
	"github.com/hhcho/sharecore/party"
	"github.com/hhcho/sharecore/prss"
	"github.com/hhcho/sharecore/reshare"
	"github.com/hhcho/sharecore/ring"
	"github.com/hhcho/sharecore/share"
)

// prepMSSInputs turns an arithmetic RSS tensor x = x0+x1+x2 into the two
// boolean MSS summands the adder consumes: m = x_s + x_{s+1} (computable
// locally by the start party, which holds both) and n = x_{s+2} (held by
// the other two). The start rank rotates via a public draw so repeated
// conversions spread the broadcast load.
//
// The m mask has components only on the two generators the start party
// shares with its neighbors, so the start party can publish D_m itself;
// the n mask has a single component on the generator its two holders
// share, so either of them can publish D_n -- the successor does, and
// ships it to the one party missing it. The broadcast and the
// point-to-point send are in flight together: one round.
func prepMSSInputs(x *share.ATensor, pr *prss.PRSS, c comm.Communicator, tag string) (*share.BTensor, *share.BTensor, error) {
	bits := x.Field.Bits()
	nEl := x.Shape.Elements()
	start := party.Pivot(pr.FillPublic(1)[0].Uint64())
	self := c.Rank()

	// Mask for m: dm_s off the predecessor generator, dm_{s+1} off the
	// successor generator, dm_{s+2} = 0.
	var dm0, dm1 []ring.Word
	switch self {
	case start:
		first, second := pr.FillPair(nEl, prss.Both)
		dm0, dm1 = second, first
	case start.Next():
		_, second := pr.FillPair(nEl, prss.Second)
		dm0, dm1 = second, make([]ring.Word, nEl)
	case start.Prev():
		first, _ := pr.FillPair(nEl, prss.First)
		dm0, dm1 = make([]ring.Word, nEl), first
	}

	// Mask for n: the single component dn_{s+2}, shared between the start
	// party's successor and predecessor.
	var dn0, dn1 []ring.Word
	switch self {
	case start:
		pr.FillPair(nEl, prss.None)
		dn0, dn1 = make([]ring.Word, nEl), make([]ring.Word, nEl)
	case start.Next():
		first, _ := pr.FillPair(nEl, prss.First)
		dn0, dn1 = make([]ring.Word, nEl), first
	case start.Prev():
		_, second := pr.FillPair(nEl, prss.Second)
		dn0, dn1 = second, make([]ring.Word, nEl)
	}
	maskSlices(bits, dm0, dm1, dn0, dn1)

	// Publish D_m from the start party and D_n from its successor.
	dm := make([]ring.Word, nEl)
	if self == start {
		for i := 0; i < nEl; i++ {
			dm[i] = x.Lo[i].Add(x.Hi[i]).Mask(bits).Xor(dm0[i]).Xor(dm1[i])
		}
	}
	dm, err := c.Broadcast(dm, start, tag+".dm")
	if err != nil {
		return nil, nil, errs.Transport(err, "prepMSSInputs: D_m broadcast failed")
	}

	var dn []ring.Word
	switch self {
	case start.Next():
		dn = make([]ring.Word, nEl)
		for i := 0; i < nEl; i++ {
			dn[i] = x.Hi[i].Mask(bits).Xor(dn1[i])
		}
		if err := c.SendAsync(start, dn, tag+".dn"); err != nil {
			return nil, nil, errs.Transport(err, "prepMSSInputs: D_n send failed")
		}
	case start.Prev():
		dn = make([]ring.Word, nEl)
		for i := 0; i < nEl; i++ {
			dn[i] = x.Lo[i].Mask(bits).Xor(dn0[i])
		}
	case start:
		dn, err = c.Recv(start.Next(), nEl, tag+".dn")
		if err != nil {
			return nil, nil, errs.Transport(err, "prepMSSInputs: D_n recv failed")
		}
	}

	m, err := share.NewMSS(x.Shape, bits, dm, dm0, dm1)
	if err != nil {
		return nil, nil, err
	}
	n, err := share.NewMSS(x.Shape, bits, dn, dn0, dn1)
	if err != nil {
		return nil, nil, err
	}
	return m, n, nil
}

func maskSlices(bits int, slices ...[]ring.Word) {
	for _, s := range slices {
		for i := range s {
			s[i] = s[i].Mask(bits)
		}
	}
}

// pgSignals derives the propagate and generate signals from the two MSS
// summands: p = m ^ n locally, g = m & n through the zero-round MSS-AND,
// reshared to MSS so the prefix cells can keep their own ANDs offline.
func pgSignals(m, n *share.BTensor, pr *prss.PRSS, c comm.Communicator, offline bool, tag string) (p *share.BTensor, g *share.BTensor, err error) {
	p, err = gate.XOR(m, n)
	if err != nil {
		return nil, nil, err
	}
	gRSS, err := gate.AndMSSToRSS(m, n, pr, c, offline, tag+".g")
	if err != nil {
		return nil, nil, err
	}
	g, err = reshare.RSSToMSS(gRSS, pr, c, tag+".g2m")
	if err != nil {
		return nil, nil, err
	}
	return p, g, nil
}

// A2B converts an arithmetic RSS tensor into a boolean RSS tensor of the
// same value: the two summands m and n are lifted to MSS, their sum is
// computed by the prefix adder, and the sum bits come out as p ^ (carry<<1).
func A2B(x *share.ATensor, pr *prss.PRSS, c comm.Communicator, offline bool, tag string) (*share.BTensor, error) {
	m, n, err := prepMSSInputs(x, pr, c, tag+".prep")
	if err != nil {
		return nil, err
	}
	p, g, err := pgSignals(m, n, pr, c, offline, tag+".pg")
	if err != nil {
		return nil, err
	}
	carry, err := prefixCarry(p, g, pr, c, offline, tag+".ppa")
	if err != nil {
		return nil, err
	}
	return sumFromCarry(p, carry)
}
