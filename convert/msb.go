package convert

import (
	"github.com/hhcho/sharecore/comm"
	"github.com/hhcho/sharecore/errs"
	"github.com/hhcho/sharecore/gate"
	"github.com/hhcho/sharecore/prss"
	"github.com/hhcho/sharecore/reshare"
	"github.com/hhcho/sharecore/ring"
	"github.com/hhcho/sharecore/share"
)

// forceTopPublicOne replaces an MSS tensor's top bit with a public 1: the
// mask slots lose their top bit and D gains it, leaving every lower lane
// untouched.
func forceTopPublicOne(t *share.BTensor) *share.BTensor {
	nEl := t.Elements()
	top := ring.FromUint64(1).Shl(t.NBits - 1)
	keep := top.Not()
	d := make([]ring.Word, nEl)
	x0 := make([]ring.Word, nEl)
	x1 := make([]ring.Word, nEl)
	for i := 0; i < nEl; i++ {
		d[i] = t.D[i].And(keep).Or(top)
		x0[i] = t.X0[i].And(keep)
		x1[i] = t.X1[i].And(keep)
	}
	out, _ := share.NewMSS(t.Shape, t.NBits, d, x0, x1)
	return out
}

// clearTopBit zeroes an MSS tensor's top lane across all three slots.
func clearTopBit(t *share.BTensor) *share.BTensor {
	nEl := t.Elements()
	keep := ring.FromUint64(1).Shl(t.NBits - 1).Not()
	d := make([]ring.Word, nEl)
	x0 := make([]ring.Word, nEl)
	x1 := make([]ring.Word, nEl)
	for i := 0; i < nEl; i++ {
		d[i] = t.D[i].And(keep)
		x0[i] = t.X0[i].And(keep)
		x1[i] = t.X1[i].And(keep)
	}
	out, _ := share.NewMSS(t.Shape, t.NBits, d, x0, x1)
	return out
}

// MsbA2B extracts the sign bit of an arithmetic RSS tensor as a width-1
// boolean RSS tensor, without materializing the other sum bits. It shares
// the prefix cells with A2B: the top propagate lane is forced to a public
// 1 and the top generate lane to 0, so the network's terminal generate bit
// is exactly the carry INTO the sign position; one local XOR against the
// real top propagate bit then yields the MSB.
func MsbA2B(x *share.ATensor, pr *prss.PRSS, c comm.Communicator, offline bool, tag string) (*share.BTensor, error) {
	bits := x.Field.Bits()
	if bits < 2 {
		return nil, errs.Precondition("MsbA2B: field width %d too narrow", bits)
	}
	m, n, err := prepMSSInputs(x, pr, c, tag+".prep")
	if err != nil {
		return nil, err
	}
	p, g, err := pgSignals(m, n, pr, c, offline, tag+".pg")
	if err != nil {
		return nil, err
	}

	// Keep the true top propagate bit around before overwriting the lane.
	pRSS, err := reshare.MSSToRSS(p)
	if err != nil {
		return nil, err
	}
	pTop := shrRSS(pRSS, bits-1, 1)

	carry, err := prefixCarry(forceTopPublicOne(p), clearTopBit(g), pr, c, offline, tag+".ppa")
	if err != nil {
		return nil, err
	}
	cTop := shrRSS(carry, bits-1, 1)
	return gate.XOR(pTop, cTop)
}
