// Package reshare implements the sharing-kind transitions RSS<->ASS,
// RSS<->MSS, and ASS->MSS, each costing exactly the number of logical
// rounds documented on the kernel. Where a transition issues two rotations
// in opposite directions they are in flight together and count as a single
// logical round; the communicator's round counter is corrected accordingly.
package reshare

import (
	"github.com/hhcho/sharecore/comm"
	"github.com/hhcho/sharecore/errs"
	"github.com/hhcho/sharecore/prss"
	"github.com/hhcho/sharecore/ring"
	"github.com/hhcho/sharecore/share"
)

// RSSToASS drops the second slot: zero communication (spec section 4.2).
func RSSToASS(b *share.BTensor) (*share.BTensor, error) {
	if b.Kind != share.RSS {
		return nil, errs.Precondition("RSSToASS: input must be RSS, got %v", b.Kind)
	}
	return share.NewASS(b.Shape, b.NBits, append([]ring.Word(nil), b.X0...))
}

// ASSToRSS adds a PRSS-pair mask and rotates once (spec section 4.2, 1
// round): each party masks its own ASS share with the draw shared with its
// predecessor, ships it one step (RotateRight: send to Prev, receive from
// Next), and unmasks the incoming value with the matching draw shared with
// its successor. The outgoing mask and the unmasking draw are the same
// physical PRSS stream at the two parties involved, so the result is a
// valid (x_i, x_{i+1}) RSS pair with no value ever crossing the wire in
// the clear.
func ASSToRSS(a *share.BTensor, p *prss.PRSS, c comm.Communicator, tag string) (*share.BTensor, error) {
	if a.Kind != share.ASS {
		return nil, errs.Precondition("ASSToRSS: input must be ASS, got %v", a.Kind)
	}
	n := a.Elements()
	first, second := p.FillPair(n, prss.Both)
	masked := make([]ring.Word, n)
	for i := range masked {
		masked[i] = a.X0[i].Xor(second[i])
	}
	received, err := c.RotateRight(masked, tag)
	if err != nil {
		return nil, errs.Transport(err, "ASSToRSS: rotate failed")
	}
	x0 := make([]ring.Word, n)
	x1 := make([]ring.Word, n)
	for i := range x0 {
		x0[i] = a.X0[i]
		x1[i] = received[i].Xor(first[i])
	}
	return share.NewRSS(a.Shape, a.NBits, x0, x1)
}

// RSSToMSS samples an RSS-shared mask d via a PRSS pair (the pair is
// already a valid (d_i, d_{i+1}) RSS triple by construction, the same
// trick ASSToRSS's unmask relies on) and reveals D = x^d by broadcasting
// each party's x_i^d_i share and XORing the three together (spec section
// 4.2, 1 round): D is identical and public at every party once the
// broadcast resolves, since it is the same sum computed three ways.
func RSSToMSS(x *share.BTensor, p *prss.PRSS, c comm.Communicator, tag string) (*share.BTensor, error) {
	if x.Kind != share.RSS {
		return nil, errs.Precondition("RSSToMSS: input must be RSS, got %v", x.Kind)
	}
	n := x.Elements()
	// FillPair's "first" is shared with Next(), "second" with Prev(). A
	// fresh (d_i, d_{i+1}) RSS pair needs the opposite pairing: d_i must
	// be the draw this party shares with its predecessor (so the
	// predecessor can independently compute the same value as its own
	// d_{i+1}), i.e. d0=second, d1=first.
	first, second := p.FillPair(n, prss.Both)
	d0, d1 := second, first

	opened := make([]ring.Word, n)
	for i := range opened {
		opened[i] = x.X0[i].Xor(d0[i])
	}
	// Every party ships its own x_i^d_i around the ring twice (once each
	// direction) so everyone ends up with all three contributions; XORing
	// them together yields D = x0^x1^x2 ^ d0^d1^d2 = x^d.
	fromPrev, err := c.Rotate(opened, tag+".fwd")
	if err != nil {
		return nil, errs.Transport(err, "RSSToMSS: rotate failed")
	}
	fromNext, err := c.RotateRight(opened, tag+".bwd")
	if err != nil {
		return nil, errs.Transport(err, "RSSToMSS: rotate-right failed")
	}
	D := make([]ring.Word, n)
	for i := range D {
		D[i] = opened[i].Xor(fromPrev[i]).Xor(fromNext[i])
	}
	// The two opposite-direction rotations are in flight together: one
	// logical round, not two.
	c.AddCommStatsManually(-1, 0)
	return share.NewMSS(x.Shape, x.NBits, D, d0, d1)
}

// ASSToMSS publishes D = x^d directly from the single live ASS slot: sample
// an RSS mask d off the pairwise generators (no communication), locally form
// x_i^d_i, then ship it around the ring once in each direction -- two
// rotations in parallel, one logical round.
func ASSToMSS(a *share.BTensor, p *prss.PRSS, c comm.Communicator, tag string) (*share.BTensor, error) {
	if a.Kind != share.ASS {
		return nil, errs.Precondition("ASSToMSS: input must be ASS, got %v", a.Kind)
	}
	n := a.Elements()
	// Same pairing as RSSToMSS: d_i must be the draw shared with the
	// predecessor so the triple (d_0,d_1,d_2) is replicated consistently.
	first, second := p.FillPair(n, prss.Both)
	d0, d1 := second, first

	opened := make([]ring.Word, n)
	for i := range opened {
		opened[i] = a.X0[i].Xor(d0[i])
	}
	fromPrev, err := c.Rotate(opened, tag+".fwd")
	if err != nil {
		return nil, errs.Transport(err, "ASSToMSS: rotate failed")
	}
	fromNext, err := c.RotateRight(opened, tag+".bwd")
	if err != nil {
		return nil, errs.Transport(err, "ASSToMSS: rotate-right failed")
	}
	D := make([]ring.Word, n)
	for i := range D {
		D[i] = opened[i].Xor(fromPrev[i]).Xor(fromNext[i])
	}
	c.AddCommStatsManually(-1, 0)
	return share.NewMSS(a.Shape, a.NBits, D, d0, d1)
}

// MSSToRSS drops D into both RSS slots: x_i = D^d_i, x_{i+1} = D^d_{i+1},
// computed locally once D and d are both already held (spec section 4.2,
// zero rounds).
func MSSToRSS(m *share.BTensor) (*share.BTensor, error) {
	if m.Kind != share.MSS {
		return nil, errs.Precondition("MSSToRSS: input must be MSS, got %v", m.Kind)
	}
	n := m.Elements()
	x0 := make([]ring.Word, n)
	x1 := make([]ring.Word, n)
	for i := 0; i < n; i++ {
		x0[i] = m.D[i].Xor(m.X0[i])
		x1[i] = m.D[i].Xor(m.X1[i])
	}
	return share.NewRSS(m.Shape, m.NBits, x0, x1)
}
