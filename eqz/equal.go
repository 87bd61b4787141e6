package eqz

import (
	"github.com/hhcho/sharecore/comm"
	"github.com/hhcho/sharecore/errs"
	"github.com/hhcho/sharecore/party"
	"github.com/hhcho/sharecore/prss"
	"github.com/hhcho/sharecore/ring"
	"github.com/hhcho/sharecore/share"
)

// EqualAA tests two arithmetic RSS tensors for equality: subtract (local)
// then Eqz (spec section 4.3).
func EqualAA(a, b *share.ATensor, p *prss.PRSS, c comm.Communicator, tag string) (*share.BTensor, error) {
	if a.Field != b.Field {
		return nil, errs.Precondition("EqualAA: field mismatch %v vs %v", a.Field, b.Field)
	}
	n := a.Shape.Elements()
	bits := a.Field.Bits()
	lo := make([]ring.Word, n)
	hi := make([]ring.Word, n)
	for i := 0; i < n; i++ {
		lo[i] = a.Lo[i].Sub(b.Lo[i]).Mask(bits)
		hi[i] = a.Hi[i].Sub(b.Hi[i]).Mask(bits)
	}
	diff, err := share.NewATensor(a.Shape, a.Field, lo, hi)
	if err != nil {
		return nil, err
	}
	return Eqz(diff, p, c, tag)
}

// EqualAP tests an arithmetic RSS tensor against a public constant: the
// constant is subtracted at the single party that holds the matching
// slot in the RSS convention -- rank 0 at its second slot, rank 1 at its
// first (spec section 4.3) -- then Eqz runs as usual.
func EqualAP(x *share.ATensor, pub []ring.Word, p *prss.PRSS, c comm.Communicator, tag string) (*share.BTensor, error) {
	n := x.Shape.Elements()
	bits := x.Field.Bits()
	lo := append([]ring.Word(nil), x.Lo...)
	hi := append([]ring.Word(nil), x.Hi...)
	switch c.Rank() {
	case party.P0:
		for i := 0; i < n; i++ {
			hi[i] = hi[i].Sub(pub[i]).Mask(bits)
		}
	case party.P1:
		for i := 0; i < n; i++ {
			lo[i] = lo[i].Sub(pub[i]).Mask(bits)
		}
	}
	diff, err := share.NewATensor(x.Shape, x.Field, lo, hi)
	if err != nil {
		return nil, err
	}
	return Eqz(diff, p, c, tag)
}
