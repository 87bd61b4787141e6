// Package gate implements the gate layer, spec section 4.1: elementwise XOR
// and AND specialized to every boolean sharing kind that matters, plus the
// multi-fan-in AND compositions the parallel prefix adder needs. XOR and
// AndRSSToASS are local; AndMSSToRSS's cross-term reshare rotates once and
// refunds that round as offline; the fan-in compositions end with one
// ASS->RSS rotation.
package gate

import (
	"github.com/hhcho/sharecore/errs"
	"github.com/hhcho/sharecore/ring"
	"github.com/hhcho/sharecore/share"
)

func xorSlice(a, b []ring.Word) []ring.Word {
	out := make([]ring.Word, len(a))
	for i := range a {
		out[i] = a[i].Xor(b[i])
	}
	return out
}

// XOR computes a^b for two boolean tensors of the same Kind (spec section
// 4.1): ASS xors the one live slot, RSS xors both slots, MSS xors all
// three (D, d0, d1 are XOR-linear, so a^b's D is simply Da^Db -- no
// re-masking is needed). Output bit-width is the narrower of the inputs'.
func XOR(a, b *share.BTensor) (*share.BTensor, error) {
	if a.Kind != b.Kind {
		return nil, errs.Precondition("XOR: kind mismatch %v vs %v", a.Kind, b.Kind)
	}
	if !shapeEqual(a.Shape, b.Shape) {
		return nil, errs.Precondition("XOR: shape mismatch")
	}
	n := minBits(a.NBits, b.NBits)

	switch a.Kind {
	case share.ASS:
		return share.NewASS(a.Shape, n, xorSlice(a.X0, b.X0))
	case share.RSS:
		return share.NewRSS(a.Shape, n, xorSlice(a.X0, b.X0), xorSlice(a.X1, b.X1))
	case share.MSS:
		return share.NewMSS(a.Shape, n, xorSlice(a.D, b.D), xorSlice(a.X0, b.X0), xorSlice(a.X1, b.X1))
	default:
		errs.Invariant("XOR: unknown share kind %v", a.Kind)
		return nil, nil
	}
}
