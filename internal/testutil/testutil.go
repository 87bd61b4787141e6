// Package testutil builds known-plaintext shares for the three parties
// directly (bypassing the reshare kernels under test) so conversion tests
// can assert round-trip properties against ground truth, the way spec
// section 8's "Testable Properties" are phrased (reconstruction via
// XORing/adding the three shares back together).
package testutil

import (
	"math/rand"

	"github.com/hhcho/sharecore/party"
	"github.com/hhcho/sharecore/ring"
	"github.com/hhcho/sharecore/share"
)

// SplitBooleanRSS splits vals (masked to nbits) into a 3-out-of-3 XOR
// sharing and returns, per party, the RSS pair (x_i, x_{i+1}) it holds.
func SplitBooleanRSS(rng *rand.Rand, vals []ring.Word, nbits int) [party.NumParties]*share.BTensor {
	n := len(vals)
	x := make([][party.NumParties]ring.Word, n)
	for i := 0; i < n; i++ {
		var acc ring.Word
		for p := 0; p < party.NumParties-1; p++ {
			w := ring.FromUint64(rng.Uint64()).Mask(nbits)
			x[i][p] = w
			acc = acc.Xor(w)
		}
		x[i][party.NumParties-1] = vals[i].Mask(nbits).Xor(acc)
	}

	var out [party.NumParties]*share.BTensor
	for p := 0; p < party.NumParties; p++ {
		x0 := make([]ring.Word, n)
		x1 := make([]ring.Word, n)
		for i := 0; i < n; i++ {
			x0[i] = x[i][p]
			x1[i] = x[i][(p+1)%party.NumParties]
		}
		out[p], _ = share.NewRSS(share.Shape{n}, nbits, x0, x1)
	}
	return out
}

// ReconstructBoolRSS XORs the three parties' X0 slots (each x_i) back
// together.
func ReconstructBoolRSS(shares [party.NumParties]*share.BTensor) []ring.Word {
	n := shares[0].Elements()
	out := make([]ring.Word, n)
	for p := 0; p < party.NumParties; p++ {
		for i := 0; i < n; i++ {
			out[i] = out[i].Xor(shares[p].X0[i])
		}
	}
	return out
}

// SplitArithmeticRSS splits vals into an additive sharing mod 2^f.Bits()
// and returns each party's RSS pair (x_i, x_{i+1}).
func SplitArithmeticRSS(rng *rand.Rand, vals []ring.Word, f ring.Field) [party.NumParties]*share.ATensor {
	n := len(vals)
	bits := f.Bits()
	x := make([][party.NumParties]ring.Word, n)
	for i := 0; i < n; i++ {
		var acc ring.Word
		for p := 0; p < party.NumParties-1; p++ {
			w := ring.FromUint64(rng.Uint64()).Mask(bits)
			x[i][p] = w
			acc = acc.Add(w)
		}
		x[i][party.NumParties-1] = vals[i].Mask(bits).Sub(acc).Mask(bits)
	}

	var out [party.NumParties]*share.ATensor
	for p := 0; p < party.NumParties; p++ {
		lo := make([]ring.Word, n)
		hi := make([]ring.Word, n)
		for i := 0; i < n; i++ {
			lo[i] = x[i][p]
			hi[i] = x[i][(p+1)%party.NumParties]
		}
		out[p], _ = share.NewATensor(share.Shape{n}, f, lo, hi)
	}
	return out
}

// ReconstructArithRSS adds the three parties' Lo slots back together mod
// 2^f.Bits().
func ReconstructArithRSS(shares [party.NumParties]*share.ATensor, f ring.Field) []ring.Word {
	n := shares[0].Shape.Elements()
	out := make([]ring.Word, n)
	for p := 0; p < party.NumParties; p++ {
		for i := 0; i < n; i++ {
			out[i] = out[i].Add(shares[p].Lo[i])
		}
	}
	for i := range out {
		out[i] = out[i].Mask(f.Bits())
	}
	return out
}

// SplitMSS builds an MSS sharing of vals: an RSS mask d is generated, D =
// vals ^ reconstruct(d) is computed (and is identical/public at every
// party by construction), and each party's share is (D, d_i, d_{i+1}).
func SplitMSS(rng *rand.Rand, vals []ring.Word, nbits int) [party.NumParties]*share.BTensor {
	mask := make([]ring.Word, len(vals))
	for i := range mask {
		mask[i] = ring.FromUint64(rng.Uint64()).Mask(nbits)
	}
	dShares := SplitBooleanRSS(rng, mask, nbits)
	d := ReconstructBoolRSS(dShares)

	n := len(vals)
	D := make([]ring.Word, n)
	for i := range D {
		D[i] = vals[i].Mask(nbits).Xor(d[i])
	}

	var out [party.NumParties]*share.BTensor
	for p := 0; p < party.NumParties; p++ {
		out[p], _ = share.NewMSS(share.Shape{n}, nbits, D, dShares[p].X0, dShares[p].X1)
	}
	return out
}

// ReconstructMSS XORs D with the reconstructed d mask.
func ReconstructMSS(shares [party.NumParties]*share.BTensor) []ring.Word {
	d := ReconstructBoolRSS(shares)
	n := len(d)
	out := make([]ring.Word, n)
	for i := 0; i < n; i++ {
		out[i] = shares[0].D[i].Xor(d[i])
	}
	return out
}
