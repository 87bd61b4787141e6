package convert

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/hhcho/sharecore/comm"
	"github.com/hhcho/sharecore/internal/testutil"
	"github.com/hhcho/sharecore/party"
	"github.com/hhcho/sharecore/prss"
	"github.com/hhcho/sharecore/ring"
	"github.com/hhcho/sharecore/share"
)

func newPRSSTrio(t *testing.T) [party.NumParties]*prss.PRSS {
	var out [party.NumParties]*prss.PRSS
	for i := 0; i < party.NumParties; i++ {
		p, err := prss.New(party.Rank(i), "")
		if err != nil {
			t.Fatal(err)
		}
		out[i] = p
	}
	return out
}

// arithSharesFromComponents lays out one element with the exact component
// values (x0, x1, x2), party p holding (x_p, x_{p+1}).
func arithSharesFromComponents(t *testing.T, comps [party.NumParties]ring.Word, f ring.Field) [party.NumParties]*share.ATensor {
	var out [party.NumParties]*share.ATensor
	for p := 0; p < party.NumParties; p++ {
		at, err := share.NewATensor(share.Shape{1}, f,
			[]ring.Word{comps[p].MaskField(f)},
			[]ring.Word{comps[(p+1)%party.NumParties].MaskField(f)})
		if err != nil {
			t.Fatal(err)
		}
		out[p] = at
	}
	return out
}

func runA2B(t *testing.T, shares [party.NumParties]*share.ATensor) ([party.NumParties]*share.BTensor, [party.NumParties]*comm.MeshNetwork) {
	prssTrio := newPRSSTrio(t)
	nodes := comm.NewMeshParties()

	var wg sync.WaitGroup
	var results [party.NumParties]*share.BTensor
	var errsOut [party.NumParties]error
	for p := 0; p < party.NumParties; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			r, err := A2B(shares[p], prssTrio[p], nodes[p], true, "test.a2b")
			results[p], errsOut[p] = r, err
		}(p)
	}
	wg.Wait()
	for _, e := range errsOut {
		if e != nil {
			t.Fatal(e)
		}
	}
	return results, nodes
}

func runMsb(t *testing.T, shares [party.NumParties]*share.ATensor) [party.NumParties]*share.BTensor {
	prssTrio := newPRSSTrio(t)
	nodes := comm.NewMeshParties()

	var wg sync.WaitGroup
	var results [party.NumParties]*share.BTensor
	var errsOut [party.NumParties]error
	for p := 0; p < party.NumParties; p++ {
		wg.Add(1)
		go func(p int) {
			r, err := MsbA2B(shares[p], prssTrio[p], nodes[p], true, "test.msb")
			results[p], errsOut[p] = r, err
			wg.Done()
		}(p)
	}
	wg.Wait()
	for _, e := range errsOut {
		if e != nil {
			t.Fatal(e)
		}
	}
	return results
}

func runB2A(t *testing.T, shares [party.NumParties]*share.BTensor, f ring.Field) ([party.NumParties]*share.ATensor, [party.NumParties]*comm.MeshNetwork) {
	prssTrio := newPRSSTrio(t)
	nodes := comm.NewMeshParties()

	var wg sync.WaitGroup
	var results [party.NumParties]*share.ATensor
	var errsOut [party.NumParties]error
	for p := 0; p < party.NumParties; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			r, err := B2A(shares[p], f, prssTrio[p], nodes[p], true, "test.b2a")
			results[p], errsOut[p] = r, err
		}(p)
	}
	wg.Wait()
	for _, e := range errsOut {
		if e != nil {
			t.Fatal(e)
		}
	}
	return results, nodes
}

func TestA2BKnownShares(t *testing.T) {
	// (3, 5, 8) sums to 16.
	shares := arithSharesFromComponents(t, [party.NumParties]ring.Word{
		ring.FromUint64(3), ring.FromUint64(5), ring.FromUint64(8),
	}, ring.F64)
	results, _ := runA2B(t, shares)
	got := testutil.ReconstructBoolRSS(results)
	if got[0].Uint64() != 16 {
		t.Errorf("A2B(3+5+8) reconstruct = %d, want 16", got[0].Uint64())
	}
	for p := 0; p < party.NumParties; p++ {
		if results[p].Kind != share.RSS || results[p].NBits != 64 {
			t.Fatalf("party %d: got kind %v width %d", p, results[p].Kind, results[p].NBits)
		}
	}
}

func TestA2BRandomValues(t *testing.T) {
	rng := rand.New(rand.NewSource(31))
	for _, f := range []ring.Field{ring.F8, ring.F16, ring.F32, ring.F64} {
		vals := make([]ring.Word, 5)
		for i := range vals {
			vals[i] = ring.FromUint64(rng.Uint64()).MaskField(f)
		}
		shares := testutil.SplitArithmeticRSS(rng, vals, f)
		results, _ := runA2B(t, shares)
		got := testutil.ReconstructBoolRSS(results)
		for i := range vals {
			if !got[i].Equal(vals[i]) {
				t.Errorf("%v: A2B reconstruct[%d] = %x, want %x", f, i, got[i].Uint64(), vals[i].Uint64())
			}
		}
	}
}

func TestA2BField128(t *testing.T) {
	rng := rand.New(rand.NewSource(32))
	vals := []ring.Word{{Hi: rng.Uint64(), Lo: rng.Uint64()}}
	shares := testutil.SplitArithmeticRSS(rng, vals, ring.F128)
	results, _ := runA2B(t, shares)
	got := testutil.ReconstructBoolRSS(results)
	if !got[0].Equal(vals[0]) {
		t.Errorf("A2B(F128) reconstruct = %x|%x, want %x|%x",
			got[0].Hi, got[0].Lo, vals[0].Hi, vals[0].Lo)
	}
}

func TestMsbKnownShares(t *testing.T) {
	cases := []struct {
		comps [party.NumParties]ring.Word
		want  uint64
	}{
		// 2^31 + 1 + 1: far below the sign bit.
		{[party.NumParties]ring.Word{ring.FromUint64(1 << 31), ring.FromUint64(1), ring.FromUint64(1)}, 0},
		// 2^63: exactly the sign bit.
		{[party.NumParties]ring.Word{ring.FromUint64(1 << 63), ring.Zero, ring.Zero}, 1},
	}
	for ci, tc := range cases {
		shares := arithSharesFromComponents(t, tc.comps, ring.F64)
		results := runMsb(t, shares)
		got := testutil.ReconstructBoolRSS(results)
		if got[0].Uint64() != tc.want {
			t.Errorf("case %d: MSB = %d, want %d", ci, got[0].Uint64(), tc.want)
		}
		if results[0].NBits != 1 {
			t.Errorf("case %d: MSB output width = %d, want 1", ci, results[0].NBits)
		}
	}
}

func TestMsbRandomValues(t *testing.T) {
	rng := rand.New(rand.NewSource(33))
	vals := make([]ring.Word, 8)
	for i := range vals {
		vals[i] = ring.FromUint64(rng.Uint64())
	}
	shares := testutil.SplitArithmeticRSS(rng, vals, ring.F64)
	results := runMsb(t, shares)
	got := testutil.ReconstructBoolRSS(results)
	for i := range vals {
		want := vals[i].Uint64() >> 63
		if got[i].Uint64() != want {
			t.Errorf("MSB[%d] = %d, want %d (value %x)", i, got[i].Uint64(), want, vals[i].Uint64())
		}
	}
}

func TestB2AByPPAKnownValue(t *testing.T) {
	rng := rand.New(rand.NewSource(34))
	vals := []ring.Word{ring.FromUint64(0xDEADBEEF)}
	shares := testutil.SplitBooleanRSS(rng, vals, 32)
	results, _ := runB2A(t, shares, ring.F64)
	got := testutil.ReconstructArithRSS(results, ring.F64)
	if got[0].Uint64() != 0xDEADBEEF {
		t.Errorf("B2A(0xDEADBEEF) reconstruct = %x, want deadbeef", got[0].Uint64())
	}
}

func TestB2AByOTNarrowWidth(t *testing.T) {
	rng := rand.New(rand.NewSource(35))
	vals := []ring.Word{ring.FromUint64(0xA5), ring.FromUint64(0x00), ring.FromUint64(0xFF)}
	shares := testutil.SplitBooleanRSS(rng, vals, 8)
	results, nodes := runB2A(t, shares, ring.F32)
	got := testutil.ReconstructArithRSS(results, ring.F32)
	for i, want := range []uint64{0xA5, 0x00, 0xFF} {
		if got[i].Uint64() != want {
			t.Errorf("B2A-OT[%d] = %x, want %x", i, got[i].Uint64(), want)
		}
	}
	if rounds, _ := nodes[0].Stats(); rounds != 2 {
		t.Errorf("B2A-OT should cost 2 rounds, got %d", rounds)
	}
}

func TestB2AZeroWidthIsFree(t *testing.T) {
	shares := [party.NumParties]*share.BTensor{}
	for p := 0; p < party.NumParties; p++ {
		bt, err := share.NewRSS(share.Shape{3}, 0, make([]ring.Word, 3), make([]ring.Word, 3))
		if err != nil {
			t.Fatal(err)
		}
		shares[p] = bt
	}
	results, nodes := runB2A(t, shares, ring.F64)
	got := testutil.ReconstructArithRSS(results, ring.F64)
	for i := range got {
		if got[i].Uint64() != 0 {
			t.Errorf("zero-width B2A[%d] = %d, want 0", i, got[i].Uint64())
		}
	}
	if rounds, bytes := nodes[0].Stats(); rounds != 0 || bytes != 0 {
		t.Errorf("zero-width B2A should not communicate, got rounds=%d bytes=%d", rounds, bytes)
	}
}

func TestB2AThenA2BIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(36))
	vals := []ring.Word{ring.FromUint64(rng.Uint64())}
	boolShares := testutil.SplitBooleanRSS(rng, vals, 64)

	arith, _ := runB2A(t, boolShares, ring.F64)
	back, _ := runA2B(t, arith)
	got := testutil.ReconstructBoolRSS(back)
	if !got[0].Equal(vals[0]) {
		t.Errorf("A2B(B2A(x)) = %x, want %x", got[0].Uint64(), vals[0].Uint64())
	}
}

// The barrier schedule is part of the contract: one round to stage the MSS
// summands, one for the generate signal, one per prefix level (the last
// level's output reshare included), and for B2A one open plus one
// finalizing rotation on top of the staging round.
func TestA2BRoundCount(t *testing.T) {
	rng := rand.New(rand.NewSource(37))
	shares := testutil.SplitArithmeticRSS(rng, []ring.Word{ring.FromUint64(99)}, ring.F64)
	_, nodes := runA2B(t, shares)
	for p := 0; p < party.NumParties; p++ {
		if rounds, _ := nodes[p].Stats(); rounds != 5 {
			t.Errorf("party %d: A2B(F64) logical rounds = %d, want 5", p, rounds)
		}
	}
}

func TestB2APPARoundCount(t *testing.T) {
	rng := rand.New(rand.NewSource(38))
	shares := testutil.SplitBooleanRSS(rng, []ring.Word{ring.FromUint64(0x1234)}, 16)
	_, nodes := runB2A(t, shares, ring.F64)
	for p := 0; p < party.NumParties; p++ {
		if rounds, _ := nodes[p].Stats(); rounds != 7 {
			t.Errorf("party %d: B2A-PPA(F64) logical rounds = %d, want 7", p, rounds)
		}
	}
}
