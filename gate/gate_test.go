package gate

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

// reconstructASS XORs the three parties' single live slot back together.
func reconstructASS(shares [party.NumParties]*share.BTensor) []ring.Word {
	n := shares[0].Elements()
	out := make([]ring.Word, n)
	for p := 0; p < party.NumParties; p++ {
		for i := 0; i < n; i++ {
			out[i] = out[i].Xor(shares[p].X0[i])
		}
	}
	return out
}

func TestXORBooleanRSS(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := []ring.Word{ring.FromUint64(0b1010)}
	b := []ring.Word{ring.FromUint64(0b0110)}
	shA := testutil.SplitBooleanRSS(rng, a, 4)
	shB := testutil.SplitBooleanRSS(rng, b, 4)

	var results [party.NumParties]*share.BTensor
	for p := 0; p < party.NumParties; p++ {
		r, err := XOR(shA[p], shB[p])
		if err != nil {
			t.Fatal(err)
		}
		results[p] = r
	}
	got := testutil.ReconstructBoolRSS(results)
	want := a[0].Xor(b[0]).Mask(4)
	if got[0].Uint64() != want.Uint64() {
		t.Errorf("XOR(RSS,RSS) reconstruct = %x, want %x", got[0].Uint64(), want.Uint64())
	}
}

func TestAndRSSToASSReconstructsConjunction(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	prssTrio := newPRSSTrio(t)

	a := []ring.Word{ring.FromUint64(0b1100)}
	b := []ring.Word{ring.FromUint64(0b1010)}
	shA := testutil.SplitBooleanRSS(rng, a, 4)
	shB := testutil.SplitBooleanRSS(rng, b, 4)

	var results [party.NumParties]*share.BTensor
	for p := 0; p < party.NumParties; p++ {
		r, err := AndRSSToASS(shA[p], shB[p], prssTrio[p])
		if err != nil {
			t.Fatal(err)
		}
		results[p] = r
	}
	got := reconstructASS(results)
	want := a[0].And(b[0]).Mask(4)
	if got[0].Uint64() != want.Uint64() {
		t.Errorf("AND(RSS,RSS)->ASS reconstruct = %x, want %x", got[0].Uint64(), want.Uint64())
	}
}

func TestAndMSSToRSSReconstructsConjunction(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	prssTrio := newPRSSTrio(t)
	nodes := comm.NewMeshParties()

	x := []ring.Word{ring.FromUint64(0b1110)}
	y := []ring.Word{ring.FromUint64(0b1011)}
	shX := testutil.SplitMSS(rng, x, 4)
	shY := testutil.SplitMSS(rng, y, 4)

	for _, offline := range []bool{true, false} {
		var wg sync.WaitGroup
		var results [party.NumParties]*share.BTensor
		var errsOut [party.NumParties]error
		for p := 0; p < party.NumParties; p++ {
			wg.Add(1)
			go func(p int) {
				defer wg.Done()
				r, err := AndMSSToRSS(shX[p], shY[p], prssTrio[p], nodes[p], offline, "test.and.mss")
				results[p], errsOut[p] = r, err
			}(p)
		}
		wg.Wait()
		for _, e := range errsOut {
			if e != nil {
				t.Fatal(e)
			}
		}
		if offline {
			got := testutil.ReconstructBoolRSS(results)
			want := x[0].And(y[0]).Mask(4)
			if got[0].Uint64() != want.Uint64() {
				t.Errorf("AndMSSToRSS(offline) reconstruct = %x, want %x", got[0].Uint64(), want.Uint64())
			}
		}
	}
}

func TestAndMSSToRSSOfflineAccountingIsNetZero(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	prssTrio := newPRSSTrio(t)
	nodes := comm.NewMeshParties()

	x := []ring.Word{ring.FromUint64(0b1)}
	y := []ring.Word{ring.FromUint64(0b1)}
	shX := testutil.SplitMSS(rng, x, 4)
	shY := testutil.SplitMSS(rng, y, 4)

	var wg sync.WaitGroup
	for p := 0; p < party.NumParties; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			if _, err := AndMSSToRSS(shX[p], shY[p], prssTrio[p], nodes[p], true, "test.acct"); err != nil {
				t.Error(err)
			}
		}(p)
	}
	wg.Wait()

	rounds, _ := nodes[0].Stats()
	if rounds != 0 {
		t.Errorf("offline MSS-AND should net to zero accounted rounds, got %d", rounds)
	}
}
