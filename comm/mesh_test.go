package comm

import (
	"sync"
	"testing"

	"github.com/hhcho/sharecore/party"
	"github.com/hhcho/sharecore/ring"
)

func TestRotateDeliversFromPrev(t *testing.T) {
	nodes := NewMeshParties()
	got := make([][]ring.Word, party.NumParties)

	var wg sync.WaitGroup
	for i := range nodes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := nodes[i].Rotate([]ring.Word{ring.FromUint64(uint64(i))}, "t")
			if err != nil {
				t.Errorf("rotate: %v", err)
				return
			}
			got[i] = out
		}(i)
	}
	wg.Wait()

	for i := 0; i < party.NumParties; i++ {
		want := (i + party.NumParties - 1) % party.NumParties
		if got[i][0].Uint64() != uint64(want) {
			t.Errorf("party %d: Rotate should receive from %d, got value %d", i, want, got[i][0].Uint64())
		}
	}
}

func TestRotateRightDeliversFromNext(t *testing.T) {
	nodes := NewMeshParties()
	got := make([][]ring.Word, party.NumParties)

	var wg sync.WaitGroup
	for i := range nodes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := nodes[i].RotateRight([]ring.Word{ring.FromUint64(uint64(i))}, "tr")
			if err != nil {
				t.Errorf("rotate right: %v", err)
				return
			}
			got[i] = out
		}(i)
	}
	wg.Wait()

	for i := 0; i < party.NumParties; i++ {
		want := (i + 1) % party.NumParties
		if got[i][0].Uint64() != uint64(want) {
			t.Errorf("party %d: RotateRight should receive from %d, got %d", i, want, got[i][0].Uint64())
		}
	}
}

func TestBroadcastFromRoot(t *testing.T) {
	nodes := NewMeshParties()
	got := make([][]ring.Word, party.NumParties)

	var wg sync.WaitGroup
	for i := range nodes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var in []ring.Word
			if party.Rank(i) == party.P1 {
				in = []ring.Word{ring.FromUint64(42)}
			}
			out, err := nodes[i].Broadcast(in, party.P1, "b")
			if err != nil {
				t.Errorf("broadcast: %v", err)
				return
			}
			got[i] = out
		}(i)
	}
	wg.Wait()

	for i := range got {
		if got[i][0].Uint64() != 42 {
			t.Errorf("party %d did not receive broadcast value, got %+v", i, got[i])
		}
	}
}

func TestAddCommStatsManually(t *testing.T) {
	nodes := NewMeshParties()
	nodes[0].AddCommStatsManually(2, -100)
	r, b := nodes[0].Stats()
	if r != 2 || b != -100 {
		t.Errorf("manual stats not applied: rounds=%d bytes=%d", r, b)
	}
}
