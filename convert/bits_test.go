package convert

import (
	"math/rand"
	"testing"

	"github.com/hhcho/sharecore/ring"
)

func TestPack2RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	for _, n := range []int{2, 4, 8, 16, 32, 64} {
		for trial := 0; trial < 32; trial++ {
			hi := ring.FromUint64(rng.Uint64()).Mask(n)
			lo := ring.FromUint64(rng.Uint64()).Mask(n)
			packed := Pack2(hi, lo, n)
			gotHi, gotLo := Unpack2(packed, n)
			if !gotHi.Equal(hi) || !gotLo.Equal(lo) {
				t.Fatalf("n=%d: Pack2(%x,%x) -> Unpack2 = (%x,%x)",
					n, hi.Uint64(), lo.Uint64(), gotHi.Uint64(), gotLo.Uint64())
			}
		}
	}
}

func TestPack2Interleaves(t *testing.T) {
	// lo occupies the even positions, hi the odd ones.
	packed := Pack2(ring.FromUint64(0b1111), ring.FromUint64(0b0000), 4)
	if got := packed.Uint64(); got != 0b10101010 {
		t.Errorf("Pack2(1111,0000,4) = %08b, want 10101010", got)
	}
	packed = Pack2(ring.FromUint64(0b0000), ring.FromUint64(0b1111), 4)
	if got := packed.Uint64(); got != 0b01010101 {
		t.Errorf("Pack2(0000,1111,4) = %08b, want 01010101", got)
	}
}

func TestBitSplitMergeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(22))
	for _, n := range []int{2, 8, 16, 64, 128} {
		for trial := 0; trial < 32; trial++ {
			x := ring.Word{Hi: rng.Uint64(), Lo: rng.Uint64()}.Mask(n)
			hi, lo := BitSplit(x, n)
			if got := BitMerge(hi, lo, n); !got.Equal(x) {
				t.Fatalf("n=%d: BitMerge(BitSplit(x)) != x", n)
			}
			// The halves really are the odd/even lanes.
			for j := 0; j < n/2; j++ {
				if lo.Bit(j) != x.Bit(2*j) || hi.Bit(j) != x.Bit(2*j+1) {
					t.Fatalf("n=%d: lane %d mismatch", n, j)
				}
			}
		}
	}
}
