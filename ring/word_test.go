package ring

import "testing"

func TestFieldFor(t *testing.T) {
	cases := []struct {
		k    int
		want Field
	}{
		{1, F8}, {8, F8}, {9, F16}, {16, F16}, {17, F32},
		{32, F32}, {33, F64}, {64, F64}, {65, F128}, {128, F128},
	}
	for _, c := range cases {
		got, err := FieldFor(c.k)
		if err != nil {
			t.Fatalf("FieldFor(%d): %v", c.k, err)
		}
		if got != c.want {
			t.Errorf("FieldFor(%d) = %v, want %v", c.k, got, c.want)
		}
	}
	if _, err := FieldFor(0); err == nil {
		t.Errorf("FieldFor(0) should error")
	}
	if _, err := FieldFor(129); err == nil {
		t.Errorf("FieldFor(129) should error")
	}
}

func TestWordAddWraps(t *testing.T) {
	w := FromUint64(0xFF).Add(FromUint64(1)).Mask(8)
	if w.Uint64() != 0 {
		t.Errorf("8-bit wraparound add failed, got %d", w.Uint64())
	}
}

func TestWordAdd128Carry(t *testing.T) {
	w := Word{Hi: 0, Lo: ^uint64(0)}
	sum := w.Add(FromUint64(1))
	if sum.Hi != 1 || sum.Lo != 0 {
		t.Errorf("128-bit carry propagation failed: %+v", sum)
	}
}

func TestWordXorAndSelfInverse(t *testing.T) {
	a := FromUint64(0xDEADBEEF)
	b := FromUint64(0xCAFEBABE)
	if !a.Xor(b).Xor(b).Equal(a) {
		t.Errorf("xor is not self-inverse")
	}
}

func TestShiftRoundTrip(t *testing.T) {
	w := FromUint64(0x0102030405060708)
	if got := w.Shl(8).Shr(8).Mask(56); !got.Equal(w.Mask(56)) {
		t.Errorf("shl/shr round trip failed: got %+v want %+v", got, w.Mask(56))
	}
}

func TestSetBitAndBit(t *testing.T) {
	w := Zero
	w = w.SetBit(3, 1)
	if w.Bit(3) != 1 {
		t.Errorf("SetBit/Bit mismatch")
	}
	w = w.SetBit(3, 0)
	if w.Bit(3) != 0 {
		t.Errorf("SetBit clear failed")
	}
}

func TestIsZero(t *testing.T) {
	w := FromUint64(1 << 40)
	if w.IsZero(128) {
		t.Errorf("expected non-zero")
	}
	if !w.IsZero(40) {
		t.Errorf("masking to 40 bits should be zero")
	}
}
