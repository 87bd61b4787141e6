// Package share implements the representation layer (spec section 3.2,
// component 1): the three boolean sharings (RSS, ASS, MSS) and the single
// arithmetic sharing (RSS) this core converts between, as a tagged union
// rather than the teacher-adjacent "ASS packed into an RSS container with
// an ignored second slot" convention spec section 9's DESIGN NOTES flags as
// worth dropping.
package share

import "github.com/hhcho/sharecore/ring"

import "github.com/hhcho/sharecore/errs"

// Shape is the dimensions of an N-dimensional tensor; every sharing in this
// package is elementwise over Shape's flattened element count.
type Shape []int

// Elements returns the flattened element count (1 for an empty Shape,
// matching a scalar).
func (s Shape) Elements() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

func (s Shape) equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// ATensor is an arithmetic RSS tensor: party i holds (x_i, x_{i+1}) with
// x = x0+x1+x2 mod 2^Field.Bits() (spec section 3.2 table).
type ATensor struct {
	Shape Shape
	Field ring.Field
	Lo    []ring.Word // x_i
	Hi    []ring.Word // x_{i+1}
}

// NewATensor validates and builds an arithmetic RSS tensor.
func NewATensor(shape Shape, f ring.Field, lo, hi []ring.Word) (*ATensor, error) {
	n := shape.Elements()
	if len(lo) != n || len(hi) != n {
		return nil, errs.Precondition("ATensor: shape has %d elements, got lo=%d hi=%d", n, len(lo), len(hi))
	}
	return &ATensor{Shape: shape, Field: f, Lo: lo, Hi: hi}, nil
}

func maskAll(v []ring.Word, bits int) []ring.Word {
	out := make([]ring.Word, len(v))
	for i, w := range v {
		out[i] = w.Mask(bits)
	}
	return out
}

// Masked returns a copy of t with every component reduced to t.Field's
// width.
func (t *ATensor) Masked() *ATensor {
	return &ATensor{Shape: t.Shape, Field: t.Field, Lo: maskAll(t.Lo, t.Field.Bits()), Hi: maskAll(t.Hi, t.Field.Bits())}
}

// BKind discriminates the three boolean sharings of spec section 3.2.
type BKind uint8

const (
	RSS BKind = iota
	ASS
	MSS
)

func (k BKind) String() string {
	switch k {
	case RSS:
		return "RSS"
	case ASS:
		return "ASS"
	case MSS:
		return "MSS"
	default:
		return "?"
	}
}

// BTensor is a boolean tensor in one of RSS, ASS, or MSS form, always
// carrying its bit-width n (spec section 3.2: "every boolean tensor carries
// its bit-width n"). Component slices not meaningful for Kind are left nil:
// ASS only ever populates X0; RSS populates X0,X1; MSS populates D,X0,X1.
type BTensor struct {
	Shape Shape
	NBits int
	Kind  BKind

	D  []ring.Word // MSS only: the public external value
	X0 []ring.Word // RSS: x_i      ASS: x_i      MSS: d_i
	X1 []ring.Word // RSS: x_{i+1}                MSS: d_{i+1}
}

func checkLen(name string, got, want int) error {
	if got != want {
		return errs.Precondition("%s: expected %d elements, got %d", name, want, got)
	}
	return nil
}

// NewRSS builds a boolean RSS tensor.
func NewRSS(shape Shape, nbits int, x0, x1 []ring.Word) (*BTensor, error) {
	n := shape.Elements()
	if err := checkLen("BTensor(RSS).X0", len(x0), n); err != nil {
		return nil, err
	}
	if err := checkLen("BTensor(RSS).X1", len(x1), n); err != nil {
		return nil, err
	}
	return &BTensor{Shape: shape, NBits: nbits, Kind: RSS, X0: x0, X1: x1}, nil
}

// NewASS builds a boolean ASS tensor (only one live slot per spec section
// 3.2).
func NewASS(shape Shape, nbits int, x0 []ring.Word) (*BTensor, error) {
	n := shape.Elements()
	if err := checkLen("BTensor(ASS).X0", len(x0), n); err != nil {
		return nil, err
	}
	return &BTensor{Shape: shape, NBits: nbits, Kind: ASS, X0: x0}, nil
}

// NewMSS builds a boolean MSS tensor: D is the public external value, X0/X1
// are the RSS-shared mask d_i, d_{i+1}.
func NewMSS(shape Shape, nbits int, d, x0, x1 []ring.Word) (*BTensor, error) {
	n := shape.Elements()
	for _, c := range []struct {
		name string
		v    []ring.Word
	}{{"D", d}, {"X0", x0}, {"X1", x1}} {
		if err := checkLen("BTensor(MSS)."+c.name, len(c.v), n); err != nil {
			return nil, err
		}
	}
	return &BTensor{Shape: shape, NBits: nbits, Kind: MSS, D: d, X0: x0, X1: x1}, nil
}

// Elements returns the tensor's flattened element count.
func (t *BTensor) Elements() int { return t.Shape.Elements() }

// SameShapeAndWidth reports whether t and o can feed the same elementwise
// gate (spec section 4.1: "each preserves shape").
func (t *BTensor) SameShapeAndWidth(o *BTensor) bool {
	return t.Shape.equal(o.Shape) && t.NBits == o.NBits
}

// minBits is the bit-width rule every gate follows: the output carries the
// narrower of its inputs' widths (spec section 4.1).
func minBits(a, b int) int {
	if a < b {
		return a
	}
	return b
}
