// Package party holds the tiny amount of state specific to "which of the
// three parties am I": rank arithmetic mod 3 and the rotating helper pivot
// used by eqz (spec section 4.3).
package party

// Rank identifies one of the three parties, P0, P1, or P2.
type Rank uint8

const (
	P0 Rank = 0
	P1 Rank = 1
	P2 Rank = 2
)

// NumParties is fixed: this core only ever runs with exactly three parties
// (spec section 1, non-goals).
const NumParties = 3

// Next returns the rank that follows r (rank+1 mod 3) -- the destination of
// Rotate.
func (r Rank) Next() Rank { return Rank((int(r) + 1) % NumParties) }

// Prev returns the rank that precedes r (rank-1 mod 3) -- the source of
// Rotate, the destination of RotateRight.
func (r Rank) Prev() Rank { return Rank((int(r) + NumParties - 1) % NumParties) }

func (r Rank) String() string {
	switch r {
	case P0:
		return "P0"
	case P1:
		return "P1"
	case P2:
		return "P2"
	default:
		return "P?"
	}
}

// Valid reports whether r is one of P0, P1, P2.
func (r Rank) Valid() bool { return r == P0 || r == P1 || r == P2 }

// Pivot picks the rotating helper party for a repeated protocol (spec
// section 4.3, "choose a rotating pivot... so load is balanced across
// repeated calls"). draw is expected to come from prss.FillPublic so every
// party computes the same pivot without communication.
func Pivot(draw uint64) Rank {
	return Rank(draw % uint64(NumParties))
}
