// Package prss implements pairwise correlated randomness: two parties that
// are ring-neighbors share a PRG seed and can therefore agree on random
// values without ever putting them on the wire (spec section 1, "PRSS").
//
// This is a 3-party specialization of the teacher's mpc/random.go, which
// keeps one frand.RNG per *other* party for an arbitrary N. With exactly
// three parties every party has exactly two neighbors (rank+1 and rank-1),
// so the pairwise table collapses to two named generators plus the local
// one -- same seeding approach (chacha20-sized seeds read from a key
// directory, or a deterministic fallback for tests), same frand source.
package prss

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aead/chacha20/chacha"
	"github.com/hhcho/frand"
	"go.dedis.ch/onet/v3/log"

	"github.com/hhcho/sharecore/party"
)

const bufferSize = 1024

// Ctrl selects which half of a correlated pair this party materializes.
// Every PRSS call site must pick one explicitly (spec section 9, "represent
// the control as a required parameter, not a default") since a mismatch
// between two parties silently corrupts shares.
type Ctrl int

const (
	None Ctrl = iota
	First
	Second
	Both
)

// PRSS holds one party's pairwise generators: one shared with the next
// rank (right neighbor), one shared with the previous rank (left
// neighbor), and a private generator seeded independently.
type PRSS struct {
	rank  party.Rank
	right *frand.RNG // shared with rank.Next()
	left  *frand.RNG // shared with rank.Prev()
	priv  *frand.RNG // local only, never shared
	pub   *frand.RNG // globally shared across all three parties
}

// New builds a PRSS for the given rank. keyDir, if non-empty, is expected to
// hold shared_key_<a>_<b>.bin for every unordered pair and shared_key_global.bin,
// following mpc/random.go's InitializePRG convention. If keyDir is empty the
// seeds fall back to a small deterministic scheme suitable only for tests.
func New(rank party.Rank, keyDir string) (*PRSS, error) {
	if !rank.Valid() {
		return nil, fmt.Errorf("prss: invalid rank %v", rank)
	}

	readOrFallback := func(name string, fallback byte) []byte {
		seed := make([]byte, chacha.KeySize)
		if keyDir == "" {
			log.Lvl2("prss: no key directory set, falling back to a deterministic seed (not secure)")
			seed[0] = fallback
			return seed
		}
		key, err := os.ReadFile(filepath.Join(keyDir, name))
		if err != nil {
			panic(err)
		}
		copy(seed, key)
		return seed
	}

	a, b := sortRanks(rank, rank.Next())
	rightSeed := readOrFallback(fmt.Sprintf("shared_key_%d_%d.bin", a, b), byte(a)+byte(b))

	a, b = sortRanks(rank, rank.Prev())
	leftSeed := readOrFallback(fmt.Sprintf("shared_key_%d_%d.bin", a, b), byte(a)+byte(b))

	pubSeed := readOrFallback("shared_key_global.bin", 0xAA)

	privSeed := make([]byte, chacha.KeySize)
	frand.Read(privSeed)

	return &PRSS{
		rank:  rank,
		right: frand.NewCustom(rightSeed, bufferSize, 20),
		left:  frand.NewCustom(leftSeed, bufferSize, 20),
		priv:  frand.NewCustom(privSeed, bufferSize, 20),
		pub:   frand.NewCustom(pubSeed, bufferSize, 20),
	}, nil
}

func sortRanks(a, b party.Rank) (party.Rank, party.Rank) {
	if a < b {
		return a, b
	}
	return b, a
}
