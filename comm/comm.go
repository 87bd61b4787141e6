// Package comm defines the wire-level primitives this core consumes (spec
// section 6) and ships one concrete in-process transport so the conversion
// kernels are testable without real sockets. The interface intentionally
// covers nothing beyond what spec section 1 claims from "the wire-level
// communicator": rotate, rotate_right, broadcast, point-to-point
// send/recv, and manual comm-stat accounting.
package comm

import (
	"github.com/hhcho/sharecore/party"
	"github.com/hhcho/sharecore/ring"
)

// Communicator is the transport surface every reshare/gate/PPA kernel is
// written against. A real deployment would back it with TCP connections
// the way the teacher's mpc/netconnect.go + mpc/sendrecieve.go do; this
// core only ships the in-process MeshNetwork (mesh.go), adapted from that
// same structure, since a real transport is explicitly out of scope (spec
// section 1).
type Communicator interface {
	Rank() party.Rank

	// Rotate sends vec to Rank().Next() and returns what was received
	// from Rank().Prev(), tagged by tag for message-site disambiguation
	// (spec section 5, "each message site carries a unique tag").
	Rotate(vec []ring.Word, tag string) ([]ring.Word, error)

	// RotateRight is Rotate's mirror image: send to Prev(), receive from
	// Next().
	RotateRight(vec []ring.Word, tag string) ([]ring.Word, error)

	// Broadcast ships vec from root to both other parties. Callers at
	// root get vec back unchanged; callers elsewhere get root's vec.
	Broadcast(vec []ring.Word, root party.Rank, tag string) ([]ring.Word, error)

	// SendAsync is a non-blocking point-to-point send; the matching Recv
	// on the peer blocks until the message with the same tag arrives.
	SendAsync(dest party.Rank, vec []ring.Word, tag string) error
	Recv(src party.Rank, n int, tag string) ([]ring.Word, error)

	// AddCommStatsManually lets a kernel correct the logical round/byte
	// counters when PRSS absorbed a transfer that never hit the wire
	// (spec section 5, "negative corrections").
	AddCommStatsManually(roundsDelta, bytesDelta int)

	// Stats returns the running (rounds, bytes) counters for diagnostics
	// and the round-count tests of spec section 8.
	Stats() (rounds int, bytes int)
}
