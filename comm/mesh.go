package comm

import (
	"fmt"
	"sync"

	"github.com/hhcho/sharecore/party"
	"github.com/hhcho/sharecore/ring"
)

const wordBytes = 16

// Mesh is the shared fabric three MeshNetwork endpoints talk over: one
// buffered channel per (sender, receiver, tag) triple, created on demand.
// This plays the role of the teacher's per-connection TCP sockets
// (mpc/netconnect.go) and per-request channel table
// (_examples/anhntbk08-smpc/compute/compute.go's ChannelMap), collapsed
// into a single in-process structure since there are only three fixed
// parties here.
type Mesh struct {
	mu    sync.Mutex
	chans map[string]chan []ring.Word
}

// NewMesh allocates a fresh fabric for one run of the protocol.
func NewMesh() *Mesh {
	return &Mesh{chans: make(map[string]chan []ring.Word)}
}

func chanKey(from, to party.Rank, tag string) string {
	return fmt.Sprintf("%d->%d:%s", from, to, tag)
}

func (m *Mesh) channel(key string) chan []ring.Word {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.chans[key]
	if !ok {
		ch = make(chan []ring.Word, 8)
		m.chans[key] = ch
	}
	return ch
}

// MeshNetwork is one party's endpoint into a Mesh. It implements
// Communicator.
type MeshNetwork struct {
	mesh *Mesh
	rank party.Rank

	mu     sync.Mutex
	rounds int
	bytes  int
}

// NewMeshParties builds three endpoints onto a fresh Mesh, indexed by rank.
func NewMeshParties() [party.NumParties]*MeshNetwork {
	mesh := NewMesh()
	var out [party.NumParties]*MeshNetwork
	for i := 0; i < party.NumParties; i++ {
		out[i] = &MeshNetwork{mesh: mesh, rank: party.Rank(i)}
	}
	return out
}

func (n *MeshNetwork) Rank() party.Rank { return n.rank }

func (n *MeshNetwork) track(bytes int) {
	n.mu.Lock()
	n.bytes += bytes
	n.mu.Unlock()
}

func (n *MeshNetwork) send(to party.Rank, vec []ring.Word, tag string) error {
	cp := make([]ring.Word, len(vec))
	copy(cp, vec)
	n.mesh.channel(chanKey(n.rank, to, tag)) <- cp
	n.track(len(vec) * wordBytes)
	return nil
}

func (n *MeshNetwork) recv(from party.Rank, nElem int, tag string) ([]ring.Word, error) {
	vec := <-n.mesh.channel(chanKey(from, n.rank, tag))
	n.track(len(vec) * wordBytes)
	return vec, nil
}

func (n *MeshNetwork) bumpRound() {
	n.mu.Lock()
	n.rounds++
	n.mu.Unlock()
}

func (n *MeshNetwork) Rotate(vec []ring.Word, tag string) ([]ring.Word, error) {
	if err := n.send(n.rank.Next(), vec, tag); err != nil {
		return nil, err
	}
	got, err := n.recv(n.rank.Prev(), len(vec), tag)
	if err != nil {
		return nil, err
	}
	n.bumpRound()
	return got, nil
}

func (n *MeshNetwork) RotateRight(vec []ring.Word, tag string) ([]ring.Word, error) {
	if err := n.send(n.rank.Prev(), vec, tag); err != nil {
		return nil, err
	}
	got, err := n.recv(n.rank.Next(), len(vec), tag)
	if err != nil {
		return nil, err
	}
	n.bumpRound()
	return got, nil
}

func (n *MeshNetwork) Broadcast(vec []ring.Word, root party.Rank, tag string) ([]ring.Word, error) {
	if n.rank == root {
		for other := party.Rank(0); other < party.NumParties; other++ {
			if other == root {
				continue
			}
			if err := n.send(other, vec, tag); err != nil {
				return nil, err
			}
		}
		n.bumpRound()
		return vec, nil
	}
	got, err := n.recv(root, len(vec), tag)
	if err != nil {
		return nil, err
	}
	n.bumpRound()
	return got, nil
}

func (n *MeshNetwork) SendAsync(dest party.Rank, vec []ring.Word, tag string) error {
	return n.send(dest, vec, tag)
}

func (n *MeshNetwork) Recv(src party.Rank, nElem int, tag string) ([]ring.Word, error) {
	return n.recv(src, nElem, tag)
}

func (n *MeshNetwork) AddCommStatsManually(roundsDelta, bytesDelta int) {
	n.mu.Lock()
	n.rounds += roundsDelta
	n.bytes += bytesDelta
	n.mu.Unlock()
}

func (n *MeshNetwork) Stats() (rounds int, bytes int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rounds, n.bytes
}
