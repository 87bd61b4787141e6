// Package sharecore ties the conversion core together: it loads the party
// configuration, sets up the pairwise randomness and the in-process
// transport, and exposes the conversion kernels behind one per-party
// runtime handle.
package sharecore

import (
	"runtime"

	mpc_core "github.com/hhcho/mpc-core"
	"go.dedis.ch/onet/v3/log"

	"github.com/hhcho/sharecore/comm"
	"github.com/hhcho/sharecore/config"
	"github.com/hhcho/sharecore/convert"
	"github.com/hhcho/sharecore/eqz"
	"github.com/hhcho/sharecore/party"
	"github.com/hhcho/sharecore/prss"
	"github.com/hhcho/sharecore/ring"
	"github.com/hhcho/sharecore/sched"
	"github.com/hhcho/sharecore/share"
)

// Runtime is one party's handle on the conversion core: its rank, its
// pairwise randomness, its communicator, and the ambient field every
// arithmetic tensor defaults to.
type Runtime struct {
	Rank    party.Rank
	PRSS    *prss.PRSS
	Comm    comm.Communicator
	Field   ring.Field
	Offline bool

	stopWatchdog func()
}

// InitTrio builds three runtimes wired over a shared in-process mesh from
// the configuration in dir. Real deployments substitute their own
// Communicator; everything else is identical either way.
func InitTrio(dir string) ([party.NumParties]*Runtime, error) {
	var out [party.NumParties]*Runtime
	cfg, err := config.Load(dir, -1)
	if err != nil {
		return out, err
	}
	return NewTrioFromConfig(cfg)
}

// NewTrioFromConfig is InitTrio on an already-loaded configuration.
func NewTrioFromConfig(cfg *config.Config) ([party.NumParties]*Runtime, error) {
	var out [party.NumParties]*Runtime
	f, err := cfg.Field()
	if err != nil {
		return out, err
	}
	if cfg.LocalNumThreads > 0 {
		runtime.GOMAXPROCS(cfg.LocalNumThreads)
	}

	nodes := comm.NewMeshParties()
	// One watchdog per process; rank 0's runtime owns it.
	stop := sched.Init(cfg.MemoryLimit)
	for i := 0; i < party.NumParties; i++ {
		p, err := prss.New(party.Rank(i), cfg.SharedKeysPath)
		if err != nil {
			return out, err
		}
		out[i] = &Runtime{
			Rank:    party.Rank(i),
			PRSS:    p,
			Comm:    nodes[i],
			Field:   f,
			Offline: cfg.OfflineRandom,
		}
	}
	out[0].stopWatchdog = stop
	if cfg.Debug {
		log.Lvl1("sharecore: trio initialized, field", f)
	}
	return out, nil
}

// Close releases the runtime's background resources.
func (r *Runtime) Close() {
	if r.stopWatchdog != nil {
		r.stopWatchdog()
	}
}

// A2B converts an arithmetic RSS tensor to boolean RSS.
func (r *Runtime) A2B(x *share.ATensor, tag string) (*share.BTensor, error) {
	return convert.A2B(x, r.PRSS, r.Comm, r.Offline, tag)
}

// B2A converts a boolean RSS tensor to arithmetic RSS over the runtime's
// field.
func (r *Runtime) B2A(b *share.BTensor, tag string) (*share.ATensor, error) {
	return convert.B2A(b, r.Field, r.PRSS, r.Comm, r.Offline, tag)
}

// MsbA2B extracts the sign bit of an arithmetic RSS tensor.
func (r *Runtime) MsbA2B(x *share.ATensor, tag string) (*share.BTensor, error) {
	return convert.MsbA2B(x, r.PRSS, r.Comm, r.Offline, tag)
}

// Eqz tests an arithmetic RSS tensor for equality with zero.
func (r *Runtime) Eqz(x *share.ATensor, tag string) (*share.BTensor, error) {
	return eqz.Eqz(x, r.PRSS, r.Comm, tag)
}

// EqualAA tests two arithmetic RSS tensors for equality.
func (r *Runtime) EqualAA(a, b *share.ATensor, tag string) (*share.BTensor, error) {
	return eqz.EqualAA(a, b, r.PRSS, r.Comm, tag)
}

// EqualAP tests an arithmetic RSS tensor against a public constant.
func (r *Runtime) EqualAP(x *share.ATensor, pub []ring.Word, tag string) (*share.BTensor, error) {
	return eqz.EqualAP(x, pub, r.PRSS, r.Comm, tag)
}

// ImportArithmetic accepts this party's RSS slot pair from an external
// mpc-core-based arithmetic caller (the numeric kernels outside conversion)
// as an ATensor over the runtime's field. Only fields up to 64 bits have an
// LElem2N counterpart.
func (r *Runtime) ImportArithmetic(shape share.Shape, lo, hi []mpc_core.LElem2N) (*share.ATensor, error) {
	loW, err := ring.FromLElem2NVec(lo, r.Field)
	if err != nil {
		return nil, err
	}
	hiW, err := ring.FromLElem2NVec(hi, r.Field)
	if err != nil {
		return nil, err
	}
	return share.NewATensor(shape, r.Field, loW, hiW)
}

// ExportArithmetic hands an ATensor's slot pair back to an external
// mpc-core-based caller, e.g. after a B2A conversion.
func (r *Runtime) ExportArithmetic(x *share.ATensor) (lo, hi []mpc_core.LElem2N, err error) {
	lo, err = ring.ToLElem2NVec(x.Lo, x.Field)
	if err != nil {
		return nil, nil, err
	}
	hi, err = ring.ToLElem2NVec(x.Hi, x.Field)
	if err != nil {
		return nil, nil, err
	}
	return lo, hi, nil
}
