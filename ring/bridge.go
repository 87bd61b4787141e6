package ring

import (
	mpc_core "github.com/hhcho/mpc-core"

	"github.com/hhcho/sharecore/errs"
)

// FromLElem2N bridges an external arithmetic-sharing value (as produced by
// the numeric kernels outside conversion, spec section 1) into this core's
// Word representation. mpc-core's LElem2N models a Z/2^N ring backed by a
// uint64, so the bridge only ever targets fields <=64; F128 arithmetic is
// native to this core and has no mpc-core counterpart to bridge to (see
// DESIGN.md).
func FromLElem2N(v mpc_core.LElem2N) Word {
	return FromUint64(uint64(v))
}

// ToLElem2N is the inverse of FromLElem2N, truncating w to f's width first.
func ToLElem2N(w Word, f Field) mpc_core.LElem2N {
	return mpc_core.LElem2N(w.MaskField(f).Uint64())
}

// FromLElem2NVec bridges a whole share vector, masking every element to f.
func FromLElem2NVec(v []mpc_core.LElem2N, f Field) ([]Word, error) {
	if f == F128 {
		return nil, errs.Precondition("LElem2N bridge: F128 has no 64-bit external counterpart")
	}
	out := make([]Word, len(v))
	for i := range v {
		out[i] = FromLElem2N(v[i]).MaskField(f)
	}
	return out, nil
}

// ToLElem2NVec is the inverse of FromLElem2NVec.
func ToLElem2NVec(v []Word, f Field) ([]mpc_core.LElem2N, error) {
	if f == F128 {
		return nil, errs.Precondition("LElem2N bridge: F128 has no 64-bit external counterpart")
	}
	out := make([]mpc_core.LElem2N, len(v))
	for i := range v {
		out[i] = ToLElem2N(v[i], f)
	}
	return out, nil
}
