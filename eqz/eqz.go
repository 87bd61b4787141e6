// Package eqz implements equality-to-zero over arithmetic RSS tensors (spec
// section 4.3): reveal a masked value, then collapse a bit-vector down to
// a single indicator bit with a k-ary AND tree.
package eqz

import (
	"fmt"

	"github.com/hhcho/sharecore/comm"
	"github.com/hhcho/sharecore/errs"
	"github.com/hhcho/sharecore/gate"
	"github.com/hhcho/sharecore/party"
	"github.com/hhcho/sharecore/prss"
	"github.com/hhcho/sharecore/reshare"
	"github.com/hhcho/sharecore/ring"
	"github.com/hhcho/sharecore/share"
)

// dealMask has the rotating helper sample a plaintext random value r and
// distribute it as both an arithmetic and a boolean RSS sharing of the
// same bit pattern (spec section 4.3 step 1: "splits it both
// arithmetically and bitwise to the other two parties via PRSS -- one
// slot prearranged, one sent"). The helper's two neighbors each already
// share a PRSS generator with the helper, so one of the three RSS slots
// is free at each of them; the helper's own residual slot, and the slot
// its non-adjacent-generator neighbor is missing, are the two values that
// actually cross the wire.
func dealMask(helper party.Rank, n, bits int, p *prss.PRSS, c comm.Communicator, tag string) (*share.ATensor, *share.BTensor, error) {
	self := c.Rank()
	// a is drawn from the generator this party shares with Next(self), b
	// from the one shared with Prev(self) -- the same pairing FillPair
	// always returns.
	a, b := p.FillPair(n, prss.Both)
	f, err := ring.FieldFor(bits)
	if err != nil {
		return nil, nil, err
	}

	switch self {
	case helper:
		r := p.FillPrivate(n)
		hArith := make([]ring.Word, n)
		hBool := make([]ring.Word, n)
		for i := 0; i < n; i++ {
			hArith[i] = r[i].Sub(a[i]).Sub(b[i]).Mask(bits)
			hBool[i] = r[i].Xor(a[i]).Xor(b[i]).Mask(bits)
		}
		packed := append(append([]ring.Word{}, hArith...), hBool...)
		if err := c.SendAsync(helper.Prev(), packed, tag+".toPrev"); err != nil {
			return nil, nil, errs.Transport(err, "eqz: deal send to prev failed")
		}
		if err := c.SendAsync(helper.Next(), b, tag+".toNext"); err != nil {
			return nil, nil, errs.Transport(err, "eqz: deal send to next failed")
		}
		c.AddCommStatsManually(1, 0)
		at, err := share.NewATensor(share.Shape{n}, f, hArith, a)
		if err != nil {
			return nil, nil, err
		}
		bt, err := share.NewRSS(share.Shape{n}, bits, hBool, a)
		if err != nil {
			return nil, nil, err
		}
		return at, bt, nil

	case helper.Next():
		// This party's own component r_{h+1} comes off the generator it
		// shares with the helper -- its left neighbor -- which is the
		// second half of the pair. The component above it, r_{h+2}, is
		// the one the helper had to put on the wire.
		recv, err := c.Recv(helper, n, tag+".toNext")
		if err != nil {
			return nil, nil, errs.Transport(err, "eqz: deal recv at next failed")
		}
		c.AddCommStatsManually(1, 0)
		at, err := share.NewATensor(share.Shape{n}, f, b, recv)
		if err != nil {
			return nil, nil, err
		}
		bt, err := share.NewRSS(share.Shape{n}, bits, b, recv)
		if err != nil {
			return nil, nil, err
		}
		return at, bt, nil

	case helper.Prev():
		// Own component r_{h+2} is shared with the *next* rank (the
		// helper), i.e. the first half of the pair; the helper's residual
		// component r_h arrives packed over the wire.
		recv, err := c.Recv(helper, 2*n, tag+".toPrev")
		if err != nil {
			return nil, nil, errs.Transport(err, "eqz: deal recv at prev failed")
		}
		c.AddCommStatsManually(1, 0)
		hArith, hBool := recv[:n], recv[n:]
		at, err := share.NewATensor(share.Shape{n}, f, a, hArith)
		if err != nil {
			return nil, nil, err
		}
		bt, err := share.NewRSS(share.Shape{n}, bits, a, hBool)
		if err != nil {
			return nil, nil, err
		}
		return at, bt, nil
	}
	errs.Invariant("eqz: rank %v is none of helper/next/prev", self)
	return nil, nil, nil
}

// karyAndTree repeatedly splits the live bit-width in half and ANDs the
// halves together until one bit remains (spec section 4.3 step 5). Each
// level is one RSS-AND followed by a reshare, i.e. one round.
func karyAndTree(in *share.BTensor, p *prss.PRSS, c comm.Communicator, tag string) (*share.BTensor, error) {
	cur := in
	w := cur.NBits
	level := 0
	for w > 1 {
		half := w / 2
		n := cur.Elements()
		lo0 := make([]ring.Word, n)
		hi0 := make([]ring.Word, n)
		lo1 := make([]ring.Word, n)
		hi1 := make([]ring.Word, n)
		for i := 0; i < n; i++ {
			lo0[i] = cur.X0[i].Mask(half)
			hi0[i] = cur.X0[i].Shr(half).Mask(half)
			lo1[i] = cur.X1[i].Mask(half)
			hi1[i] = cur.X1[i].Shr(half).Mask(half)
		}
		loRSS, err := share.NewRSS(cur.Shape, half, lo0, lo1)
		if err != nil {
			return nil, err
		}
		hiRSS, err := share.NewRSS(cur.Shape, half, hi0, hi1)
		if err != nil {
			return nil, err
		}
		ass, err := gate.AndRSSToASS(loRSS, hiRSS, p)
		if err != nil {
			return nil, err
		}
		cur, err = reshare.ASSToRSS(ass, p, c, fmt.Sprintf("%s.level%d", tag, level))
		if err != nil {
			return nil, err
		}
		w = half
		level++
	}
	return cur, nil
}

// Eqz computes a boolean RSS indicator (bit-width 1) of x ≡ 0, rotating
// the helper/pivot rank via a public PRSS draw so load is balanced across
// repeated calls (spec section 4.3; see the eqz entry in DESIGN.md).
func Eqz(x *share.ATensor, p *prss.PRSS, c comm.Communicator, tag string) (*share.BTensor, error) {
	n := x.Shape.Elements()
	bits := x.Field.Bits()
	helper := party.Pivot(p.FillPublic(1)[0].Uint64())

	mArith, mBool, err := dealMask(helper, n, bits, p, c, tag+".mask")
	if err != nil {
		return nil, err
	}

	// y = x + r: RSS arithmetic addition is fully local over both slots.
	yLo := make([]ring.Word, n)
	yHi := make([]ring.Word, n)
	for i := 0; i < n; i++ {
		yLo[i] = x.Lo[i].Add(mArith.Lo[i]).Mask(bits)
		yHi[i] = x.Hi[i].Add(mArith.Hi[i]).Mask(bits)
	}

	// Reveal c = x+r to the reader (the helper's successor) ONLY. The
	// helper knows r in plaintext and must never see c. The reader already
	// holds y_{h+1} and y_{h+2}; the one missing component y_h is held by
	// the helper's predecessor as its second slot.
	reader := helper.Next()
	var cVal []ring.Word
	switch c.Rank() {
	case helper.Prev():
		if err := c.SendAsync(reader, yHi, tag+".reveal"); err != nil {
			return nil, errs.Transport(err, "eqz: reveal send failed")
		}
		c.AddCommStatsManually(1, 0)
	case reader:
		yh, err := c.Recv(helper.Prev(), n, tag+".reveal")
		if err != nil {
			return nil, errs.Transport(err, "eqz: reveal recv failed")
		}
		c.AddCommStatsManually(1, 0)
		cVal = make([]ring.Word, n)
		for i := 0; i < n; i++ {
			cVal[i] = yh[i].Add(yLo[i]).Add(yHi[i]).Mask(bits)
		}
	case helper:
		c.AddCommStatsManually(1, 0)
	}

	// Fold ~c into the boolean sharing of r. ~(c^r) = ~c ^ r, all-ones iff
	// x == 0. The reader rewrites the component it shares with the
	// helper's predecessor (the one component the helper never holds) and
	// re-randomizes with a fresh mask r_z drawn from the generator it
	// shares with the helper, so the rewritten component reveals nothing
	// about c to its other holder. r_z cancels out of the total because
	// the reader and the helper both fold it into their common component.
	rzCtrl := prss.None
	switch c.Rank() {
	case reader:
		rzCtrl = prss.Second
	case helper:
		rzCtrl = prss.First
	}
	rzFirst, rzSecond := p.FillPair(n, rzCtrl)

	out0 := append([]ring.Word(nil), mBool.X0...)
	out1 := append([]ring.Word(nil), mBool.X1...)
	switch c.Rank() {
	case reader:
		for i := 0; i < n; i++ {
			out0[i] = out0[i].Xor(rzSecond[i]).Mask(bits)
			out1[i] = out1[i].Xor(cVal[i].Not()).Xor(rzSecond[i]).Mask(bits)
		}
		if err := c.SendAsync(helper.Prev(), out1, tag+".fold"); err != nil {
			return nil, errs.Transport(err, "eqz: fold send failed")
		}
		c.AddCommStatsManually(1, 0)
	case helper:
		for i := 0; i < n; i++ {
			out1[i] = out1[i].Xor(rzFirst[i]).Mask(bits)
		}
		c.AddCommStatsManually(1, 0)
	case helper.Prev():
		folded, err := c.Recv(reader, n, tag+".fold")
		if err != nil {
			return nil, errs.Transport(err, "eqz: fold recv failed")
		}
		out0 = folded
		c.AddCommStatsManually(1, 0)
	}
	indicator, err := share.NewRSS(share.Shape{n}, bits, out0, out1)
	if err != nil {
		return nil, err
	}

	return karyAndTree(indicator, p, c, tag+".tree")
}
