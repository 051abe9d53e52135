//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package ring implements the additive secret-sharing engine over
// ℤ/2ᵏ, 2 ≤ k ≤ 32, including Beaver-triple generation and the
// interactive Beaver multiplication protocol. It generalizes the
// P-256-field SPDZ engine of the reference codebase
// (crypto/spdz/spdz.go) from a fixed prime field to a parameterized
// power-of-two ring.
package ring

import (
	"errors"

	"github.com/markkurossi/beavernet/party"
	"github.com/markkurossi/beavernet/prng"
	"github.com/markkurossi/beavernet/tpcerr"
)

// Share is one party's half of an additively shared k-bit value,
// always canonicalized to the engine's low k bits.
type Share struct {
	V uint32
}

// Triple is a Beaver triple (a, b, c) with c = a*b mod 2^k. A triple
// is consumed exactly once by Multiply; callers are responsible for
// not reusing one (Engine does not track consumption across calls,
// mirroring the reference codebase's safeMul index-advance discipline
// but left to the caller here since ring has no notion of a session).
type Triple struct {
	A, B, C Share
	Seq     uint64
}

// Engine is the arithmetic share engine for a fixed bit width k.
type Engine struct {
	k    uint
	mask uint32
}

// NewEngine creates an Engine for ring ℤ/2ᵏ. k must satisfy
// 2 <= k <= 32.
func NewEngine(k uint) (*Engine, error) {
	if k < 2 || k > 32 {
		return nil, tpcerr.New(tpcerr.InvalidParameter, "ring.NewEngine", nil)
	}
	var mask uint32
	if k == 32 {
		mask = 0xFFFFFFFF
	} else {
		mask = (uint32(1) << k) - 1
	}
	return &Engine{k: k, mask: mask}, nil
}

// K returns the engine's bit width.
func (e *Engine) K() uint {
	return e.k
}

// Mask returns 2^k - 1.
func (e *Engine) Mask() uint32 {
	return e.mask
}

func (e *Engine) canon(v uint32) uint32 {
	return v & e.mask
}

// NewShare wraps v as a canonicalized Share.
func (e *Engine) NewShare(v uint32) Share {
	return Share{V: e.canon(v)}
}

// Add returns a + b mod 2^k, a local operation requiring no network
// round (generalizes AddShare in the reference codebase).
func (e *Engine) Add(a, b Share) Share {
	return e.NewShare(a.V + b.V)
}

// Sub returns a - b mod 2^k, a local operation requiring no network
// round (generalizes SubShare in the reference codebase).
func (e *Engine) Sub(a, b Share) Share {
	return e.NewShare(a.V - b.V)
}

// Split draws s0 uniformly from [0, 2^k) and sets s1 = (v - s0) mod
// 2^k, so that s0 + s1 = v mod 2^k. Uniformity of s0 hides v in the
// semi-honest model.
func (e *Engine) Split(src prng.Source, v uint32) (s0, s1 Share, err error) {
	r, err := prng.MaskedUint32(src, e.k)
	if err != nil {
		return Share{}, Share{}, err
	}
	s0 = e.NewShare(r)
	s1 = e.Sub(e.NewShare(v), s0)
	return s0, s1, nil
}

// Reconstruct exchanges own with the peer over p and returns
// (own + peer) mod 2^k on both sides.
func (e *Engine) Reconstruct(p *party.Party, own Share) (uint32, error) {
	var peer uint32
	if err := p.SendRecvScalar(own.V, &peer); err != nil {
		return 0, err
	}
	return e.canon(own.V + peer), nil
}

// ReconstructVector is the element-wise vector form of Reconstruct,
// using a single network round for the whole buffer.
func (e *Engine) ReconstructVector(p *party.Party, own []Share) ([]uint32, error) {
	ownWords := make([]uint32, len(own))
	for i, s := range own {
		ownWords[i] = s.V
	}
	peerWords := make([]uint32, len(own))
	if err := p.SendRecvVector(ownWords, peerWords); err != nil {
		return nil, err
	}
	out := make([]uint32, len(own))
	for i := range out {
		out[i] = e.canon(ownWords[i] + peerWords[i])
	}
	return out, nil
}

// GenerateTriples is the dealer-side bulk generation of n Beaver
// triples: for each, draw a, b uniformly from [0, 2^k) and set
// c = a*b mod 2^k.
func (e *Engine) GenerateTriples(src prng.Source, n int) ([]Triple, error) {
	if n <= 0 {
		return nil, tpcerr.New(tpcerr.InvalidParameter, "ring.GenerateTriples", nil)
	}
	triples := make([]Triple, n)
	for i := 0; i < n; i++ {
		a, err := prng.MaskedUint32(src, e.k)
		if err != nil {
			return nil, err
		}
		b, err := prng.MaskedUint32(src, e.k)
		if err != nil {
			return nil, err
		}
		c := e.canon(a * b)
		triples[i] = Triple{
			A:   e.NewShare(a),
			B:   e.NewShare(b),
			C:   e.NewShare(c),
			Seq: uint64(i),
		}
	}
	return triples, nil
}

// ShareTriples splits each clear triple into an additive triple
// share for party 0 and party 1. Unlike a derivation that
// independently re-randomizes c, c1 is derived as (c - c0) mod 2^k
// so that c0 + c1 = a*b always holds; see spec §9, resolved as
// option (a).
func (e *Engine) ShareTriples(src prng.Source, triples []Triple) (shares0, shares1 []Triple, err error) {
	shares0 = make([]Triple, len(triples))
	shares1 = make([]Triple, len(triples))
	for i, t := range triples {
		a0, a1, err := e.Split(src, t.A.V)
		if err != nil {
			return nil, nil, err
		}
		b0, b1, err := e.Split(src, t.B.V)
		if err != nil {
			return nil, nil, err
		}
		c0, err := prng.MaskedUint32(src, e.k)
		if err != nil {
			return nil, nil, err
		}
		c0Share := e.NewShare(c0)
		c1Share := e.Sub(t.C, c0Share)

		shares0[i] = Triple{A: a0, B: b0, C: c0Share, Seq: t.Seq}
		shares1[i] = Triple{A: a1, B: b1, C: c1Share, Seq: t.Seq}
	}
	return shares0, shares1, nil
}

// Multiply performs one Beaver multiplication of x*y using triple,
// consuming it. Each side locally computes (d, e) = (x-a, y-b), the
// parties reconstruct d and e in one round, and combine
// asymmetrically: party 0 alone adds the d*e correction so that
// z0 + z1 = x*y mod 2^k exactly once. This mirrors MulShare's combine
// rule in the reference codebase (there: role == Sender gets the
// dv*ev term).
func (e *Engine) Multiply(p *party.Party, triple Triple, x, y Share) (Share, error) {
	d := e.Sub(x, triple.A)
	ee := e.Sub(y, triple.B)

	own := [2]uint32{d.V, ee.V}
	peer, err := p.SendRecvArray2(own)
	if err != nil {
		return Share{}, err
	}
	dv := e.canon(d.V + peer[0])
	ev := e.canon(ee.V + peer[1])

	term := triple.C.V + dv*triple.B.V + ev*triple.A.V
	if p.ID() == 0 {
		term += dv * ev
	}
	return e.NewShare(term), nil
}

// MultiplyPair performs two independent multiplications sharing a
// single network round of the four masked operands.
func (e *Engine) MultiplyPair(p *party.Party, t0, t1 Triple,
	x0, y0, x1, y1 Share) (z0, z1 Share, err error) {

	d0 := e.Sub(x0, t0.A)
	e0 := e.Sub(y0, t0.B)
	d1 := e.Sub(x1, t1.A)
	e1 := e.Sub(y1, t1.B)

	own := [4]uint32{d0.V, e0.V, d1.V, e1.V}
	peer, err := p.SendRecvArray4(own)
	if err != nil {
		return Share{}, Share{}, err
	}

	dv0 := e.canon(d0.V + peer[0])
	ev0 := e.canon(e0.V + peer[1])
	dv1 := e.canon(d1.V + peer[2])
	ev1 := e.canon(e1.V + peer[3])

	term0 := t0.C.V + dv0*t0.B.V + ev0*t0.A.V
	term1 := t1.C.V + dv1*t1.B.V + ev1*t1.A.V
	if p.ID() == 0 {
		term0 += dv0 * ev0
		term1 += dv1 * ev1
	}
	return e.NewShare(term0), e.NewShare(term1), nil
}

// MultiplyVector performs n multiplications in one network round of
// 2n masked differences. len(triples), len(xs), and len(ys) must all
// match.
func (e *Engine) MultiplyVector(p *party.Party, triples []Triple, xs, ys []Share) ([]Share, error) {
	n := len(triples)
	if len(xs) != n || len(ys) != n {
		return nil, tpcerr.New(tpcerr.LengthMismatch, "ring.MultiplyVector", nil)
	}
	if n == 0 {
		return nil, nil
	}

	as := make([]Share, n)
	bs := make([]Share, n)
	for i, t := range triples {
		as[i] = t.A
		bs[i] = t.B
	}
	ds, err := e.SubShares(xs, as)
	if err != nil {
		return nil, err
	}
	es, err := e.SubShares(ys, bs)
	if err != nil {
		return nil, err
	}

	own := make([]uint32, 2*n)
	for i := 0; i < n; i++ {
		own[2*i] = ds[i].V
		own[2*i+1] = es[i].V
	}

	peer := make([]uint32, 2*n)
	if err := p.SendRecvVector(own, peer); err != nil {
		return nil, err
	}

	out := make([]Share, n)
	for i := 0; i < n; i++ {
		dv := e.canon(own[2*i] + peer[2*i])
		ev := e.canon(own[2*i+1] + peer[2*i+1])
		t := triples[i]
		term := t.C.V + dv*t.B.V + ev*t.A.V
		if p.ID() == 0 {
			term += dv * ev
		}
		out[i] = e.NewShare(term)
	}
	return out, nil
}

// Bag is a linear-consumption store of Beaver triples: each Take
// hands out the next triple and advances past it, so the same triple
// can never be handed out twice from one Bag. This mirrors the
// tripleIndex-advance discipline of safeMul in the reference
// codebase (crypto/spdz/spdz.go), generalized from one shared index
// variable threaded through call sites to an owned cursor.
type Bag struct {
	triples []Triple
	next    int
}

// NewBag wraps triples as a Bag, consumed front to back.
func NewBag(triples []Triple) *Bag {
	return &Bag{triples: triples}
}

// Take returns the next unconsumed triple, or InvalidParameter if
// the bag is exhausted.
func (b *Bag) Take() (Triple, error) {
	if b.next >= len(b.triples) {
		return Triple{}, tpcerr.New(tpcerr.InvalidParameter, "ring.Bag.Take",
			errors.New("no triples remaining"))
	}
	t := b.triples[b.next]
	b.next++
	return t, nil
}

// Remaining returns the number of triples not yet taken.
func (b *Bag) Remaining() int {
	return len(b.triples) - b.next
}

// AddShares is the element-wise, no-network-round vector form of Add.
// len(a) and len(b) must match.
func (e *Engine) AddShares(a, b []Share) ([]Share, error) {
	if len(a) != len(b) {
		return nil, tpcerr.New(tpcerr.LengthMismatch, "ring.AddShares", nil)
	}
	out := make([]Share, len(a))
	for i := range a {
		out[i] = e.Add(a[i], b[i])
	}
	return out, nil
}

// SubShares is the element-wise, no-network-round vector form of Sub.
// len(a) and len(b) must match.
func (e *Engine) SubShares(a, b []Share) ([]Share, error) {
	if len(a) != len(b) {
		return nil, tpcerr.New(tpcerr.LengthMismatch, "ring.SubShares", nil)
	}
	out := make([]Share, len(a))
	for i := range a {
		out[i] = e.Sub(a[i], b[i])
	}
	return out, nil
}

// AffineShare computes a*x + b on a single party's share of x, with no
// network round: a and b are public constants, and b must be added by
// exactly one of the two parties or a reconstruction would yield
// a*X + 2b instead of a*X + b. partyID selects that one distinguished
// party, the same asymmetric-correction discipline Multiply uses for
// the d*e cross term. Generalizes the way the reference codebase
// chains SubShare calls to build masked differences before invoking
// MulShare.
func (e *Engine) AffineShare(partyID int, a uint32, x Share, b uint32) Share {
	v := a * x.V
	if partyID == 0 {
		v += b
	}
	return e.NewShare(v)
}
