//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package boolean implements the boolean secret-sharing engine over
// 𝔽₂: XOR-sharing, boolean Beaver triples, and the interactive AND
// (and derived OR) protocol. Structurally identical to package ring
// with addition replaced by XOR and multiplication by AND, per spec
// §4.4; the AND combine rule is grounded on the cross-term AND
// protocol of the GMW reference implementation (gmw.go in the
// retrieved pack), which assigns the correction term to a single
// distinguished party exactly as ring.Multiply does.
package boolean

import (
	"errors"

	"github.com/markkurossi/beavernet/party"
	"github.com/markkurossi/beavernet/prng"
	"github.com/markkurossi/beavernet/tpcerr"
)

// Share is one party's half of an XOR share of a single bit, stored
// in the low bit of a 32-bit word. The invariant is that the high 31
// bits are always zero.
type Share struct {
	V uint32
}

// bit returns the 0/1 value of the share's low bit.
func (s Share) bit() uint32 {
	return s.V & 1
}

// Triple is a boolean Beaver triple (a, b, c) with c = a AND b.
type Triple struct {
	A, B, C Share
	Seq     uint64
}

// Engine is the boolean share engine.
type Engine struct{}

// NewEngine creates a boolean share Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// NewShare wraps a clear bit as a canonicalized Share.
func (e *Engine) NewShare(bit bool) Share {
	if bit {
		return Share{V: 1}
	}
	return Share{V: 0}
}

// Xor is the local, no-network-round XOR of two shares.
func (e *Engine) Xor(a, b Share) Share {
	return Share{V: (a.bit() ^ b.bit())}
}

// Not applies the constant-1 XOR only on party 0's share, so that
// the two shares of the flipped bit still XOR to the true
// complement: only one party may touch the shared constant, or the
// parties would cancel each other's flip.
func (e *Engine) Not(partyID int, x Share) Share {
	if partyID == 0 {
		return e.Xor(x, e.NewShare(true))
	}
	return x
}

// Split draws s0 uniformly from {0,1} and sets s1 = v XOR s0.
func (e *Engine) Split(src prng.Source, v bool) (s0, s1 Share, err error) {
	r, err := src.Bit()
	if err != nil {
		return Share{}, Share{}, err
	}
	s0 = e.NewShare(r)
	s1 = e.Xor(e.NewShare(v), s0)
	return s0, s1, nil
}

// Reconstruct exchanges own with the peer and returns own XOR peer.
func (e *Engine) Reconstruct(p *party.Party, own Share) (bool, error) {
	var peer uint32
	if err := p.SendRecvScalar(own.V, &peer); err != nil {
		return false, err
	}
	return (own.bit()^(peer&1))&1 == 1, nil
}

// ReconstructVector is the element-wise vector form of Reconstruct
// using a single network round.
func (e *Engine) ReconstructVector(p *party.Party, own []Share) ([]bool, error) {
	ownWords := make([]uint32, len(own))
	for i, s := range own {
		ownWords[i] = s.V
	}
	peerWords := make([]uint32, len(own))
	if err := p.SendRecvVector(ownWords, peerWords); err != nil {
		return nil, err
	}
	out := make([]bool, len(own))
	for i := range out {
		out[i] = (ownWords[i]^peerWords[i])&1 == 1
	}
	return out, nil
}

// GenerateTriples is the dealer-side bulk generation of n boolean
// Beaver triples: for each, draw a, b uniformly from {0,1} and set
// c = a AND b.
func (e *Engine) GenerateTriples(src prng.Source, n int) ([]Triple, error) {
	if n <= 0 {
		return nil, tpcerr.New(tpcerr.InvalidParameter, "boolean.GenerateTriples", nil)
	}
	triples := make([]Triple, n)
	for i := 0; i < n; i++ {
		a, err := src.Bit()
		if err != nil {
			return nil, err
		}
		b, err := src.Bit()
		if err != nil {
			return nil, err
		}
		triples[i] = Triple{
			A:   e.NewShare(a),
			B:   e.NewShare(b),
			C:   e.NewShare(a && b),
			Seq: uint64(i),
		}
	}
	return triples, nil
}

// ShareTriples splits each clear triple into a boolean triple share
// for party 0 and party 1, deriving c1 = c XOR c0 (spec §9, option
// (a)) rather than an independent fresh split.
func (e *Engine) ShareTriples(src prng.Source, triples []Triple) (shares0, shares1 []Triple, err error) {
	shares0 = make([]Triple, len(triples))
	shares1 = make([]Triple, len(triples))
	for i, t := range triples {
		a0, a1, err := e.Split(src, t.A.bit() == 1)
		if err != nil {
			return nil, nil, err
		}
		b0, b1, err := e.Split(src, t.B.bit() == 1)
		if err != nil {
			return nil, nil, err
		}
		c0bit, err := src.Bit()
		if err != nil {
			return nil, nil, err
		}
		c0 := e.NewShare(c0bit)
		c1 := e.Xor(t.C, c0)

		shares0[i] = Triple{A: a0, B: b0, C: c0, Seq: t.Seq}
		shares1[i] = Triple{A: a1, B: b1, C: c1, Seq: t.Seq}
	}
	return shares0, shares1, nil
}

// And performs one Beaver AND of x AND y using triple, consuming it.
// Each side locally computes (d, e) = (x XOR a, y XOR b), the
// parties reconstruct d and e in one round, and combine
// asymmetrically: party 0 alone XORs in the d AND e correction.
func (e *Engine) And(p *party.Party, triple Triple, x, y Share) (Share, error) {
	d := e.Xor(x, triple.A)
	ee := e.Xor(y, triple.B)

	own := [2]uint32{d.V, ee.V}
	peer, err := p.SendRecvArray2(own)
	if err != nil {
		return Share{}, err
	}
	dv := (d.bit() ^ (peer[0] & 1))
	ev := (ee.bit() ^ (peer[1] & 1))

	bit := triple.C.bit() ^ (dv & triple.B.bit()) ^ (ev & triple.A.bit())
	if p.ID() == 0 {
		bit ^= dv & ev
	}
	return Share{V: bit & 1}, nil
}

// Or computes x OR y as NOT(NOT(x) AND NOT(y)), consuming one
// triple. Per spec §4.4, only party 0 applies the pre- and
// post-flip; party 1 runs a plain And.
func (e *Engine) Or(p *party.Party, triple Triple, x, y Share) (Share, error) {
	nx := e.Not(p.ID(), x)
	ny := e.Not(p.ID(), y)
	z, err := e.And(p, triple, nx, ny)
	if err != nil {
		return Share{}, err
	}
	return e.Not(p.ID(), z), nil
}

// Xnor returns NOT(x XOR y), applying the constant-1 flip only on
// party 0's share.
func (e *Engine) Xnor(partyID int, x, y Share) Share {
	return e.Not(partyID, e.Xor(x, y))
}

// AndVector performs n ANDs in one network round of 2n masked
// differences.
func (e *Engine) AndVector(p *party.Party, triples []Triple, xs, ys []Share) ([]Share, error) {
	n := len(triples)
	if len(xs) != n || len(ys) != n {
		return nil, tpcerr.New(tpcerr.LengthMismatch, "boolean.AndVector", nil)
	}
	if n == 0 {
		return nil, nil
	}

	own := make([]uint32, 2*n)
	for i := 0; i < n; i++ {
		d := e.Xor(xs[i], triples[i].A)
		ee := e.Xor(ys[i], triples[i].B)
		own[2*i] = d.V
		own[2*i+1] = ee.V
	}

	peer := make([]uint32, 2*n)
	if err := p.SendRecvVector(own, peer); err != nil {
		return nil, err
	}

	out := make([]Share, n)
	for i := 0; i < n; i++ {
		dv := (own[2*i] ^ peer[2*i]) & 1
		ev := (own[2*i+1] ^ peer[2*i+1]) & 1
		t := triples[i]
		bit := t.C.bit() ^ (dv & t.B.bit()) ^ (ev & t.A.bit())
		if p.ID() == 0 {
			bit ^= dv & ev
		}
		out[i] = Share{V: bit & 1}
	}
	return out, nil
}

// Bag is a linear-consumption store of boolean Beaver triples; see
// ring.Bag for the grounding and rationale.
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
		return Triple{}, tpcerr.New(tpcerr.InvalidParameter, "boolean.Bag.Take",
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

// OrVector is the element-wise vector form of Or, composing the
// same per-party flip rule as Or.
func (e *Engine) OrVector(p *party.Party, triples []Triple, xs, ys []Share) ([]Share, error) {
	nxs := make([]Share, len(xs))
	nys := make([]Share, len(ys))
	for i := range xs {
		nxs[i] = e.Not(p.ID(), xs[i])
	}
	for i := range ys {
		nys[i] = e.Not(p.ID(), ys[i])
	}
	zs, err := e.AndVector(p, triples, nxs, nys)
	if err != nil {
		return nil, err
	}
	out := make([]Share, len(zs))
	for i := range zs {
		out[i] = e.Not(p.ID(), zs[i])
	}
	return out, nil
}
