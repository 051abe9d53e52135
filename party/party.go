//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package party implements the symmetric send_recv façade that hides
// the listener/connector asymmetry of the underlying transport from
// the arithmetic and boolean share engines.
package party

import (
	"github.com/markkurossi/beavernet/tpcerr"
	"github.com/markkurossi/beavernet/transport"
)

// Party is the directional façade for one of the two cooperating
// endpoints. Id 0 listens; id 1 connects. The façade is immutable in
// its id and role for its lifetime; Start/End may be cycled (Start
// after Start is a no-op; End after End is a no-op).
type Party struct {
	id      int
	host    string
	port    int
	t       *transport.Transport
	started bool
}

// New creates a Party for id (0 or 1). host is only meaningful for
// id 1, which dials host:port; id 0 listens on port on all
// interfaces.
func New(id int, host string, port int) (*Party, error) {
	if id != 0 && id != 1 {
		return nil, tpcerr.New(tpcerr.InvalidParameter, "party.New", nil)
	}
	return &Party{id: id, host: host, port: port}, nil
}

// NewWithTransport wraps an already-established transport (for
// example one half of a transport.Pipe) as a started Party. It is
// used by tests that exercise the façade without a real socket.
func NewWithTransport(id int, t *transport.Transport) (*Party, error) {
	if id != 0 && id != 1 {
		return nil, tpcerr.New(tpcerr.InvalidParameter, "party.NewWithTransport", nil)
	}
	t.ResetCounter()
	return &Party{id: id, t: t, started: true}, nil
}

// ID returns the party's id.
func (p *Party) ID() int {
	return p.id
}

// Start initializes the role-specific endpoint and resets the
// bytes-sent counter. Calling Start on an already-started Party is a
// no-op.
func (p *Party) Start() error {
	if p.started {
		return nil
	}
	var t *transport.Transport
	var err error
	if p.id == 0 {
		t, err = transport.Listen(p.port)
	} else {
		t, err = transport.Connect(p.host, p.port)
	}
	if err != nil {
		return err
	}
	t.ResetCounter()
	p.t = t
	p.started = true
	return nil
}

// End closes the transport. Calling End on an already-ended or
// never-started Party is a no-op.
func (p *Party) End() error {
	if !p.started {
		return nil
	}
	err := p.t.Close()
	p.started = false
	p.t = nil
	return err
}

// BytesSent returns the number of bytes sent since Start.
func (p *Party) BytesSent() uint64 {
	if p.t == nil {
		return 0
	}
	return p.t.BytesSent()
}

// SendRecvScalar exchanges a single 32-bit word with the peer. Party
// 0 sends own first, then receives into peerSlot; party 1 receives
// into peerSlot first, then sends own. Both orderings leave
// identical post-state.
func (p *Party) SendRecvScalar(own uint32, peerSlot *uint32) error {
	if p.id == 0 {
		if err := p.t.SendUint32(own); err != nil {
			return err
		}
		v, err := p.t.RecvUint32()
		if err != nil {
			return err
		}
		*peerSlot = v
		return nil
	}
	v, err := p.t.RecvUint32()
	if err != nil {
		return err
	}
	if err := p.t.SendUint32(own); err != nil {
		return err
	}
	*peerSlot = v
	return nil
}

// SendRecvVector exchanges a vector of 32-bit words with the peer.
// len(own) must equal len(peerSlot); no length prefix is placed on
// the wire, so the caller must size both slices identically out of
// band, per spec.
func (p *Party) SendRecvVector(own []uint32, peerSlot []uint32) error {
	if len(own) != len(peerSlot) {
		return tpcerr.New(tpcerr.InvalidParameter, "party.SendRecvVector", nil)
	}
	if p.id == 0 {
		if err := p.t.SendUint32Vector(own); err != nil {
			return err
		}
		return p.t.RecvUint32Vector(peerSlot)
	}
	if err := p.t.RecvUint32Vector(peerSlot); err != nil {
		return err
	}
	return p.t.SendUint32Vector(own)
}

// SendRecvArray2 exchanges a fixed two-word array, used by the
// arithmetic engine's single-multiplication round (the masked
// operands d, e).
func (p *Party) SendRecvArray2(own [2]uint32) (peer [2]uint32, err error) {
	err = p.SendRecvVector(own[:], peer[:])
	return peer, err
}

// SendRecvArray4 exchanges a fixed four-word array, used by the
// arithmetic engine's paired-multiplication round (the masked
// operands d0, e0, d1, e1 of two multiplications in one round).
func (p *Party) SendRecvArray4(own [4]uint32) (peer [4]uint32, err error) {
	err = p.SendRecvVector(own[:], peer[:])
	return peer, err
}
