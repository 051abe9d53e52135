//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package transport implements the blocking, ordered, fully-framed
// byte stream between the two endpoints of a secret-sharing session.
// One endpoint listens (party 0); the other connects (party 1).
package transport

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/markkurossi/beavernet/tpcerr"
)

// Transport is one endpoint's handle to the two-party TCP stream. It
// owns exactly one accepted or dialed connection and, if it is the
// listening side, the listening socket that produced it.
type Transport struct {
	conn      net.Conn
	listener  net.Listener
	bytesSent uint64
}

// Listen binds to all interfaces on port, enables address reuse,
// listens with the platform's default backlog, and blocks until a
// single peer connects. This is the party-0 role.
func Listen(port int) (*Transport, error) {
	l, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, tpcerr.New(tpcerr.TransportFailure, "Listen", err)
	}
	conn, err := l.Accept()
	if err != nil {
		l.Close()
		return nil, tpcerr.New(tpcerr.TransportFailure, "Listen.Accept", err)
	}
	return &Transport{
		conn:     conn,
		listener: l,
	}, nil
}

// Connect dials host:port once. This is the party-1 role.
func Connect(host string, port int) (*Transport, error) {
	conn, err := net.Dial("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return nil, tpcerr.New(tpcerr.TransportFailure, "Connect", err)
	}
	return &Transport{
		conn: conn,
	}, nil
}

// Pipe returns two in-process Transports connected by net.Pipe, for
// tests that want the exact blocking send/recv contract without a
// real socket.
func Pipe() (*Transport, *Transport) {
	a, b := net.Pipe()
	return &Transport{conn: a}, &Transport{conn: b}
}

// SendBytes writes all of buf, looping on short writes until the
// full length has been delivered to the kernel.
func (t *Transport) SendBytes(buf []byte) error {
	var off int
	for off < len(buf) {
		n, err := t.conn.Write(buf[off:])
		if err != nil {
			return tpcerr.New(tpcerr.TransportFailure, "SendBytes", err)
		}
		if n <= 0 {
			return tpcerr.New(tpcerr.TransportFailure, "SendBytes",
				fmt.Errorf("write returned %d", n))
		}
		off += n
	}
	t.bytesSent += uint64(len(buf))
	return nil
}

// RecvBytes reads exactly len(buf) bytes, looping on short reads.
func (t *Transport) RecvBytes(buf []byte) error {
	var off int
	for off < len(buf) {
		n, err := t.conn.Read(buf[off:])
		if err != nil {
			return tpcerr.New(tpcerr.TransportFailure, "RecvBytes", err)
		}
		if n <= 0 {
			return tpcerr.New(tpcerr.TransportFailure, "RecvBytes",
				fmt.Errorf("read returned %d", n))
		}
		off += n
	}
	return nil
}

// SendUint32 sends a single little-endian 32-bit word.
func (t *Transport) SendUint32(v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return t.SendBytes(b[:])
}

// RecvUint32 receives a single little-endian 32-bit word.
func (t *Transport) RecvUint32() (uint32, error) {
	var b [4]byte
	if err := t.RecvBytes(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// SendUint32Vector sends n little-endian 32-bit words with no
// length prefix; the caller must size the peer's receive slot
// identically out of band (spec §4.2).
func (t *Transport) SendUint32Vector(v []uint32) error {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], x)
	}
	return t.SendBytes(buf)
}

// RecvUint32Vector receives len(out) little-endian 32-bit words
// into out.
func (t *Transport) RecvUint32Vector(out []uint32) error {
	buf := make([]byte, 4*len(out))
	if err := t.RecvBytes(buf); err != nil {
		return err
	}
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(buf[4*i:])
	}
	return nil
}

// SendBlob sends a length-prefixed byte blob. Unlike SendBytes, the
// peer does not need to know the length out of band: RecvBlob reads
// the length prefix itself and then receives that many bytes. The
// prefix is not checked against any expected size, so neither helper
// reports ProtocolDesync.
func (t *Transport) SendBlob(data []byte) error {
	if err := t.SendUint32(uint32(len(data))); err != nil {
		return err
	}
	return t.SendBytes(data)
}

// RecvBlob receives a length-prefixed byte blob sent by SendBlob.
func (t *Transport) RecvBlob() ([]byte, error) {
	n, err := t.RecvUint32()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if err := t.RecvBytes(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// BytesSent returns the number of bytes sent since construction or
// the last ResetCounter call.
func (t *Transport) BytesSent() uint64 {
	return t.bytesSent
}

// ResetCounter zeroes the bytes-sent counter.
func (t *Transport) ResetCounter() {
	t.bytesSent = 0
}

// Close releases the connection and, for the listening side, the
// listening socket. Close is idempotent.
func (t *Transport) Close() error {
	var err error
	if t.conn != nil {
		err = t.conn.Close()
		t.conn = nil
	}
	if t.listener != nil {
		if lerr := t.listener.Close(); lerr != nil && err == nil {
			err = lerr
		}
		t.listener = nil
	}
	if err != nil {
		return tpcerr.New(tpcerr.TransportFailure, "Close", err)
	}
	return nil
}
