//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package party

import (
	"sync"
	"testing"

	"github.com/markkurossi/beavernet/transport"
)

func newPipePair(t *testing.T) (*Party, *Party) {
	t.Helper()
	ta, tb := transport.Pipe()
	p0, err := NewWithTransport(0, ta)
	if err != nil {
		t.Fatalf("NewWithTransport(0) failed: %v", err)
	}
	p1, err := NewWithTransport(1, tb)
	if err != nil {
		t.Fatalf("NewWithTransport(1) failed: %v", err)
	}
	return p0, p1
}

func TestSendRecvScalarBothOrders(t *testing.T) {
	p0, p1 := newPipePair(t)

	var wg sync.WaitGroup
	wg.Add(1)

	var gotOn1 uint32
	var err1 error
	go func() {
		defer wg.Done()
		err1 = p1.SendRecvScalar(24, &gotOn1)
	}()

	var gotOn0 uint32
	err0 := p0.SendRecvScalar(42, &gotOn0)
	wg.Wait()

	if err0 != nil {
		t.Fatalf("party 0 SendRecvScalar failed: %v", err0)
	}
	if err1 != nil {
		t.Fatalf("party 1 SendRecvScalar failed: %v", err1)
	}
	if gotOn0 != 24 {
		t.Errorf("party 0 received %d, want 24", gotOn0)
	}
	if gotOn1 != 42 {
		t.Errorf("party 1 received %d, want 42", gotOn1)
	}
}

func TestSendRecvVectorLengthMismatch(t *testing.T) {
	p0, _ := newPipePair(t)

	own := []uint32{1, 2, 3}
	peer := make([]uint32, 2)
	if err := p0.SendRecvVector(own, peer); err == nil {
		t.Fatalf("expected error on length mismatch, got nil")
	}
}

func TestSendRecvArray2(t *testing.T) {
	p0, p1 := newPipePair(t)

	var wg sync.WaitGroup
	wg.Add(1)

	var got1 [2]uint32
	var err1 error
	go func() {
		defer wg.Done()
		got1, err1 = p1.SendRecvArray2([2]uint32{5, 6})
	}()

	got0, err0 := p0.SendRecvArray2([2]uint32{7, 8})
	wg.Wait()

	if err0 != nil || err1 != nil {
		t.Fatalf("SendRecvArray2 failed: %v / %v", err0, err1)
	}
	if got0 != [2]uint32{5, 6} {
		t.Errorf("party 0 got %v, want [5 6]", got0)
	}
	if got1 != [2]uint32{7, 8} {
		t.Errorf("party 1 got %v, want [7 8]", got1)
	}
}

func TestStartIsNoOpWhenAlreadyStarted(t *testing.T) {
	p, err := New(0, "", 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ta, tb := transport.Pipe()
	defer tb.Close()
	p.t = ta
	p.started = true

	if err := p.Start(); err != nil {
		t.Fatalf("Start on already-started party failed: %v", err)
	}
}

func TestNewInvalidID(t *testing.T) {
	if _, err := New(2, "", 0); err == nil {
		t.Fatalf("expected error for invalid party id")
	}
}
