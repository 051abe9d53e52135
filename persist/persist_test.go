//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package persist

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/markkurossi/beavernet/tpcerr"
)

// TestS6VectorRoundTrip is spec scenario S6.
func TestS6VectorRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vector.share")

	r := rand.New(rand.NewSource(1))
	want := make([]uint32, 1024)
	for i := range want {
		want[i] = r.Uint32()
	}

	if err := WriteVectorShare(path, want, false); err != nil {
		t.Fatalf("WriteVectorShare failed: %v", err)
	}
	got, err := ReadVectorShare(path)
	if err != nil {
		t.Fatalf("ReadVectorShare failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("element %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestScalarRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scalar.share")

	if err := WriteScalarShare(path, 0xDEADBEEF, false); err != nil {
		t.Fatalf("WriteScalarShare failed: %v", err)
	}
	got, err := ReadScalarShare(path)
	if err != nil {
		t.Fatalf("ReadScalarShare failed: %v", err)
	}
	if got != 0xDEADBEEF {
		t.Errorf("ReadScalarShare = %#x, want %#x", got, uint32(0xDEADBEEF))
	}
}

func TestTripleRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "triples.share")

	want := []TripleRecord{
		{A: 1, B: 2, C: 10},
		{A: 2, B: 3, C: 5},
	}
	if err := WriteTriples(path, want, false); err != nil {
		t.Fatalf("WriteTriples failed: %v", err)
	}
	got, err := ReadTriples(path)
	if err != nil {
		t.Fatalf("ReadTriples failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("triple %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestMissingFileIsIoError(t *testing.T) {
	_, err := ReadScalarShare(filepath.Join(t.TempDir(), "does-not-exist"))
	if !tpcerr.Is(err, tpcerr.IoError) {
		t.Fatalf("expected IoError, got %v", err)
	}
}

func TestMalformedVectorIsParseError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.share")
	if err := os.WriteFile(path, []byte("not-a-number\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	_, err := ReadVectorShare(path)
	if !tpcerr.Is(err, tpcerr.ParseError) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestMalformedTripleIsParseError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad-triples.share")
	if err := os.WriteFile(path, []byte("1\n1,2\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	_, err := ReadTriples(path)
	if !tpcerr.Is(err, tpcerr.ParseError) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestAppendMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "append.share")

	if err := WriteScalarShare(path, 1, false); err != nil {
		t.Fatalf("WriteScalarShare failed: %v", err)
	}
	if err := WriteScalarShare(path, 2, true); err != nil {
		t.Fatalf("appending WriteScalarShare failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	want := "1\n2\n"
	if string(data) != want {
		t.Errorf("appended file = %q, want %q", string(data), want)
	}
}

func TestOverwriteReplacesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overwrite.share")

	if err := WriteVectorShare(path, []uint32{1, 2, 3}, false); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := WriteVectorShare(path, []uint32{9}, false); err != nil {
		t.Fatalf("second write failed: %v", err)
	}
	got, err := ReadVectorShare(path)
	if err != nil {
		t.Fatalf("ReadVectorShare failed: %v", err)
	}
	if len(got) != 1 || got[0] != 9 {
		t.Errorf("ReadVectorShare = %v, want [9]", got)
	}
}
