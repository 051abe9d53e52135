//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package persist reads and writes shares and Beaver triples in the
// fixed textual format described by the wire spec: scalar share
// files hold one decimal integer; vector share files hold a count
// line followed by one integer per line; triple files hold a count
// line followed by one "a,b,c" decimal line per triple. Writes are
// atomic overwrites by default (temp file + rename, mirroring the
// WriteSaveData/LoadSaveData save-file pattern of the reference
// codebase's cmd/tss tool); append is opt-in and intentionally not
// atomic.
package persist

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/markkurossi/beavernet/tpcerr"
)

// TripleRecord is the on-disk (a, b, c) triple used for both
// arithmetic and boolean Beaver triples; the engine-specific Share
// type is reduced to its raw uint32 word for serialization.
type TripleRecord struct {
	A, B, C uint32
}

func ioErr(op string, err error) error {
	return tpcerr.New(tpcerr.IoError, op, err)
}

func parseErr(op string, err error) error {
	return tpcerr.New(tpcerr.ParseError, op, err)
}

// openForRead opens path, mapping a missing or unreadable file to
// IoError.
func openForRead(op, path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioErr(op, err)
	}
	return f, nil
}

// writeAtomic writes data to path via a temp file in the same
// directory followed by a rename, so a reader never observes a
// partially written file.
func writeAtomic(op, path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return ioErr(op, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return ioErr(op, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return ioErr(op, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return ioErr(op, err)
	}
	return nil
}

// writeAppend appends data to path, creating it if necessary. Unlike
// writeAtomic, a crash mid-write can leave a torn file; callers that
// opt into append accept that tradeoff.
func writeAppend(op, path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return ioErr(op, err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return ioErr(op, err)
	}
	return nil
}

func writeFile(op, path string, data []byte, appendMode bool) error {
	if appendMode {
		return writeAppend(op, path, data)
	}
	return writeAtomic(op, path, data)
}

// WriteScalarShare writes a single decimal integer line.
func WriteScalarShare(path string, v uint32, appendMode bool) error {
	return writeFile("persist.WriteScalarShare", path,
		[]byte(fmt.Sprintf("%d\n", v)), appendMode)
}

// ReadScalarShare reads the single decimal integer written by
// WriteScalarShare.
func ReadScalarShare(path string) (uint32, error) {
	f, err := openForRead("persist.ReadScalarShare", path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return 0, parseErr("persist.ReadScalarShare", errors.New("empty file"))
	}
	v, err := strconv.ParseUint(strings.TrimSpace(scanner.Text()), 10, 32)
	if err != nil {
		return 0, parseErr("persist.ReadScalarShare", err)
	}
	return uint32(v), nil
}

// WriteVectorShare writes the count line followed by one decimal
// integer per line.
func WriteVectorShare(path string, vs []uint32, appendMode bool) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%d\n", len(vs))
	for _, v := range vs {
		fmt.Fprintf(&b, "%d\n", v)
	}
	return writeFile("persist.WriteVectorShare", path, []byte(b.String()), appendMode)
}

// ReadVectorShare reads the count-prefixed vector format written by
// WriteVectorShare.
func ReadVectorShare(path string) ([]uint32, error) {
	f, err := openForRead("persist.ReadVectorShare", path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return nil, parseErr("persist.ReadVectorShare", errors.New("missing count line"))
	}
	n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || n < 0 {
		return nil, parseErr("persist.ReadVectorShare",
			fmt.Errorf("invalid count %q", scanner.Text()))
	}

	out := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		if !scanner.Scan() {
			return nil, parseErr("persist.ReadVectorShare",
				fmt.Errorf("expected %d values, got %d", n, i))
		}
		v, err := strconv.ParseUint(strings.TrimSpace(scanner.Text()), 10, 32)
		if err != nil {
			return nil, parseErr("persist.ReadVectorShare", err)
		}
		out = append(out, uint32(v))
	}
	return out, nil
}

// WriteTriples writes the count line followed by one "a,b,c" line
// per triple.
func WriteTriples(path string, triples []TripleRecord, appendMode bool) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%d\n", len(triples))
	for _, t := range triples {
		fmt.Fprintf(&b, "%d,%d,%d\n", t.A, t.B, t.C)
	}
	return writeFile("persist.WriteTriples", path, []byte(b.String()), appendMode)
}

// ReadTriples reads the count-prefixed triple format written by
// WriteTriples.
func ReadTriples(path string) ([]TripleRecord, error) {
	f, err := openForRead("persist.ReadTriples", path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return nil, parseErr("persist.ReadTriples", errors.New("missing count line"))
	}
	n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || n < 0 {
		return nil, parseErr("persist.ReadTriples",
			fmt.Errorf("invalid count %q", scanner.Text()))
	}

	out := make([]TripleRecord, 0, n)
	for i := 0; i < n; i++ {
		if !scanner.Scan() {
			return nil, parseErr("persist.ReadTriples",
				fmt.Errorf("expected %d triples, got %d", n, i))
		}
		parts := strings.Split(strings.TrimSpace(scanner.Text()), ",")
		if len(parts) != 3 {
			return nil, parseErr("persist.ReadTriples",
				fmt.Errorf("malformed triple line %q", scanner.Text()))
		}
		vals := make([]uint64, 3)
		for j, p := range parts {
			v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
			if err != nil {
				return nil, parseErr("persist.ReadTriples", err)
			}
			vals[j] = v
		}
		out = append(out, TripleRecord{A: uint32(vals[0]), B: uint32(vals[1]), C: uint32(vals[2])})
	}
	return out, nil
}

// WriteTripleSharePair writes both parties' triple-share files from
// one dealer invocation, matching the way a trusted dealer
// distributes triple shares once (spec §3).
func WriteTripleSharePair(path0, path1 string, shares0, shares1 []TripleRecord) error {
	if err := WriteTriples(path0, shares0, false); err != nil {
		return err
	}
	return WriteTriples(path1, shares1, false)
}
