//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package prng adapts a cryptographic stream into the uniform
// 64-bit-word and single-bit source that the arithmetic and boolean
// share engines are parameterized over. The PRNG algorithm itself is
// an external concern; this package only owns the small adapter that
// turns a keyed stream cipher into that source.
package prng

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"errors"
	"io"

	"golang.org/x/crypto/chacha20"
)

// Source is the uniform randomness source required by the share
// engines: 64-bit words and single bits, each independently uniform.
type Source interface {
	// Uint64 returns a uniformly random 64-bit word.
	Uint64() (uint64, error)

	// Bit returns a uniformly random single bit.
	Bit() (bool, error)
}

// ChaCha20Source is the default Source, a chacha20 keystream keyed
// from crypto/rand. It satisfies Source with an effectively
// unlimited, never-reseeded stream, matching the way the teacher
// codebase always seeds protocol randomness from crypto/rand rather
// than a non-cryptographic generator (see crypto/spdz.randomFieldElement
// in the reference codebase this was adapted from).
type ChaCha20Source struct {
	cipher *chacha20.Cipher
}

// NewChaCha20Source creates a ChaCha20Source keyed and seeded from
// crypto/rand.
func NewChaCha20Source() (*ChaCha20Source, error) {
	var key [chacha20.KeySize]byte
	var nonce [chacha20.NonceSize]byte
	if _, err := io.ReadFull(cryptorand.Reader, key[:]); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(cryptorand.Reader, nonce[:]); err != nil {
		return nil, err
	}
	return NewChaCha20SourceFromSeed(key, nonce)
}

// NewChaCha20SourceFromSeed creates a ChaCha20Source from an explicit
// key and nonce, for deterministic, reproducible tests (e.g. the
// chi-squared uniformity check and replaying a recorded run).
func NewChaCha20SourceFromSeed(key [chacha20.KeySize]byte,
	nonce [chacha20.NonceSize]byte) (*ChaCha20Source, error) {

	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		return nil, err
	}
	return &ChaCha20Source{cipher: c}, nil
}

// Uint64 implements Source.
func (s *ChaCha20Source) Uint64() (uint64, error) {
	var buf [8]byte
	s.cipher.XORKeyStream(buf[:], buf[:])
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// Bit implements Source.
func (s *ChaCha20Source) Bit() (bool, error) {
	v, err := s.Uint64()
	if err != nil {
		return false, err
	}
	return v&1 == 1, nil
}

// Uint32n draws a uniform value in [0, n) from src, n > 0, rejecting
// and redrawing the small tail of outcomes that would otherwise
// introduce modulo bias. This is the 32-bit counterpart of the
// reject-and-retry discipline in crypto/spdz.randomFieldElement, there
// sampling uniformly modulo a prime field order.
func Uint32n(src Source, n uint32) (uint32, error) {
	if n == 0 {
		return 0, errors.New("prng: Uint32n requires n > 0")
	}
	const maxUint32 = ^uint32(0)
	limit := maxUint32 - maxUint32%n
	for {
		v, err := src.Uint64()
		if err != nil {
			return 0, err
		}
		u32 := uint32(v)
		if u32 < limit {
			return u32 % n, nil
		}
	}
}

// Uint64n draws a uniform value in [0, n) from src, n > 0, with the
// same reject-and-retry discipline as Uint32n.
func Uint64n(src Source, n uint64) (uint64, error) {
	if n == 0 {
		return 0, errors.New("prng: Uint64n requires n > 0")
	}
	const maxUint64 = ^uint64(0)
	limit := maxUint64 - maxUint64%n
	for {
		v, err := src.Uint64()
		if err != nil {
			return 0, err
		}
		if v < limit {
			return v % n, nil
		}
	}
}

// MaskedUint32 draws a uniform value in [0, 2^k) from src by
// delegating to Uint32n with n = 2^k, the bound every dealer-side
// triple and share draw in package ring uses (package boolean draws
// single bits with Source.Bit instead).
// k == 32 is handled directly since 2^32 does not fit a uint32 bound;
// full-word output needs no bounding at all.
func MaskedUint32(src Source, k uint) (uint32, error) {
	if k == 32 {
		v, err := src.Uint64()
		if err != nil {
			return 0, err
		}
		return uint32(v), nil
	}
	return Uint32n(src, uint32(1)<<k)
}
