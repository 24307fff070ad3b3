// Package rng provides the deterministic uniform source behind every
// simulation run. The contract is reproducibility rather than randomness
// quality: a given seed yields the same float stream on every platform.
package rng

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

const (
	// seedMultiplier derives the second state word from the caller's seed,
	// borrowing the MT19937 initialization constant.
	seedMultiplier = 1812433253

	// floatUnit maps a 32-bit word onto [0, 1).
	floatUnit = 1.0 / (1 << 32)

	// warmupRounds are discarded after seeding so low-entropy seeds decorrelate.
	warmupRounds = 20
)

// Source is a two-word xorshift generator. It is not cryptographic and is
// not safe for concurrent use; each simulation run owns exactly one.
type Source struct {
	s0, s1 uint32
}

// New returns a Source seeded deterministically from seed.
func New(seed uint32) *Source {
	s := &Source{
		s0: seed,
		s1: seed*seedMultiplier + 1,
	}
	for i := 0; i < warmupRounds; i++ {
		s.next()
	}
	return s
}

// NewRandom returns a Source seeded from the OS entropy pool, along with
// the chosen seed so callers can report and replay the run. Falls back to
// the wall clock if the entropy read fails.
func NewRandom() (*Source, uint32) {
	seed := randomSeed()
	return New(seed), seed
}

func randomSeed() uint32 {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return uint32(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint32(buf[:])
}

// Float64 returns the next value in [0, 1).
func (s *Source) Float64() float64 {
	return s.next()
}

func (s *Source) next() float64 {
	t, u := s.s0, s.s1
	s.s0 = u
	t ^= t << 13
	t ^= t >> 17
	t ^= u ^ (u >> 5)
	s.s1 = t
	return float64(s.s0) * floatUnit
}
