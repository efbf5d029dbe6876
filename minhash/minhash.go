// Package minhash builds fixed-width MinHash signatures from shingle
// content sets (C5), using a deterministic, fixed-seed 64-bit hash family
// so signatures are bit-identical across runs and platforms (spec 4.5, §5
// determinism requirement).
package minhash

import (
	"hash/fnv"
	"sort"

	"github.com/arch-sim/simhound/models"
)

// fixedSeeds are the per-permutation mixing constants. They are baked in
// at compile time rather than derived from a PRNG, since spec 4.5/§5
// forbid process-dependent hashing: the same num_perm must always yield
// the same permutation family. Generated as a fixed odd-constant sequence
// and XORed into the input by hashUint64WithSeed, the same bit-mixing
// approach as the reference clone detector this package is grounded on.
func fixedSeeds(numPerm int) []uint64 {
	seeds := make([]uint64, numPerm)
	seed := uint64(0x9E3779B97F4A7C15)
	for i := range seeds {
		seed += 0xBF58476D1CE4E5B9
		seeds[i] = seed | 1
	}
	return seeds
}

// Sketcher computes MinHashSignatures for a fixed num_perm width. It holds
// no mutable state and is safe to share across goroutines.
type Sketcher struct {
	numPerm int
	seeds   []uint64
}

// New builds a Sketcher for the given signature width (spec default 128).
func New(numPerm int) *Sketcher {
	if numPerm < 1 {
		numPerm = models.DefaultNumPerm
	}
	return &Sketcher{numPerm: numPerm, seeds: fixedSeeds(numPerm)}
}

// NumPerm returns the configured signature width.
func (s *Sketcher) NumPerm() int { return s.numPerm }

// Sketch converts a shingle content set into a MinHashSignature. An empty
// set produces the Empty sentinel (spec 4.5: two empty regions are
// defined to have similarity 0, not 1).
func (s *Sketcher) Sketch(contents map[string]struct{}) models.MinHashSignature {
	if len(contents) == 0 {
		return models.MinHashSignature{Empty: true}
	}
	// Hash contents once to a stable base value, independent of Go's map
	// iteration order, so the signature never depends on iteration order.
	baseHashes := make([]uint64, 0, len(contents))
	for c := range contents {
		baseHashes = append(baseHashes, contentHash(c))
	}
	sort.Slice(baseHashes, func(i, j int) bool { return baseHashes[i] < baseHashes[j] })

	minima := make([]uint64, s.numPerm)
	for p := 0; p < s.numPerm; p++ {
		var min uint64 = ^uint64(0)
		for _, h := range baseHashes {
			mixed := hashUint64WithSeed(h, s.seeds[p])
			if mixed < min {
				min = mixed
			}
		}
		minima[p] = min
	}
	return models.MinHashSignature{Values: minima}
}

// contentHash hashes a shingle's content string to a 64-bit value using
// FNV-1a, a dependency-free deterministic hash available from the
// standard library — the single base hash feeding every permutation.
func contentHash(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// hashUint64WithSeed mixes x with seed using a murmur-style finalizer:
// multiply-xorshift steps with no branching and no allocation, so it
// stays cheap on the hot per-permutation loop above.
func hashUint64WithSeed(x, seed uint64) uint64 {
	x ^= seed
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}
