// Package phf builds and evaluates a minimal perfect hash function
// (MPHF) over a static key set, per the domain model's bucket-sort
// and per-bucket seed search algorithm.
package phf

import (
	"fmt"
	"hash/fnv"
	"math"
	"sort"
)

// Table is a minimal perfect hash function over a fixed key set of
// size n: Lookup maps every key to a distinct value in [0, n).
//
// h0/h1 are deterministic, unseeded hashes (FNV-1a) rather than a
// randomized hash: a vpak file persists only the per-bucket Seeds,
// not any hash seed, so a reader process reconstructing a Table from
// those seeds must compute exactly the same h0/h1 the writer did.
type Table struct {
	seeds []int32 // indexed by h0(k) mod n
	n     int
}

// bucket holds, during construction, every key that hashed to the
// same h0 slot.
type bucket struct {
	slot int
	keys []string
}

// Build constructs a Table over keys, which must be unique. Returns
// an error if no seed search within the documented bound
// (math.MaxInt32) succeeds for some bucket — in practice this only
// happens for pathologically adversarial inputs.
func Build(keys []string) (*Table, error) {
	n := len(keys)
	if n == 0 {
		return &Table{n: 0}, nil
	}

	buckets := make(map[int]*bucket, n)
	for _, k := range keys {
		slot := int(h0(k, n))
		b, ok := buckets[slot]
		if !ok {
			b = &bucket{slot: slot}
			buckets[slot] = b
		}
		b.keys = append(b.keys, k)
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if len(ordered[i].keys) != len(ordered[j].keys) {
			return len(ordered[i].keys) > len(ordered[j].keys)
		}
		return ordered[i].slot < ordered[j].slot
	})

	seeds := make([]int32, n)
	occupied := make([]bool, n)

	for _, b := range ordered {
		if len(b.keys) == 1 {
			free := firstFree(occupied)
			if free < 0 {
				return nil, fmt.Errorf("phf: no free slot for singleton bucket")
			}
			occupied[free] = true
			seeds[b.slot] = -(int32(free) + 1)
			continue
		}

		found := false
		for s := int64(1); s <= math.MaxInt32; s++ {
			positions := make([]int, 0, len(b.keys))
			taken := make(map[int]struct{}, len(b.keys))
			collided := false
			for _, k := range b.keys {
				pos := int(h1(k, int32(s), n))
				if occupied[pos] {
					collided = true
					break
				}
				if _, dup := taken[pos]; dup {
					collided = true
					break
				}
				taken[pos] = struct{}{}
				positions = append(positions, pos)
			}
			if collided {
				continue
			}
			for _, pos := range positions {
				occupied[pos] = true
			}
			seeds[b.slot] = int32(s)
			found = true
			break
		}
		if !found {
			return nil, fmt.Errorf("phf: exhausted seed search for bucket at slot %d", b.slot)
		}
	}

	return &Table{seeds: seeds, n: n}, nil
}

// FromSeeds reconstructs a Table from a previously computed seed
// array (as persisted by a vpak archive's entry table), without
// redoing the bucket search. len(seeds) is the table's n.
func FromSeeds(seeds []int32) *Table {
	cp := make([]int32, len(seeds))
	copy(cp, seeds)
	return &Table{seeds: cp, n: len(cp)}
}

// Seeds returns the table's per-slot seed array, suitable for
// persisting alongside the key set it was built from.
func (t *Table) Seeds() []int32 { return t.seeds }

// Lookup maps k to its assigned value in [0, n). The result is
// meaningless (but still in range) for a key not in the original set
// Build was called with — callers that need existence checking must
// verify the key separately (e.g. against a stored name table).
func (t *Table) Lookup(k string) int {
	if t.n == 0 {
		return 0
	}
	slot := int(h0(k, t.n))
	s := t.seeds[slot]
	if s < 0 {
		return int(-s - 1)
	}
	return int(h1(k, s, t.n))
}

// Len returns the size of the table's codomain, n.
func (t *Table) Len() int { return t.n }

func firstFree(occupied []bool) int {
	for i, v := range occupied {
		if !v {
			return i
		}
	}
	return -1
}

func h0(k string, n int) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(k))
	return h.Sum64() % uint64(n)
}

// h1 mixes in the per-bucket seed s so that different seeds produce
// independent permutations of the same key set.
func h1(k string, s int32, n int) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(k))
	var buf [4]byte
	buf[0] = byte(s)
	buf[1] = byte(s >> 8)
	buf[2] = byte(s >> 16)
	buf[3] = byte(s >> 24)
	_, _ = h.Write(buf[:])
	return h.Sum64() % uint64(n)
}
