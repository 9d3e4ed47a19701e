package ecs

// EntityID packs an index (low 32 bits) and a generation/version (high
// 32 bits) into one value, following the domain binding of a 64-bit
// id over the original's 32-bit handle — wide enough that version
// wraparound is not a practical concern.
type EntityID uint64

const (
	indexBits = 32
	indexMask = (uint64(1) << indexBits) - 1

	// NullIndex is reserved and never assigned to a live entity.
	NullIndex = uint32(indexMask)
)

// Null is the always-invalid EntityID: the reserved null index at
// version 0. It is not the zero value of EntityID, which is index 0.
const Null EntityID = EntityID(uint64(NullIndex))

// Index returns the entity's slot index into the owning table.
func (e EntityID) Index() uint32 { return uint32(uint64(e) & indexMask) }

// Version returns the entity's generation counter.
func (e EntityID) Version() uint32 { return uint32(uint64(e) >> indexBits) }

func makeEntityID(index, version uint32) EntityID {
	return EntityID(uint64(version)<<indexBits | uint64(index))
}

// entitySlot is one row of the entity table: the currently-live
// EntityID for this index or, while the slot is free, an id carrying
// the null index and the version the next Create here hands out (so no
// id validates against a free slot), plus the free-list link.
type entitySlot struct {
	id   EntityID
	next uint32 // valid only while this slot is on the free list
}

// Entities is the recycling entity table described by the domain
// model: a dense array of slots plus a free-list head threaded
// through recycled slots' next field.
type Entities struct {
	slots    []entitySlot
	freeHead uint32
	freeLen  int
}

// NewEntities constructs an empty entity table.
func NewEntities() *Entities {
	return &Entities{freeHead: NullIndex}
}

// Create allocates a new EntityID, reusing a recycled slot (with its
// version bumped) if one is available, otherwise appending a fresh
// slot at version 0.
func (t *Entities) Create() EntityID {
	if t.freeHead == NullIndex {
		idx := uint32(len(t.slots))
		id := makeEntityID(idx, 0)
		t.slots = append(t.slots, entitySlot{id: id})
		return id
	}

	idx := t.freeHead
	slot := &t.slots[idx]
	t.freeHead = slot.next
	t.freeLen--
	id := makeEntityID(idx, slot.id.Version())
	slot.id = id
	return id
}

// Destroy recycles id's slot, bumping its version so stale handles to
// it become permanently invalid (barring version wraparound, which a
// 32-bit generation counter makes unreachable in practice). Destroying
// an already-invalid id is a no-op.
func (t *Entities) Destroy(id EntityID) {
	if !t.Valid(id) {
		return
	}
	idx := id.Index()
	slot := &t.slots[idx]
	slot.id = makeEntityID(NullIndex, id.Version()+1)
	slot.next = t.freeHead
	t.freeHead = idx
	t.freeLen++
}

// Valid reports whether id refers to a currently live entity:
// index in bounds and the table's stored id at that index matches
// exactly (same version).
func (t *Entities) Valid(id EntityID) bool {
	idx := id.Index()
	return idx < uint32(len(t.slots)) && t.slots[idx].id == id
}

// Len returns the number of currently live entities.
func (t *Entities) Len() int { return len(t.slots) - t.freeLen }

// Reset discards every entity, returning the table to its initial
// empty state. Used by the codec when loading a world in place.
func (t *Entities) Reset() {
	t.slots = t.slots[:0]
	t.freeHead = NullIndex
	t.freeLen = 0
}

// RebuildFromLive replaces the table's contents with exactly the
// given live ids. Gaps between indices become free slots from which
// the next Create hands out version 0; until then no id at a gap
// index is valid. Used only by the codec when loading a serialized
// world.
func (t *Entities) RebuildFromLive(ids []EntityID) {
	t.Reset()
	maxIdx := uint32(0)
	for _, id := range ids {
		if idx := id.Index(); idx+1 > maxIdx {
			maxIdx = idx + 1
		}
	}
	t.slots = make([]entitySlot, maxIdx)
	live := make([]bool, maxIdx)
	for _, id := range ids {
		t.slots[id.Index()] = entitySlot{id: id}
		live[id.Index()] = true
	}
	t.freeHead = NullIndex
	for i := int(maxIdx) - 1; i >= 0; i-- {
		if live[i] {
			continue
		}
		t.slots[i] = entitySlot{id: makeEntityID(NullIndex, 0), next: t.freeHead}
		t.freeHead = uint32(i)
		t.freeLen++
	}
}
