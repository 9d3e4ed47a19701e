package ecs

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// World owns the entity table, an ordered list of component pools
// (indexed by [ComponentID], matching serialization order), and an
// optional name-to-component registry for tooling that needs to
// resolve components by name rather than by registered type.
type World struct {
	entities *Entities
	pools    []componentPool
	byName   map[string]ComponentID
}

// NewWorld constructs an empty world.
func NewWorld() *World {
	return &World{entities: NewEntities(), byName: make(map[string]ComponentID)}
}

// CreateEntity allocates a new entity with no components.
func (w *World) CreateEntity() EntityID { return w.entities.Create() }

// DestroyEntity recycles e's slot and strips every component it held
// across all registered pools.
func (w *World) DestroyEntity(e EntityID) {
	if !w.entities.Valid(e) {
		return
	}
	for _, p := range w.pools {
		if p != nil && p.contains(e) {
			p.remove(e)
		}
	}
	w.entities.Destroy(e)
}

// Valid reports whether e refers to a currently live entity.
func (w *World) Valid(e EntityID) bool { return w.entities.Valid(e) }

// Len returns the number of currently live entities.
func (w *World) Len() int { return w.entities.Len() }

// Register establishes a stable [ComponentID] for component type T,
// identified by name, using codec to serialize its values, and
// creates its pool. Register is the only way a pool is created; there
// is no lazy creation on first emplace. Ids follow registration order,
// so serialization indices are deterministic across process runs.
//
// Register must be called in the same order on every process that
// will exchange serialized worlds with this one.
func Register[T any](w *World, name string, codec ComponentCodec[T]) *Pool[T] {
	id := ComponentID(len(w.pools))
	p := newPool[T](id, name, codec)
	w.pools = append(w.pools, p)
	w.byName[name] = id
	return p
}

// PoolID looks up a previously registered component's id by name.
func (w *World) PoolID(name string) (ComponentID, bool) {
	id, ok := w.byName[name]
	return id, ok
}

// ComponentNames returns every registered component's name, sorted,
// for diagnostics and tooling that walk a world without knowing its
// component types ahead of time.
func (w *World) ComponentNames() []string {
	names := maps.Keys(w.byName)
	slices.Sort(names)
	return names
}
