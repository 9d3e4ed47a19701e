package ecs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type position struct{ X, Y float32 }

type positionCodec struct{}

func (positionCodec) Encode(w *Writer, v *position) {
	w.PutFloat32(v.X)
	w.PutFloat32(v.Y)
}

func (positionCodec) Decode(r *Reader) (position, error) {
	x := r.Float32()
	y := r.Float32()
	return position{X: x, Y: y}, r.Err()
}

func TestPool_EmplaceGetRemove(t *testing.T) {
	w := NewWorld()
	positions := Register[position](w, "position", positionCodec{})

	e := w.CreateEntity()
	positions.Emplace(e, position{X: 1, Y: 2})
	require.True(t, positions.Contains(e))

	got := positions.Get(e)
	require.Equal(t, position{X: 1, Y: 2}, *got)

	positions.Remove(e)
	require.False(t, positions.Contains(e))
}

func TestPool_EmplaceTwiceOnSameEntityPanics(t *testing.T) {
	w := NewWorld()
	positions := Register[position](w, "position", positionCodec{})
	e := w.CreateEntity()
	positions.Emplace(e, position{})
	require.Panics(t, func() { positions.Emplace(e, position{}) })
}

func TestPool_RemoveSwapsLastValueIntoHole(t *testing.T) {
	w := NewWorld()
	positions := Register[position](w, "position", positionCodec{})

	e1 := w.CreateEntity()
	e2 := w.CreateEntity()
	e3 := w.CreateEntity()
	positions.Emplace(e1, position{X: 1})
	positions.Emplace(e2, position{X: 2})
	positions.Emplace(e3, position{X: 3})

	positions.Remove(e1)

	require.Equal(t, 2, positions.Len())
	_, ok := positions.TryGet(e1)
	require.False(t, ok)
	require.Equal(t, float32(2), positions.Get(e2).X)
	require.Equal(t, float32(3), positions.Get(e3).X)
}

func TestWorld_DestroyEntityStripsComponents(t *testing.T) {
	w := NewWorld()
	positions := Register[position](w, "position", positionCodec{})
	e := w.CreateEntity()
	positions.Emplace(e, position{X: 9})

	w.DestroyEntity(e)
	require.False(t, w.Valid(e))
	require.False(t, positions.Contains(e))
}
