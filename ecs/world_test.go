package ecs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorld_RegisterAssignsSequentialIDs(t *testing.T) {
	w := NewWorld()
	positions := Register[position](w, "position", positionCodec{})
	velocities := Register[velocity](w, "velocity", velocityCodec{})

	require.Equal(t, ComponentID(0), positions.ID())
	require.Equal(t, ComponentID(1), velocities.ID())

	id, ok := w.PoolID("velocity")
	require.True(t, ok)
	require.Equal(t, velocities.ID(), id)
}

func TestWorld_ComponentNamesSorted(t *testing.T) {
	w := NewWorld()
	Register[velocity](w, "velocity", velocityCodec{})
	Register[position](w, "position", positionCodec{})
	require.Equal(t, []string{"position", "velocity"}, w.ComponentNames())
}

func TestWorld_LenTracksEntities(t *testing.T) {
	w := NewWorld()
	e1 := w.CreateEntity()
	_ = w.CreateEntity()
	require.Equal(t, 2, w.Len())
	w.DestroyEntity(e1)
	require.Equal(t, 1, w.Len())
}
