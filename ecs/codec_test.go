package ecs

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func buildSampleWorld() (*World, *Pool[position], *Pool[velocity]) {
	w := NewWorld()
	positions := Register[position](w, "position", positionCodec{})
	velocities := Register[velocity](w, "velocity", velocityCodec{})

	a := w.CreateEntity()
	positions.Emplace(a, position{X: 1, Y: 2})
	velocities.Emplace(a, velocity{DX: 0.5, DY: -0.5})

	b := w.CreateEntity()
	positions.Emplace(b, position{X: 3, Y: 4})

	c := w.CreateEntity()
	velocities.Emplace(c, velocity{DX: 9, DY: 9})

	return w, positions, velocities
}

func TestWorld_EncodeDecodeRoundTrip(t *testing.T) {
	w, positions, velocities := buildSampleWorld()

	var buf bytes.Buffer
	require.NoError(t, w.Encode(&buf))

	w2 := NewWorld()
	positions2 := Register[position](w2, "position", positionCodec{})
	velocities2 := Register[velocity](w2, "velocity", velocityCodec{})

	require.NoError(t, w2.Decode(&buf))

	require.Equal(t, positions.Len(), positions2.Len())
	require.Equal(t, velocities.Len(), velocities2.Len())

	for i := 0; i < positions.Len(); i++ {
		e := positions.Dense()[i]
		got, ok := positions2.TryGet(e)
		require.True(t, ok)
		if diff := cmp.Diff(*positions.ValueAt(i), got); diff != "" {
			t.Fatalf("position mismatch for %v (-want +got):\n%s", e, diff)
		}
	}
	for i := 0; i < velocities.Len(); i++ {
		e := velocities.Dense()[i]
		got, ok := velocities2.TryGet(e)
		require.True(t, ok)
		if diff := cmp.Diff(*velocities.ValueAt(i), got); diff != "" {
			t.Fatalf("velocity mismatch for %v (-want +got):\n%s", e, diff)
		}
	}
}

func TestWorld_DecodeUnregisteredComponentFails(t *testing.T) {
	w, _, _ := buildSampleWorld()
	var buf bytes.Buffer
	require.NoError(t, w.Encode(&buf))

	w2 := NewWorld() // no pools registered at all
	err := w2.Decode(&buf)
	require.Error(t, err)
	var werr *WorldError
	require.ErrorAs(t, err, &werr)
	require.Equal(t, ErrInvalidComponent, werr.Kind)
}
