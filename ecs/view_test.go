package ecs

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

type velocity struct{ DX, DY float32 }

type velocityCodec struct{}

func (velocityCodec) Encode(w *Writer, v *velocity) {
	w.PutFloat32(v.DX)
	w.PutFloat32(v.DY)
}

func (velocityCodec) Decode(r *Reader) (velocity, error) {
	dx := r.Float32()
	dy := r.Float32()
	return velocity{DX: dx, DY: dy}, r.Err()
}

func TestView2_SkipsEntitiesMissingEitherComponent(t *testing.T) {
	w := NewWorld()
	positions := Register[position](w, "position", positionCodec{})
	velocities := Register[velocity](w, "velocity", velocityCodec{})

	both := w.CreateEntity()
	positions.Emplace(both, position{X: 1})
	velocities.Emplace(both, velocity{DX: 1})

	onlyPos := w.CreateEntity()
	positions.Emplace(onlyPos, position{X: 2})

	onlyVel := w.CreateEntity()
	velocities.Emplace(onlyVel, velocity{DX: 2})

	var visited []EntityID
	View2(positions, velocities, func(e EntityID, p *position, v *velocity) {
		visited = append(visited, e)
		p.X += v.DX
	})

	require.Equal(t, []EntityID{both}, visited)
	require.Equal(t, float32(2), positions.Get(both).X)
}

type mass struct{ M float32 }

type massCodec struct{}

func (massCodec) Encode(w *Writer, v *mass) { w.PutFloat32(v.M) }
func (massCodec) Decode(r *Reader) (mass, error) {
	m := r.Float32()
	return mass{M: m}, r.Err()
}

func TestView3_DrivesOffSmallestPool(t *testing.T) {
	w := NewWorld()
	positions := Register[position](w, "position", positionCodec{})
	velocities := Register[velocity](w, "velocity", velocityCodec{})
	masses := Register[mass](w, "mass", massCodec{})

	var all []EntityID
	for i := 0; i < 5; i++ {
		e := w.CreateEntity()
		positions.Emplace(e, position{})
		velocities.Emplace(e, velocity{})
		all = append(all, e)
	}
	// only two entities get mass; View3 must still find exactly those
	masses.Emplace(all[1], mass{M: 1})
	masses.Emplace(all[3], mass{M: 3})

	var visited []EntityID
	View3(positions, velocities, masses, func(e EntityID, _ *position, _ *velocity, _ *mass) {
		visited = append(visited, e)
	})

	sort.Slice(visited, func(i, j int) bool { return visited[i] < visited[j] })
	want := []EntityID{all[1], all[3]}
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	require.Equal(t, want, visited)
}
