package ecs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEntities_RecycleBumpsVersion(t *testing.T) {
	tbl := NewEntities()
	a := tbl.Create()
	tbl.Destroy(a)
	b := tbl.Create()

	require.Equal(t, a.Index(), b.Index())
	require.Equal(t, a.Version()+1, b.Version())
	require.False(t, tbl.Valid(a))
	require.True(t, tbl.Valid(b))
}

func TestEntities_DestroyUnknownIsNoop(t *testing.T) {
	tbl := NewEntities()
	a := tbl.Create()
	tbl.Destroy(a)
	require.NotPanics(t, func() { tbl.Destroy(a) })
}

func TestEntities_LenTracksLiveCount(t *testing.T) {
	tbl := NewEntities()
	a := tbl.Create()
	_ = tbl.Create()
	require.Equal(t, 2, tbl.Len())
	tbl.Destroy(a)
	require.Equal(t, 1, tbl.Len())
}

func TestEntities_RebuildFromLive(t *testing.T) {
	tbl := NewEntities()
	a := tbl.Create()
	b := tbl.Create()
	c := tbl.Create()
	tbl.Destroy(b)

	tbl.RebuildFromLive([]EntityID{a, c})
	require.True(t, tbl.Valid(a))
	require.True(t, tbl.Valid(c))
	require.False(t, tbl.Valid(b))

	// the recycled index should still be usable afterwards
	d := tbl.Create()
	require.Equal(t, b.Index(), d.Index())
}
