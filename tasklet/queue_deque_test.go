package tasklet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkStealingDeque_OwnerLIFO(t *testing.T) {
	d := newWorkStealingDeque()
	d.pushHead(task{execute: nil})
	marker := task{execute: func(*worker) {}}
	d.pushHead(marker)

	got, ok := d.popHead()
	require.True(t, ok)
	require.NotNil(t, got.execute)

	_, ok = d.popHead()
	require.True(t, ok)

	_, ok = d.popHead()
	require.False(t, ok)
}

func TestWorkStealingDeque_StealTakesOldest(t *testing.T) {
	d := newWorkStealingDeque()
	first := task{execute: func(*worker) {}}
	second := task{execute: nil}
	d.pushHead(first)
	d.pushHead(second)

	stolen, ok := d.stealOne()
	require.True(t, ok)
	require.NotNil(t, stolen.execute) // first pushed, stolen from the tail

	remaining, ok := d.popHead()
	require.True(t, ok)
	require.Nil(t, remaining.execute)

	require.Equal(t, 0, d.approxLen())
}

func TestWorkStealingDeque_EmptyStealFails(t *testing.T) {
	d := newWorkStealingDeque()
	_, ok := d.stealOne()
	require.False(t, ok)
}
