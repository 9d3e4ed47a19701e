package vpak

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVpak_ConcurrentWriteStreams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent.vpak")
	w, err := NewWriter(path, LevelFast)
	require.NoError(t, err)

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("entry-%02d", i)
			es := w.AddEntry(name, EntryBlob)
			payload := make([]byte, blockPayloadSize+100)
			for j := range payload {
				payload[j] = byte(i)
			}
			_, err := es.Write(payload)
			require.NoError(t, err)
			require.NoError(t, es.Finish())
		}(i)
	}
	wg.Wait()
	require.NoError(t, w.Finish())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	for i := 0; i < n; i++ {
		name := fmt.Sprintf("entry-%02d", i)
		got, err := ReadAll(r, name)
		require.NoError(t, err)
		require.Len(t, got, blockPayloadSize+100)
		for _, b := range got {
			require.Equal(t, byte(i), b)
		}
	}
}
