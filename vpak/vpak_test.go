package vpak

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVpak_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.vpak")

	payloads := map[string][]byte{
		"a":    {0x01},
		"bb":   {0x02, 0x02},
		"ccc":  {0x03, 0x03, 0x03},
		"dddd": {0x04, 0x04, 0x04, 0x04},
	}

	w, err := NewWriter(path, LevelNormal)
	require.NoError(t, err)

	for _, name := range []string{"a", "bb", "ccc", "dddd"} {
		es := w.AddEntry(name, EntryBlob)
		_, err := es.Write(payloads[name])
		require.NoError(t, err)
		require.NoError(t, es.Finish())
	}
	require.NoError(t, w.Finish())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	for name, want := range payloads {
		require.True(t, r.Exists(name))
		stat, err := r.Stat(name)
		require.NoError(t, err)
		require.Equal(t, uint64(len(want)), stat.Size)
		require.Equal(t, EntryBlob, stat.Type)

		got, err := ReadAll(r, name)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	require.ElementsMatch(t, []string{"a", "bb", "ccc", "dddd"}, r.Names())
}

func TestVpak_EntryNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.vpak")
	w, err := NewWriter(path, LevelFast)
	require.NoError(t, err)
	es := w.AddEntry("only", EntryBlob)
	_, _ = es.Write([]byte("hello"))
	require.NoError(t, es.Finish())
	require.NoError(t, w.Finish())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	require.False(t, r.Exists("missing"))
	_, err = r.Stat("missing")
	require.Error(t, err)
	var verr *VpakError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, ErrEntryNotFound, verr.Kind)
}

func TestVpak_MultiBlockEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.vpak")
	w, err := NewWriter(path, LevelFast)
	require.NoError(t, err)

	// force several block flushes by exceeding the payload threshold
	big := make([]byte, blockPayloadSize*3+17)
	for i := range big {
		big[i] = byte(i % 251)
	}

	es := w.AddEntry("big", EntryBlob)
	require.NoError(t, writeAll(es, big))
	require.NoError(t, es.Finish())
	require.NoError(t, w.Finish())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	got, err := ReadAll(r, "big")
	require.NoError(t, err)
	require.Equal(t, big, got)
}

func writeAll(w io.Writer, p []byte) error {
	_, err := w.Write(p)
	return err
}

func TestVpak_EmptyEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.vpak")
	w, err := NewWriter(path, LevelFast)
	require.NoError(t, err)
	es := w.AddEntry("empty", EntryBlob)
	require.NoError(t, es.Finish())
	require.NoError(t, w.Finish())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	stat, err := r.Stat("empty")
	require.NoError(t, err)
	require.Equal(t, uint64(0), stat.Size)

	got, err := ReadAll(r, "empty")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestVpak_BadMagicRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.vpak")
	require.NoError(t, os.WriteFile(path, []byte("NOTVPAK-------------------"), 0o644))
	_, err := Open(path)
	require.Error(t, err)
	var verr *VpakError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, ErrBadMagic, verr.Kind)
}
