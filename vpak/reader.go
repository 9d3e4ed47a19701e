package vpak

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/exp/slices"

	"github.com/vull-engine/vull/phf"
)

// Reader opens an archive for read-only access. Exists, Stat, and
// Open are O(1) after construction, backed by the archive's perfect
// hash table.
type Reader struct {
	f        *os.File
	fileSize int64
	entries  []entryHeader
	table    *phf.Table
}

// Open opens the archive at path, reading and validating its header
// and entry table.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	hd, err := readHeader(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	seeds := make([]int32, hd.count)
	if hd.count > 0 {
		raw := make([]byte, int(hd.count)*4)
		if _, err := f.ReadAt(raw, int64(hd.tableOff)); err != nil {
			f.Close()
			return nil, err
		}
		for i := range seeds {
			seeds[i] = int32(binary.BigEndian.Uint32(raw[i*4 : i*4+4]))
		}
	}

	headersOff := int64(hd.tableOff) + int64(hd.count)*4
	sr := io.NewSectionReader(f, headersOff, fi.Size()-headersOff)
	br := bufio.NewReader(sr)
	entries := make([]entryHeader, hd.count)
	for i := range entries {
		e, err := readEntryHeader(br)
		if err != nil {
			f.Close()
			return nil, err
		}
		entries[i] = e
	}

	return &Reader{
		f:        f,
		fileSize: fi.Size(),
		entries:  entries,
		table:    phf.FromSeeds(seeds),
	}, nil
}

// Close releases the archive's underlying file handle.
func (r *Reader) Close() error { return r.f.Close() }

// Names returns every entry name stored in the archive, sorted
// lexicographically (the underlying entry table is in PHF bucket
// order, which is not meaningful to a caller).
func (r *Reader) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	slices.Sort(names)
	return names
}

func (r *Reader) lookup(name string) (entryHeader, bool) {
	if r.table.Len() == 0 {
		return entryHeader{}, false
	}
	idx := r.table.Lookup(name)
	if idx < 0 || idx >= len(r.entries) {
		return entryHeader{}, false
	}
	e := r.entries[idx]
	if e.Name != name {
		return entryHeader{}, false
	}
	return e, true
}

// Exists reports whether name is present in the archive.
func (r *Reader) Exists(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

// Stat returns name's metadata.
func (r *Reader) Stat(name string) (Stat, error) {
	e, ok := r.lookup(name)
	if !ok {
		return Stat{}, &VpakError{Kind: ErrEntryNotFound, Name: name}
	}
	return Stat{Name: e.Name, Type: e.Type, Size: e.Size}, nil
}

// Open returns a streaming reader over name's decompressed payload.
func (r *Reader) Open(name string) (*ReadStream, error) {
	e, ok := r.lookup(name)
	if !ok {
		return nil, &VpakError{Kind: ErrEntryNotFound, Name: name}
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	return &ReadStream{
		r:    r,
		next: e.FirstBlock,
		dec:  dec,
	}, nil
}

// ReadStream exposes one entry's payload as a contiguous byte stream,
// decompressing one block at a time and following its link field to
// the next, regardless of block boundaries.
type ReadStream struct {
	r    *Reader
	dec  *zstd.Decoder
	next uint64
	cur  []byte // undelivered decompressed bytes from the current block
	done bool
}

// Read implements io.Reader.
func (s *ReadStream) Read(p []byte) (int, error) {
	for len(s.cur) == 0 {
		if s.done {
			return 0, io.EOF
		}
		if err := s.fillNextBlock(); err != nil {
			return 0, err
		}
	}
	n := copy(p, s.cur)
	s.cur = s.cur[n:]
	return n, nil
}

func (s *ReadStream) fillNextBlock() error {
	if s.next == blockTerminator {
		s.done = true
		return nil
	}
	frame, next, _, err := readBlock(s.r.f, int64(s.next), s.r.fileSize)
	if err != nil {
		return err
	}
	out, err := s.dec.DecodeAll(frame, nil)
	if err != nil {
		return &VpakError{Kind: ErrDecompressionFailed, Err: err}
	}
	s.cur = out
	s.next = next
	return nil
}

// Close releases the stream's decompression context.
func (s *ReadStream) Close() error {
	s.dec.Close()
	return nil
}

// ReadAll reads the entry's full payload into memory, a convenience
// wrapper over ReadStream for small entries.
func ReadAll(r *Reader, name string) ([]byte, error) {
	s, err := r.Open(name)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
