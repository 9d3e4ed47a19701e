package ecs

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
)

// Writer is the primitive serialization sink handed to a
// [ComponentCodec]'s Encode method. It wraps an io.Writer with the
// varint and byte-string helpers the world format and every built-in
// component codec share.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter wraps w for use by component codecs.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

func (w *Writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// Err returns the first error encountered by any write call.
func (w *Writer) Err() error { return w.err }

// PutUvarint writes v as a LEB128 unsigned varint.
func (w *Writer) PutUvarint(v uint64) {
	if w.err != nil {
		return
	}
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	if _, err := w.w.Write(buf[:n]); err != nil {
		w.fail(err)
	}
}

// PutBytes writes a varint length prefix followed by b verbatim.
func (w *Writer) PutBytes(b []byte) {
	w.PutUvarint(uint64(len(b)))
	if w.err != nil {
		return
	}
	if _, err := w.w.Write(b); err != nil {
		w.fail(err)
	}
}

// PutUint8 writes a single byte.
func (w *Writer) PutUint8(v uint8) {
	if w.err != nil {
		return
	}
	if _, err := w.w.Write([]byte{v}); err != nil {
		w.fail(err)
	}
}

// PutFloat32 writes v as 4 little-endian bytes.
func (w *Writer) PutFloat32(v float32) {
	if w.err != nil {
		return
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
	if _, err := w.w.Write(buf[:]); err != nil {
		w.fail(err)
	}
}

// Reader is the primitive deserialization source handed to a
// [ComponentCodec]'s Decode method.
type Reader struct {
	r   io.ByteReader
	err error
}

// NewReader wraps r for use by component codecs. r is buffered
// internally if it does not already implement io.ByteReader.
func NewReader(r io.Reader) *Reader {
	if br, ok := r.(io.ByteReader); ok {
		return &Reader{r: br}
	}
	return &Reader{r: bufio.NewReader(r)}
}

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Err returns the first error encountered by any read call.
func (r *Reader) Err() error { return r.err }

// Uvarint reads a LEB128 unsigned varint.
func (r *Reader) Uvarint() uint64 {
	if r.err != nil {
		return 0
	}
	v, err := binary.ReadUvarint(r.r)
	if err != nil {
		r.fail(err)
		return 0
	}
	return v
}

// Bytes reads a varint length prefix followed by that many bytes.
func (r *Reader) Bytes() []byte {
	n := r.Uvarint()
	if r.err != nil {
		return nil
	}
	buf := make([]byte, n)
	for i := range buf {
		b, err := r.r.ReadByte()
		if err != nil {
			r.fail(err)
			return nil
		}
		buf[i] = b
	}
	return buf
}

// Uint8 reads a single byte.
func (r *Reader) Uint8() uint8 {
	if r.err != nil {
		return 0
	}
	b, err := r.r.ReadByte()
	if err != nil {
		r.fail(err)
		return 0
	}
	return b
}

// Float32 reads 4 little-endian bytes.
func (r *Reader) Float32() float32 {
	if r.err != nil {
		return 0
	}
	var buf [4]byte
	for i := range buf {
		b, err := r.r.ReadByte()
		if err != nil {
			r.fail(err)
			return 0
		}
		buf[i] = b
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[:]))
}

// encoder/decoder bundle the shared Writer/Reader with io-level
// plumbing used by World.Encode/Decode, kept unexported since callers
// only ever go through World's methods.
type encoder struct {
	w *Writer
}

type decoder struct {
	r *Reader
}

// Encode serializes every registered pool's live components, in
// registration order, following the layout:
//
//	varint(entity_count)
//	varint(set_count)
//	repeat set_count:
//	  varint(set_entity_count)
//	  if set_entity_count != 0:
//	    <component data, dense order>
//	    repeat set_entity_count: varint(entity id)
//
// entity_count is the number of distinct entities referenced by at
// least one component set; an entity with no components at all has
// nothing to round-trip through this format and is not written,
// matching the documented layout exactly (see DESIGN.md).
func (w *World) Encode(dst io.Writer) error {
	enc := &encoder{w: NewWriter(dst)}

	seen := make(map[EntityID]struct{})
	for _, p := range w.pools {
		if p == nil {
			continue
		}
		for i := 0; i < p.len(); i++ {
			seen[p.entityAt(i)] = struct{}{}
		}
	}

	enc.w.PutUvarint(uint64(len(seen)))
	enc.w.PutUvarint(uint64(len(w.pools)))

	for _, p := range w.pools {
		if p == nil {
			enc.w.PutUvarint(0)
			continue
		}
		n := p.len()
		enc.w.PutUvarint(uint64(n))
		if n == 0 {
			continue
		}
		for i := 0; i < n; i++ {
			p.encodeComponent(enc, i)
		}
		for i := 0; i < n; i++ {
			enc.w.PutUvarint(uint64(p.entityAt(i)))
		}
	}
	return enc.w.Err()
}

// Decode replaces w's contents with the world serialized by Encode.
// Pools referenced by the stream must already be registered (via
// [World.Register]) in the same order used to encode; an index beyond
// the locally registered set fails with [ErrInvalidComponent].
func (w *World) Decode(src io.Reader) error {
	dec := &decoder{r: NewReader(src)}

	wantEntities := dec.r.Uvarint()
	setCount := int(dec.r.Uvarint())
	if dec.r.Err() != nil {
		return dec.r.Err()
	}

	for _, p := range w.pools {
		if p != nil {
			p.resetEmpty()
		}
	}

	liveSet := make(map[EntityID]struct{}, wantEntities)
	type pending struct {
		pool componentPool
		ids  []EntityID
	}
	var work []pending

	for set := 0; set < setCount; set++ {
		n := int(dec.r.Uvarint())
		if dec.r.Err() != nil {
			return dec.r.Err()
		}
		if n == 0 {
			continue
		}
		if set >= len(w.pools) || w.pools[set] == nil {
			return &WorldError{Kind: ErrInvalidComponent}
		}
		p := w.pools[set]
		for i := 0; i < n; i++ {
			if err := p.decodeComponent(dec); err != nil {
				return err
			}
		}
		if dec.r.Err() != nil {
			return dec.r.Err()
		}
		ids := make([]EntityID, n)
		for i := 0; i < n; i++ {
			ids[i] = EntityID(dec.r.Uvarint())
			liveSet[ids[i]] = struct{}{}
		}
		if dec.r.Err() != nil {
			return dec.r.Err()
		}
		work = append(work, pending{pool: p, ids: ids})
	}

	liveIDs := make([]EntityID, 0, len(liveSet))
	for id := range liveSet {
		liveIDs = append(liveIDs, id)
	}
	w.entities.RebuildFromLive(liveIDs)

	for _, pw := range work {
		for _, id := range pw.ids {
			pw.pool.appendDecoded(id)
		}
	}
	return nil
}
