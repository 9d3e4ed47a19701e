package vpak

import (
	"bufio"
	"encoding/binary"
	"io"
)

// blockTerminator marks a block as the last in its entry's chain. It
// is chosen as all-ones rather than zero because zero collides with
// the archive header's own file offset, which is never itself a valid
// block position but is a more natural "looks uninitialized" trap to
// avoid.
const blockTerminator = ^uint64(0)

// linkFieldSize is the fixed width of the link field between blocks,
// resolving the open question left by the original format: the spec
// requires only that reader and writer agree, so this implementation
// fixes it at 8 bytes, little-endian.
const linkFieldSize = 8

// buildBlock serializes one block: a varint-prefixed Zstd frame
// followed by an 8-byte link field initialized to the terminator
// value. The frame-length prefix is this implementation's own
// addition over the spec's "raw Zstd frames" wording, needed because
// consecutive frames are interleaved with non-frame link bytes, so a
// reader must know exactly where one frame ends before the link field
// begins (see DESIGN.md).
func buildBlock(frame []byte) (block []byte, linkFieldOffset int) {
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(frame)))

	block = make([]byte, 0, n+len(frame)+linkFieldSize)
	block = append(block, lenBuf[:n]...)
	block = append(block, frame...)
	linkFieldOffset = len(block)
	var link [linkFieldSize]byte
	binary.LittleEndian.PutUint64(link[:], blockTerminator)
	block = append(block, link[:]...)
	return block, linkFieldOffset
}

// readBlock reads one block starting at absolute offset off in r,
// returning its compressed frame bytes and the link to the next block
// (or blockTerminator).
func readBlock(r io.ReaderAt, off int64, fileSize int64) (frame []byte, next uint64, blockLen int64, err error) {
	sr := io.NewSectionReader(r, off, fileSize-off)
	br := bufio.NewReaderSize(sr, 64)

	frameLen, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, 0, 0, err
	}
	prefixLen := uvarintLen(frameLen)

	frame = make([]byte, frameLen)
	if _, err := io.ReadFull(br, frame); err != nil {
		return nil, 0, 0, err
	}

	var link [linkFieldSize]byte
	if _, err := io.ReadFull(br, link[:]); err != nil {
		return nil, 0, 0, err
	}
	next = binary.LittleEndian.Uint64(link[:])

	blockLen = int64(prefixLen) + int64(frameLen) + linkFieldSize
	return frame, next, blockLen, nil
}

func uvarintLen(v uint64) int {
	var buf [binary.MaxVarintLen64]byte
	return binary.PutUvarint(buf[:], v)
}
