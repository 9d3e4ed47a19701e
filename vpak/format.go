package vpak

import (
	"encoding/binary"
	"io"
)

const (
	magic         = "VPAK"
	formatVersion = uint32(1)
	headerSize    = 4 + 4 + 4 + 4 + 8 // magic, version, flags, count, table_off
)

type header struct {
	version  uint32
	flags    uint32
	count    uint32
	tableOff uint64
}

func writeHeader(w io.WriterAt, h header) error {
	buf := make([]byte, headerSize)
	copy(buf[0:4], magic)
	binary.BigEndian.PutUint32(buf[4:8], h.version)
	binary.BigEndian.PutUint32(buf[8:12], h.flags)
	binary.BigEndian.PutUint32(buf[12:16], h.count)
	binary.BigEndian.PutUint64(buf[16:24], h.tableOff)
	_, err := w.WriteAt(buf, 0)
	return err
}

func readHeader(r io.ReaderAt) (header, error) {
	buf := make([]byte, headerSize)
	if _, err := r.ReadAt(buf, 0); err != nil {
		return header{}, err
	}
	if string(buf[0:4]) != magic {
		return header{}, &VpakError{Kind: ErrBadMagic}
	}
	h := header{
		version:  binary.BigEndian.Uint32(buf[4:8]),
		flags:    binary.BigEndian.Uint32(buf[8:12]),
		count:    binary.BigEndian.Uint32(buf[12:16]),
		tableOff: binary.BigEndian.Uint64(buf[16:24]),
	}
	if h.version != formatVersion {
		return header{}, &VpakError{Kind: ErrBadVersion}
	}
	return h, nil
}

// writeEntryHeader appends one entry's on-disk record: type u8,
// varint name length, name bytes, varint size, varint first_block.
func writeEntryHeader(buf []byte, e entryHeader) []byte {
	buf = append(buf, byte(e.Type))
	buf = appendUvarint(buf, uint64(len(e.Name)))
	buf = append(buf, e.Name...)
	buf = appendUvarint(buf, e.Size)
	buf = appendUvarint(buf, e.FirstBlock)
	return buf
}

func appendUvarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

// readEntryHeader parses one entry record from br, per writeEntryHeader.
func readEntryHeader(br io.ByteReader) (entryHeader, error) {
	typByte, err := br.ReadByte()
	if err != nil {
		return entryHeader{}, err
	}
	nameLen, err := binary.ReadUvarint(br)
	if err != nil {
		return entryHeader{}, err
	}
	name := make([]byte, nameLen)
	for i := range name {
		b, err := br.ReadByte()
		if err != nil {
			return entryHeader{}, err
		}
		name[i] = b
	}
	size, err := binary.ReadUvarint(br)
	if err != nil {
		return entryHeader{}, err
	}
	firstBlock, err := binary.ReadUvarint(br)
	if err != nil {
		return entryHeader{}, err
	}
	return entryHeader{Type: EntryType(typByte), Name: string(name), Size: size, FirstBlock: firstBlock}, nil
}
