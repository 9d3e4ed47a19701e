package vpak

// EntryType classifies a vpak entry's payload, per §6.
type EntryType uint8

const (
	// EntryBlob is raw, uninterpreted bytes.
	EntryBlob EntryType = iota
	// EntryImage is a fixed image header (format/filter/wrap/extent/
	// mip count) followed by mip data.
	EntryImage
	// EntryWorld is an [github.com/vull-engine/vull/ecs.World] binary
	// encoding.
	EntryWorld
)

func (t EntryType) String() string {
	switch t {
	case EntryBlob:
		return "Blob"
	case EntryImage:
		return "Image"
	case EntryWorld:
		return "World"
	default:
		return "Unknown"
	}
}

// entryHeader is the on-disk record for one archive entry, written in
// PHF bucket order at the entry table.
type entryHeader struct {
	Type       EntryType
	Name       string
	Size       uint64 // uncompressed payload size
	FirstBlock uint64 // absolute file offset of the entry's first block
}

// Stat is the metadata [Reader.Stat] returns for an entry.
type Stat struct {
	Name string
	Type EntryType
	Size uint64
}

// ImageHeader is the fixed-width header preceding an EntryImage
// entry's mip data, per §6.
type ImageHeader struct {
	Format   uint8
	MinFilter uint8
	MagFilter uint8
	WrapU    uint8
	WrapV    uint8
	Width    uint64
	Height   uint64
	MipCount uint64
}
