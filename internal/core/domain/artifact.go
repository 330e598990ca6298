package domain

import (
	"encoding/binary"
)

// HeaderSize is the size of the fixed compiled-artifact header.
const HeaderSize = 16

// ArtifactFlags is the flag word of a compiled-artifact header.
type ArtifactFlags uint32

const (
	// FlagHashVerified marks an artifact whose source hash was recorded at write time.
	FlagHashVerified ArtifactFlags = 1 << iota
	// FlagLenient marks an artifact produced by the fallback compile.
	FlagLenient

	knownFlags = FlagHashVerified | FlagLenient
)

// Has reports whether all bits of f are set.
func (a ArtifactFlags) Has(f ArtifactFlags) bool {
	return a&f == f
}

// HostIdentity identifies the compiler that produced an artifact.
type HostIdentity struct {
	Implementation string
	Version        string
	Magic          [4]byte
}

// Namespace is the cache subdirectory name for the host.
func (h HostIdentity) Namespace() string {
	return h.Implementation + "-" + h.Version
}

// ArtifactKey names the inputs an artifact was compiled from.
type ArtifactKey struct {
	// SourceHash is the xxhash64 of the pre-translation source.
	SourceHash uint64
	// Table is the fingerprint of the symbol table used for translation.
	Table uint64
}

// Magic folds the table fingerprint into the host magic, so an artifact
// translated with another symbol table fails the magic check.
func (k ArtifactKey) Magic(host [4]byte) [4]byte {
	fold := uint32(k.Table) ^ uint32(k.Table>>32)
	var m [4]byte
	binary.LittleEndian.PutUint32(m[:], binary.LittleEndian.Uint32(host[:])^fold)
	return m
}

// ArtifactHeader is the decoded 16-byte artifact header.
type ArtifactHeader struct {
	Magic      [4]byte
	Flags      ArtifactFlags
	SourceHash uint64
}

// Encode returns the wire form: magic, the little-endian flag word, the
// little-endian hash. The flag word carries the flags in its low half and
// their complement in its high half.
func (h ArtifactHeader) Encode() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[:4], h.Magic[:])
	low := uint16(h.Flags)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(low)|uint32(^low)<<16)
	binary.LittleEndian.PutUint64(buf[8:16], h.SourceHash)
	return buf
}

// ParseArtifactHeader decodes the header at the start of data. It fails when
// data is too short or the flag word does not carry its complement.
func ParseArtifactHeader(data []byte) (ArtifactHeader, bool) {
	var h ArtifactHeader
	if len(data) < HeaderSize {
		return h, false
	}
	word := binary.LittleEndian.Uint32(data[4:8])
	low, high := uint16(word), uint16(word>>16)
	if high != ^low {
		return h, false
	}
	copy(h.Magic[:], data[:4])
	h.Flags = ArtifactFlags(low)
	h.SourceHash = binary.LittleEndian.Uint64(data[8:16])
	return h, true
}

// Usable reports whether an artifact with this header may be trusted for the
// given magic and source hash. Unknown flag bits make it unusable.
func (h ArtifactHeader) Usable(magic [4]byte, sourceHash uint64) bool {
	return h.Magic == magic &&
		h.Flags.Has(FlagHashVerified) &&
		h.Flags&^knownFlags == 0 &&
		h.SourceHash == sourceHash
}
