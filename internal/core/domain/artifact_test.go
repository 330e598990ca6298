package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/phi/internal/core/domain"
)

func TestArtifactHeader_RoundTrip(t *testing.T) {
	h := domain.ArtifactHeader{
		Magic:      [4]byte{0xde, 0xad, 0xbe, 0xef},
		Flags:      domain.FlagHashVerified | domain.FlagLenient,
		SourceHash: 0x0102030405060708,
	}

	buf := h.Encode()
	require.Len(t, buf, domain.HeaderSize)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, buf[:4])
	assert.Equal(t, []byte{0x03, 0, 0xfc, 0xff}, buf[4:8])
	assert.Equal(t, []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}, buf[8:16])

	got, ok := domain.ParseArtifactHeader(append(buf, 0xff))
	require.True(t, ok)
	assert.Equal(t, h, got)
}

func TestParseArtifactHeader_Short(t *testing.T) {
	_, ok := domain.ParseArtifactHeader(make([]byte, domain.HeaderSize-1))
	assert.False(t, ok)
}

func TestParseArtifactHeader_FlagWordFlips(t *testing.T) {
	good := domain.ArtifactHeader{Flags: domain.FlagHashVerified}.Encode()

	for i := 4; i < 8; i++ {
		for bit := 0; bit < 8; bit++ {
			data := append([]byte(nil), good...)
			data[i] ^= 1 << bit
			_, ok := domain.ParseArtifactHeader(data)
			assert.False(t, ok, "byte %d bit %d", i, bit)
		}
	}
}

func TestArtifactHeader_Usable(t *testing.T) {
	magic := [4]byte{1, 2, 3, 4}
	base := domain.ArtifactHeader{Magic: magic, Flags: domain.FlagHashVerified, SourceHash: 42}

	tests := []struct {
		name   string
		mutate func(*domain.ArtifactHeader)
		want   bool
	}{
		{name: "matching", mutate: func(*domain.ArtifactHeader) {}, want: true},
		{name: "lenient still usable", mutate: func(h *domain.ArtifactHeader) { h.Flags |= domain.FlagLenient }, want: true},
		{name: "magic mismatch", mutate: func(h *domain.ArtifactHeader) { h.Magic[0] ^= 0xff }, want: false},
		{name: "verified bit unset", mutate: func(h *domain.ArtifactHeader) { h.Flags = 0 }, want: false},
		{name: "hash mismatch", mutate: func(h *domain.ArtifactHeader) { h.SourceHash++ }, want: false},
		{name: "unknown flag bit", mutate: func(h *domain.ArtifactHeader) { h.Flags |= 1 << 5 }, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := base
			tt.mutate(&h)
			assert.Equal(t, tt.want, h.Usable(magic, 42))
		})
	}
}

func TestArtifactKey_Magic(t *testing.T) {
	host := [4]byte{1, 2, 3, 4}

	assert.Equal(t, host, domain.ArtifactKey{SourceHash: 9}.Magic(host), "a zero table keeps the host magic")

	a := domain.ArtifactKey{Table: 0x1111}.Magic(host)
	b := domain.ArtifactKey{Table: 0x2222}.Magic(host)
	assert.NotEqual(t, host, a)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, domain.ArtifactKey{SourceHash: 1, Table: 0x1111}.Magic(host))
}

func TestHostIdentity_Namespace(t *testing.T) {
	id := domain.HostIdentity{Implementation: "starlark", Version: "v1.2.3"}
	assert.Equal(t, "starlark-v1.2.3", id.Namespace())
}
