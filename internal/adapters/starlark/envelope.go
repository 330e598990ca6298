package starlark

import (
	"github.com/cespare/xxhash/v2"
	"github.com/fxamacker/cbor/v2"
)

// envelope is the artifact payload: the encoded program plus an integrity checksum.
type envelope struct {
	_        struct{} `cbor:",toarray"`
	Path     string
	Lenient  bool
	Program  []byte
	Checksum uint64
}

var (
	encMode = mustEncMode()
	decMode = mustDecMode()
)

func mustEncMode() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

func mustDecMode() cbor.DecMode {
	dm, err := cbor.DecOptions{ExtraReturnErrors: cbor.ExtraDecErrorUnknownField}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}

func (e *envelope) checksum() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(e.Path)
	if e.Lenient {
		_, _ = d.Write([]byte{1})
	} else {
		_, _ = d.Write([]byte{0})
	}
	_, _ = d.Write(e.Program)
	return d.Sum64()
}

func (e *envelope) seal() {
	e.Checksum = e.checksum()
}

func (e *envelope) intact() bool {
	return e.Checksum == e.checksum()
}
