package starlark

import (
	"bytes"
	"encoding/binary"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.starlark.net/starlark"
	"go.trai.ch/phi/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	// Implementation is the host implementation name used to namespace artifacts.
	Implementation = "starlark"

	modulePath = "go.starlark.net"
	sampleName = "sample" + domain.SourceExt
	sampleText = "x = 1\n"
)

// hostVersion returns the go.starlark.net version linked into the binary.
func hostVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "devel"
	}
	for _, dep := range info.Deps {
		if dep.Path != modulePath {
			continue
		}
		if dep.Replace != nil && dep.Replace.Version != "" {
			return sanitize(dep.Replace.Version)
		}
		if dep.Version != "" {
			return sanitize(dep.Version)
		}
	}
	return "devel"
}

func sanitize(v string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, v)
}

// identify derives the host identity. The magic changes whenever the
// implementation, its version, the Go runtime or the bytecode encoding changes.
func identify() (domain.HostIdentity, error) {
	_, sample, err := starlark.SourceProgramOptions(fileOptions(domain.DialectStrict), sampleName, sampleText, isPredeclared)
	if err != nil {
		return domain.HostIdentity{}, zerr.Wrap(err, "failed to compile identity sample")
	}
	var buf bytes.Buffer
	if err := sample.Write(&buf); err != nil {
		return domain.HostIdentity{}, zerr.Wrap(err, "failed to encode identity sample")
	}

	version := hostVersion()
	d := xxhash.New()
	_, _ = d.WriteString(Implementation)
	_, _ = d.WriteString(version)
	_, _ = d.WriteString(runtime.Version())
	_, _ = d.Write(buf.Bytes())

	var sum [8]byte
	binary.BigEndian.PutUint64(sum[:], d.Sum64())

	id := domain.HostIdentity{Implementation: Implementation, Version: version}
	copy(id.Magic[:], sum[:4])
	return id, nil
}
