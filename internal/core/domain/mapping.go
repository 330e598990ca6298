package domain

import (
	"sort"
	"strings"
	"unicode"

	"go.trai.ch/zerr"
)

// defaultSymbols maps host-native keywords and builtins to their alternate symbols.
var defaultSymbols = map[string]string{
	"False": "⊥", "None": "Ø", "True": "✓", "and": "∧", "as": "↦",
	"assert": "‼", "async": "⟳", "await": "⌛", "break": "⇲", "class": "ℂ",
	"continue": "⇉", "def": "ƒ", "del": "∂", "elif": "⤷", "else": "⋄",
	"except": "⛒", "finally": "⇗", "for": "∀", "from": "←", "global": "⟁",
	"if": "¿", "import": "⇒", "in": "∈", "is": "≡", "lambda": "λ",
	"nonlocal": "∇", "not": "¬", "or": "∨", "pass": "⋯", "raise": "↑",
	"return": "⟲", "try": "∴", "while": "↻", "with": "∥", "yield": "⟰",
	"print": "π", "match": "⟷", "case": "▷",
	"len": "ℓ", "range": "⟪", "enumerate": "№", "zip": "⨅",
	"sum": "∑", "max": "⭱", "min": "⭳", "abs": "∣",
	"type": "τ",
}

// Mapping is a bijective table between host-native tokens and alternate symbols.
// A Mapping is not safe for concurrent mutation; translators take a snapshot.
type Mapping struct {
	toAlt    map[string]string
	toNative map[string]string
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{
		toAlt:    make(map[string]string),
		toNative: make(map[string]string),
	}
}

// DefaultMapping returns a fresh copy of the built-in symbol table.
func DefaultMapping() *Mapping {
	m := NewMapping()
	for native, alt := range defaultSymbols {
		m.toAlt[native] = alt
		m.toNative[alt] = native
	}
	return m
}

// DefaultSymbols returns a copy of the built-in native to alternate table.
func DefaultSymbols() map[string]string {
	out := make(map[string]string, len(defaultSymbols))
	for k, v := range defaultSymbols {
		out[k] = v
	}
	return out
}

// Clone returns an independent copy of m.
func (m *Mapping) Clone() *Mapping {
	c := NewMapping()
	for native, alt := range m.toAlt {
		c.toAlt[native] = alt
		c.toNative[alt] = native
	}
	return c
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	return len(m.toAlt)
}

// Native returns the host-native token for an alternate symbol.
func (m *Mapping) Native(alt string) (string, bool) {
	native, ok := m.toNative[alt]
	return native, ok
}

// Alt returns the alternate symbol for a host-native token.
func (m *Mapping) Alt(native string) (string, bool) {
	alt, ok := m.toAlt[native]
	return alt, ok
}

// Symbols returns every alternate symbol, longest first, ties broken lexically.
func (m *Mapping) Symbols() []string {
	syms := make([]string, 0, len(m.toNative))
	for alt := range m.toNative {
		syms = append(syms, alt)
	}
	sort.Slice(syms, func(i, j int) bool {
		li, lj := len(syms[i]), len(syms[j])
		if li != lj {
			return li > lj
		}
		return syms[i] < syms[j]
	})
	return syms
}

// Entries returns a copy of the native to alternate table.
func (m *Mapping) Entries() map[string]string {
	out := make(map[string]string, len(m.toAlt))
	for k, v := range m.toAlt {
		out[k] = v
	}
	return out
}

// Override installs native -> alt. An existing entry that already uses alt is
// evicted first, and the previous symbol of native stops translating.
func (m *Mapping) Override(native, alt string) error {
	alt = strings.TrimSpace(alt)
	if !IsIdentifier(native) {
		return zerr.With(zerr.Wrap(ErrInvalidSymbol, "host-native token is not an identifier"), "token", native)
	}
	if alt == "" || strings.IndexFunc(alt, unicode.IsSpace) >= 0 {
		return zerr.With(zerr.Wrap(ErrInvalidSymbol, "symbol is empty or contains whitespace"), "token", native)
	}

	if current, ok := m.toAlt[native]; ok {
		if current == alt {
			return nil
		}
		delete(m.toNative, current)
	}
	if prior, ok := m.toNative[alt]; ok {
		delete(m.toAlt, prior)
	}

	m.toAlt[native] = alt
	m.toNative[alt] = native
	return nil
}

// SymbolIssue describes a custom entry that was not applied.
type SymbolIssue struct {
	Native string
	Alt    string
	Err    error
}

// ApplyCustom applies custom native -> alt overrides in sorted key order.
// Malformed entries and entries reusing a symbol already claimed earlier in the
// same batch are skipped and reported; valid entries are applied regardless.
func (m *Mapping) ApplyCustom(symbols map[string]string) []SymbolIssue {
	natives := make([]string, 0, len(symbols))
	for native := range symbols {
		natives = append(natives, native)
	}
	sort.Strings(natives)

	var issues []SymbolIssue
	claimed := make(map[string]string, len(symbols))
	for _, native := range natives {
		alt := strings.TrimSpace(symbols[native])
		if owner, ok := claimed[alt]; ok {
			issues = append(issues, SymbolIssue{
				Native: native,
				Alt:    alt,
				Err:    zerr.With(zerr.Wrap(ErrInvalidSymbol, "symbol already used"), "by", owner),
			})
			continue
		}
		if err := m.Override(native, alt); err != nil {
			issues = append(issues, SymbolIssue{Native: native, Alt: alt, Err: err})
			continue
		}
		claimed[alt] = native
	}
	return issues
}

// IsIdentifier reports whether s is a valid bare identifier: a letter or
// underscore followed by letters, digits or underscores.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && (unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)) {
			continue
		}
		return false
	}
	return true
}

// IsWordRune reports whether r may appear inside an identifier.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) ||
		unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)
}
