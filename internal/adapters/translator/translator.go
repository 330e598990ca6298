// Package translator rewrites alternate-syntax source into host-native source.
package translator

import (
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/phi/internal/core/domain"
	"go.trai.ch/phi/internal/core/ports"
)

var _ ports.Translator = (*Translator)(nil)

// literalPattern matches string literals, with optional prefixes, and end-of-line comments.
var literalPattern = regexp.MustCompile(
	`(?s)(?:[rRuUbBfF]{1,2})?(?:"""(?:.*?)"""|'''(?:.*?)'''|"(?:[^"\\\n]|\\.)*"|'(?:[^'\\\n]|\\.)*')|#[^\n]*`,
)

// Translator rewrites symbols outside literals. It is safe for concurrent use.
type Translator struct {
	mu      sync.Mutex
	mapping *domain.Mapping
	matcher *matcher
}

// New creates a Translator for a snapshot of m.
func New(m *domain.Mapping) *Translator {
	return &Translator{mapping: m.Clone()}
}

// SetMapping replaces the mapping. The matcher is rebuilt on next use.
func (t *Translator) SetMapping(m *domain.Mapping) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mapping = m.Clone()
	t.matcher = nil
}

func (t *Translator) compiled() *matcher {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.matcher == nil {
		t.matcher = compile(t.mapping)
	}
	return t.matcher
}

// Fingerprint identifies the symbol table. Equal tables give equal fingerprints.
func (t *Translator) Fingerprint() uint64 {
	return t.compiled().fingerprint
}

// Translate rewrites text, leaving string and comment literals untouched.
func (t *Translator) Translate(text string) string {
	m := t.compiled()
	if m.empty() {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, span := range literalPattern.FindAllStringIndex(text, -1) {
		m.replace(&b, text[last:span[0]])
		b.WriteString(text[span[0]:span[1]])
		last = span[1]
	}
	m.replace(&b, text[last:])
	return b.String()
}

type token struct {
	symbol string
	native string
	// word tokens only match between non-word runes.
	word bool
}

// matcher dispatches on the first rune of a candidate position. Tokens sharing
// a first rune are ordered longest first.
type matcher struct {
	byRune      map[rune][]token
	fingerprint uint64
}

func compile(m *domain.Mapping) *matcher {
	mt := &matcher{byRune: make(map[rune][]token)}
	d := xxhash.New()
	for _, sym := range m.Symbols() {
		native, _ := m.Native(sym)
		_, _ = d.WriteString(sym)
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(native)
		_, _ = d.WriteString("\x00")
		r, _ := utf8.DecodeRuneInString(sym)
		mt.byRune[r] = append(mt.byRune[r], token{
			symbol: sym,
			native: native,
			word:   domain.IsIdentifier(sym),
		})
	}
	mt.fingerprint = d.Sum64()
	return mt
}

func (m *matcher) empty() bool {
	return len(m.byRune) == 0
}

func (m *matcher) replace(b *strings.Builder, code string) {
	prev := utf8.RuneError
	for i := 0; i < len(code); {
		r, size := utf8.DecodeRuneInString(code[i:])
		if tok, ok := m.match(code, i, r, prev); ok {
			b.WriteString(tok.native)
			i += len(tok.symbol)
			prev, _ = utf8.DecodeLastRuneInString(tok.symbol)
			continue
		}
		b.WriteString(code[i : i+size])
		i += size
		prev = r
	}
}

func (m *matcher) match(code string, i int, r, prev rune) (token, bool) {
	for _, tok := range m.byRune[r] {
		if !strings.HasPrefix(code[i:], tok.symbol) {
			continue
		}
		if tok.word {
			if i > 0 && domain.IsWordRune(prev) {
				continue
			}
			if next, _ := utf8.DecodeRuneInString(code[i+len(tok.symbol):]); i+len(tok.symbol) < len(code) && domain.IsWordRune(next) {
				continue
			}
		}
		return tok, true
	}
	return token{}, false
}
