package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/phi/internal/core/domain"
)

func TestDefaultMapping_IsBijective(t *testing.T) {
	m := domain.DefaultMapping()
	seen := make(map[string]string)
	for native, alt := range m.Entries() {
		owner, dup := seen[alt]
		assert.Falsef(t, dup, "symbol %q used by %q and %q", alt, owner, native)
		seen[alt] = native

		got, ok := m.Native(alt)
		require.True(t, ok)
		assert.Equal(t, native, got)
	}
	assert.Equal(t, len(seen), m.Len())
}

func TestMapping_Override(t *testing.T) {
	tests := []struct {
		name       string
		native     string
		alt        string
		wantErr    bool
		wantNative map[string]string
		wantGone   []string
	}{
		{
			name:       "replaces symbol of existing token",
			native:     "print",
			alt:        "say",
			wantNative: map[string]string{"say": "print"},
			wantGone:   []string{"π"},
		},
		{
			name:       "evicts token already using symbol",
			native:     "display",
			alt:        "π",
			wantNative: map[string]string{"π": "display"},
		},
		{
			name:       "trims symbol",
			native:     "lambda",
			alt:        "  ⩘ ",
			wantNative: map[string]string{"⩘": "lambda"},
			wantGone:   []string{"λ"},
		},
		{
			name:    "rejects non-identifier token",
			native:  "not-a-name",
			alt:     "☃",
			wantErr: true,
		},
		{
			name:    "rejects leading digit",
			native:  "1abc",
			alt:     "☃",
			wantErr: true,
		},
		{
			name:    "rejects empty symbol",
			native:  "print",
			alt:     "   ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := domain.DefaultMapping()
			before := m.Len()
			err := m.Override(tt.native, tt.alt)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrInvalidSymbol))
				assert.Equal(t, before, m.Len())
				return
			}
			require.NoError(t, err)
			for alt, native := range tt.wantNative {
				got, ok := m.Native(alt)
				require.True(t, ok)
				assert.Equal(t, native, got)
			}
			for _, alt := range tt.wantGone {
				_, ok := m.Native(alt)
				assert.False(t, ok)
			}
		})
	}
}

func TestMapping_OverrideEvictsPriorOwner(t *testing.T) {
	m := domain.DefaultMapping()
	require.NoError(t, m.Override("display", "π"))

	_, ok := m.Alt("print")
	assert.False(t, ok, "print lost its symbol")
	alt, ok := m.Alt("display")
	require.True(t, ok)
	assert.Equal(t, "π", alt)
}

func TestMapping_ApplyCustom(t *testing.T) {
	m := domain.DefaultMapping()
	issues := m.ApplyCustom(map[string]string{
		"bad name": "☃",
		"alpha":    "α",
		"beta":     "α",
		"gamma":    "γ",
	})

	require.Len(t, issues, 2)
	assert.Equal(t, "bad name", issues[0].Native)
	assert.Equal(t, "beta", issues[1].Native)
	for _, issue := range issues {
		assert.True(t, errors.Is(issue.Err, domain.ErrInvalidSymbol))
	}

	native, ok := m.Native("α")
	require.True(t, ok)
	assert.Equal(t, "alpha", native)
	native, ok = m.Native("γ")
	require.True(t, ok)
	assert.Equal(t, "gamma", native)
}

func TestMapping_SymbolsLongestFirst(t *testing.T) {
	m := domain.NewMapping()
	require.NoError(t, m.Override("a", "="))
	require.NoError(t, m.Override("b", "=="))
	require.NoError(t, m.Override("c", "==="))

	assert.Equal(t, []string{"===", "==", "="}, m.Symbols())
}

func TestMapping_Clone(t *testing.T) {
	m := domain.DefaultMapping()
	c := m.Clone()
	require.NoError(t, c.Override("print", "say"))

	alt, _ := m.Alt("print")
	assert.Equal(t, "π", alt)
}

func TestIsIdentifier(t *testing.T) {
	valid := []string{"x", "_", "print", "λ", "ƒ", "τ", "snake_case", "a1"}
	invalid := []string{"", "1a", "a-b", "a b", "¿", "∀", "π(x)"}

	for _, s := range valid {
		assert.Truef(t, domain.IsIdentifier(s), "%q", s)
	}
	for _, s := range invalid {
		assert.Falsef(t, domain.IsIdentifier(s), "%q", s)
	}
}
