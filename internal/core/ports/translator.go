package ports

// Translator rewrites alternate-syntax source into host-native source.
//
//go:generate mockgen -source=translator.go -destination=mocks/mock_translator.go -package=mocks
type Translator interface {
	// Translate rewrites symbols outside string and comment literals.
	Translate(text string) string

	// Fingerprint identifies the symbol table the translator applies.
	Fingerprint() uint64
}
