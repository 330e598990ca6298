package domain

// Dialect selects how permissive the host compiler is.
type Dialect int

const (
	// DialectStrict is the primary compile.
	DialectStrict Dialect = iota
	// DialectLenient is the fallback compile, tried once after a strict failure.
	DialectLenient
)

// String returns the dialect name.
func (d Dialect) String() string {
	if d == DialectLenient {
		return "lenient"
	}
	return "strict"
}

// Module is a loaded module instance.
type Module struct {
	Name string
	Spec *LoadSpec
	// Main marks the entry module, which executes under MainModuleName.
	Main bool
	// Args are the program arguments exposed to the entry module.
	Args []string
	// Globals holds the host-specific namespace after execution.
	Globals any
}

// ExecName is the name the module sees for itself.
func (m *Module) ExecName() string {
	if m.Main {
		return MainModuleName
	}
	return m.Name
}
