package ports

// Lifecycle collects cleanup callbacks that run once at process termination.
type Lifecycle interface {
	// Register adds a named hook. Hooks run in reverse registration order.
	Register(name string, fn func() error)
}
