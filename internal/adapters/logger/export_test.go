// export_test.go exports private functions for white-box testing.
package logger

// ErrorEntry mirrors errorEntry for assertions.
type ErrorEntry struct {
	Message  string
	Metadata map[string]any
}

// CollectErrorEntries exposes collectErrorEntries.
func CollectErrorEntries(err error) []ErrorEntry {
	entries := collectErrorEntries(err)
	if entries == nil {
		return nil
	}
	out := make([]ErrorEntry, len(entries))
	for i, e := range entries {
		out[i] = ErrorEntry{Message: e.message, Metadata: e.metadata}
	}
	return out
}

// FormatError exposes the pretty error rendering.
func FormatError(err error) string {
	return formatErrorEntries(collectErrorEntries(err))
}
