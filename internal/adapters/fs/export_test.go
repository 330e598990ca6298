// export_test.go exports private hooks for white-box testing.
package fs

import "os"

// SetOpenFunc replaces the function used to open source files.
func (r *Reader) SetOpenFunc(open func(name string) (*os.File, error)) {
	r.open = open
}

// IsTransient exports the transient error classification.
var IsTransient = isTransient
