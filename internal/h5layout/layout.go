// Package h5layout checks that a hierarchical result container carries the
// top-level groups downstream tools expect.
package h5layout

import "errors"

// RequiredGroups are checked in this order.
var RequiredGroups = []string{
	"metadata",
	"initial",
	"evolution",
	"extraction",
	"waveforms",
	"diagnostics",
}

var (
	ErrUnavailable = errors.New("h5layout: built without hdf5 support (rebuild with -tags hdf5)")
	ErrMissing     = errors.New("h5layout: missing required group")
)

// Container is anything that can answer whether a top-level link exists.
type Container interface {
	Has(name string) bool
}

// Check returns the required groups absent from c, in required order.
func Check(c Container) []string {
	var missing []string
	for _, name := range RequiredGroups {
		if !c.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// MissingError reports the first absent group.
type MissingError struct {
	Group string
}

func (e *MissingError) Error() string { return "MISSING " + e.Group }

func (e *MissingError) Unwrap() error { return ErrMissing }

// Validate returns a *MissingError for the first absent group, or nil.
func Validate(c Container) error {
	if missing := Check(c); len(missing) > 0 {
		return &MissingError{Group: missing[0]}
	}
	return nil
}

// Groups is an in-memory Container.
type Groups map[string]bool

func (g Groups) Has(name string) bool { return g[name] }
