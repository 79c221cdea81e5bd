package builder

import (
	"errors"
	"strings"
)

// Sentinel errors for build preconditions.
var (
	// ErrNoModel indicates Build was called before a table was set.
	ErrNoModel = errors.New("sqlift: no table model set")
	// ErrMissingPrimaryKey indicates a table without a simple or composite primary key.
	ErrMissingPrimaryKey = errors.New("sqlift: table has no primary key")
)

// BuildError labels a failed entity build with the class and table it was for.
type BuildError struct {
	Class string
	Table string
	Cause error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	var b strings.Builder
	b.WriteString("sqlift: cannot build entity")
	if e.Class != "" {
		b.WriteString(" ")
		b.WriteString(e.Class)
	}
	if e.Table != "" {
		b.WriteString(" (table ")
		b.WriteString(e.Table)
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *BuildError) Unwrap() error {
	return e.Cause
}
