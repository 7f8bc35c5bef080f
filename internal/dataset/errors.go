package dataset

import "fmt"

// ParseError reports a malformed annotation record. The run aborts on the
// first one: a corrupt label file must surface rather than silently skew
// the split.
type ParseError struct {
	File string
	Line int // 1-based; 0 when the file itself could not be read
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ConfigError reports contradictory or unsatisfiable run parameters.
// It is always raised before any pool mutation.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}
