package filestore

import "fmt"

// LoadError reports a data file that exists but could not be inspected or parsed.
type LoadError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *LoadError) Unwrap() error {
	return e.Err
}
