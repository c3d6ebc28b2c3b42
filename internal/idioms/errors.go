package idioms

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one of them.
var (
	ErrNotFound = errors.New("source not found")
	ErrParse    = errors.New("invalid polyphone mapping")
	ErrWrite    = errors.New("output not writable")
	ErrVerify   = errors.New("output verification failed")
)

// FileError records the file operation that failed and its error kind.
type FileError struct {
	Op   string // read, parse, write
	Path string
	Kind error // one of the Err* kinds above
	Err  error // underlying cause, may be nil
}

func (e *FileError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause, so errors.Is matches
// ErrNotFound as well as fs.ErrNotExist.
func (e *FileError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
