// Package clipboard hands concatenated output to the system clipboard.
package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"
)

// Copier copies textual data to a clipboard.
type Copier interface {
	Copy(text string) error
}

// CopierFunc adapts a function to the Copier interface.
type CopierFunc func(text string) error

// Copy calls function(text).
func (function CopierFunc) Copy(text string) error {
	return function(text)
}

// Service implements Copier using the system clipboard.
type Service struct{}

// NewService constructs the system clipboard Copier.
func NewService() *Service {
	return &Service{}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	return clipboard.WriteAll(text)
}

// ErrUnavailable reports that no clipboard utility is installed.
var ErrUnavailable = errors.New("clipboard unavailable")

// Available reports whether a system clipboard utility is present.
func Available() bool {
	return !clipboard.Unsupported
}

var (
	_ Copier = (*Service)(nil)
	_ Copier = CopierFunc(nil)
)
