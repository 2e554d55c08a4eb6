package output

import (
	"github.com/temirov/ctxpick/internal/services/stream"
)

// StreamRenderer consumes stream events and writes them in one output format.
type StreamRenderer interface {
	Handle(event stream.Event) error
	Flush() error
}
