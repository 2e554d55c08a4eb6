package stream

import (
	"time"
)

// SchemaVersion is stamped onto every emitted event.
const SchemaVersion = 1

// EventKind names the type of a stream event.
type EventKind string

const (
	EventKindStart        EventKind = "start"
	EventKindFile         EventKind = "file"
	EventKindContentChunk EventKind = "content_chunk"
	EventKindSummary      EventKind = "summary"
	EventKindError        EventKind = "error"
	EventKindDone         EventKind = "done"
)

// Event is one step of a concatenation stream.
type Event struct {
	Version   int       `json:"version"`
	Kind      EventKind `json:"kind"`
	Command   string    `json:"command,omitempty"`
	Path      string    `json:"path,omitempty"`
	EmittedAt time.Time `json:"emittedAt,omitempty"`

	File    *FileEvent    `json:"file,omitempty"`
	Chunk   *ChunkEvent   `json:"chunk,omitempty"`
	Summary *SummaryEvent `json:"summary,omitempty"`
	Err     *ErrorEvent   `json:"error,omitempty"`
}

// FileEvent announces a selected file before its content.
type FileEvent struct {
	Path         string `json:"path"`
	RelativePath string `json:"relativePath"`
	Name         string `json:"name"`
	SizeBytes    int64  `json:"sizeBytes"`
	Tokens       int    `json:"tokens,omitempty"`
	Model        string `json:"model,omitempty"`
}

// ChunkEvent carries file content.
type ChunkEvent struct {
	Path    string `json:"path"`
	Index   int    `json:"index"`
	Data    string `json:"data"`
	IsFinal bool   `json:"isFinal"`
}

// SummaryEvent totals the streamed files.
type SummaryEvent struct {
	Files  int    `json:"files"`
	Bytes  int64  `json:"bytes"`
	Tokens int    `json:"tokens,omitempty"`
	Model  string `json:"model,omitempty"`
}

// ErrorEvent reports the failure that ended a stream.
type ErrorEvent struct {
	Message string `json:"message"`
}
