package output

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/temirov/ctxpick/internal/services/stream"
	"github.com/temirov/ctxpick/internal/types"
)

const (
	jsonDocumentOpen  = "{\n  \"files\": ["
	jsonFilesClose    = "\n  ]"
	jsonDocumentClose = "\n}\n"
	jsonSummaryKey    = ",\n  \"summary\": "
	jsonFileIndent    = "    "
)

// jsonStreamRenderer writes one JSON document with a files array, appending
// each file as soon as its content arrives.
type jsonStreamRenderer struct {
	stdout       io.Writer
	opened       bool
	fileCount    int
	pendingFiles map[string]*stream.FileEvent
	summary      *types.OutputSummary
}

type jsonFilePayload struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"sizeBytes"`
	Tokens    int    `json:"tokens,omitempty"`
	Content   string `json:"content"`
}

// NewJSONStreamRenderer returns a renderer producing {"files": [...], "summary": {...}}.
func NewJSONStreamRenderer(stdout io.Writer) StreamRenderer {
	return &jsonStreamRenderer{
		stdout:       stdout,
		pendingFiles: map[string]*stream.FileEvent{},
	}
}

func (renderer *jsonStreamRenderer) Handle(event stream.Event) error {
	switch event.Kind {
	case stream.EventKindStart:
		return renderer.open()
	case stream.EventKindFile:
		if event.File != nil {
			renderer.pendingFiles[event.File.Path] = event.File
		}
	case stream.EventKindContentChunk:
		return renderer.handleChunk(event.Chunk)
	case stream.EventKindSummary:
		if event.Summary != nil {
			renderer.summary = &types.OutputSummary{
				TotalFiles:  event.Summary.Files,
				TotalSize:   humanize.IBytes(uint64(event.Summary.Bytes)),
				TotalTokens: event.Summary.Tokens,
				Model:       event.Summary.Model,
			}
		}
	}
	return nil
}

func (renderer *jsonStreamRenderer) open() error {
	if renderer.opened {
		return nil
	}
	renderer.opened = true
	_, err := io.WriteString(renderer.stdout, jsonDocumentOpen)
	return err
}

func (renderer *jsonStreamRenderer) handleChunk(chunk *stream.ChunkEvent) error {
	if chunk == nil {
		return nil
	}
	file, exists := renderer.pendingFiles[chunk.Path]
	if !exists {
		return nil
	}
	delete(renderer.pendingFiles, chunk.Path)
	if err := renderer.open(); err != nil {
		return err
	}
	encoded, encodeErr := json.MarshalIndent(jsonFilePayload{
		Path:      file.RelativePath,
		SizeBytes: file.SizeBytes,
		Tokens:    file.Tokens,
		Content:   chunk.Data,
	}, jsonFileIndent, indentSpacer)
	if encodeErr != nil {
		return encodeErr
	}
	separator := "\n" + jsonFileIndent
	if renderer.fileCount > 0 {
		separator = "," + separator
	}
	renderer.fileCount++
	_, err := io.WriteString(renderer.stdout, separator+string(encoded))
	return err
}

func (renderer *jsonStreamRenderer) Flush() error {
	if err := renderer.open(); err != nil {
		return err
	}
	var buffer bytes.Buffer
	buffer.WriteString(jsonFilesClose)
	if renderer.summary != nil {
		encoded, encodeErr := json.MarshalIndent(renderer.summary, indentSpacer, indentSpacer)
		if encodeErr != nil {
			return encodeErr
		}
		buffer.WriteString(jsonSummaryKey)
		buffer.Write(encoded)
	}
	buffer.WriteString(jsonDocumentClose)
	_, err := renderer.stdout.Write(buffer.Bytes())
	return err
}
