package output

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/temirov/ctxpick/internal/services/stream"
	"github.com/temirov/ctxpick/internal/types"
)

// rawStreamRenderer writes the concatenated blob to stdout. The summary line,
// when requested, goes to stderr so it never becomes part of the blob. Error
// events are not printed; the stream error reaches the caller.
type rawStreamRenderer struct {
	stdout         io.Writer
	stderr         io.Writer
	headerFormat   string
	includeSummary bool
	pendingHeaders map[string]string
	summary        *stream.SummaryEvent
}

// NewRawStreamRenderer returns the plain-text concatenation renderer.
func NewRawStreamRenderer(stdout, stderr io.Writer, headerFormat string, includeSummary bool) StreamRenderer {
	return &rawStreamRenderer{
		stdout:         stdout,
		stderr:         stderr,
		headerFormat:   headerFormat,
		includeSummary: includeSummary,
		pendingHeaders: map[string]string{},
	}
}

func (renderer *rawStreamRenderer) Handle(event stream.Event) error {
	switch event.Kind {
	case stream.EventKindFile:
		if event.File != nil {
			renderer.pendingHeaders[event.File.Path] = FormatFileHeader(renderer.headerFormat, event.File.RelativePath)
		}
	case stream.EventKindContentChunk:
		if event.Chunk == nil {
			return nil
		}
		header, exists := renderer.pendingHeaders[event.Chunk.Path]
		if !exists {
			return nil
		}
		delete(renderer.pendingHeaders, event.Chunk.Path)
		return WriteConcatenatedFile(renderer.stdout, header, event.Chunk.Data)
	case stream.EventKindSummary:
		renderer.summary = event.Summary
	}
	return nil
}

func (renderer *rawStreamRenderer) Flush() error {
	if !renderer.includeSummary || renderer.stderr == nil || renderer.summary == nil {
		return nil
	}
	outputSummary := &types.OutputSummary{
		TotalFiles:  renderer.summary.Files,
		TotalSize:   humanize.IBytes(uint64(renderer.summary.Bytes)),
		TotalTokens: renderer.summary.Tokens,
		Model:       renderer.summary.Model,
	}
	_, err := fmt.Fprintln(renderer.stderr, FormatSummaryLine(outputSummary))
	return err
}
