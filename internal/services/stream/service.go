// Package stream turns a list of selected files into an ordered event stream
// consumed by the output renderers.
package stream

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/ctxpick/internal/tokenizer"
	"github.com/temirov/ctxpick/internal/types"
	"github.com/temirov/ctxpick/internal/utils"
)

const (
	errorReadFileFormat = "reading %s: %w"

	warningTokenCountMessage = "failed to count tokens"
)

var (
	errNilChannel = errors.New("stream: event channel is nil")
	errEmptyRoot  = errors.New("stream: selection root path is empty")
)

// SelectionOptions describes the files to stream.
type SelectionOptions struct {
	Root         string
	Paths        []string
	FileSystem   afero.Fs
	TokenCounter tokenizer.Counter
	TokenModel   string
	Logger       *zap.Logger
}

// selectionStreamer emits the events for one StreamSelection call.
type selectionStreamer struct {
	ctx        context.Context
	out        chan<- Event
	options    SelectionOptions
	fileSystem afero.Fs
	logger     *zap.Logger
	totals     SummaryEvent
}

func (streamer *selectionStreamer) send(event Event) error {
	if streamer.out == nil {
		return errNilChannel
	}
	event.Version = SchemaVersion
	event.Command = types.CommandConcat
	event.EmittedAt = time.Now().UTC()
	select {
	case <-streamer.ctx.Done():
		return streamer.ctx.Err()
	case streamer.out <- event:
		return nil
	}
}

// countTokens returns zero tokens and no model when counting is disabled,
// fails, or the content is not text.
func (streamer *selectionStreamer) countTokens(path string, content []byte) (int, string) {
	if streamer.options.TokenCounter == nil {
		return 0, ""
	}
	result, countError := tokenizer.CountBytes(streamer.options.TokenCounter, content)
	if countError != nil {
		streamer.logger.Warn(warningTokenCountMessage, zap.String("path", path), zap.Error(countError))
		return 0, ""
	}
	if !result.Counted {
		return 0, ""
	}
	return result.Tokens, streamer.options.TokenModel
}

func (streamer *selectionStreamer) streamFile(path string) error {
	content, readError := afero.ReadFile(streamer.fileSystem, path)
	if readError != nil {
		wrapped := fmt.Errorf(errorReadFileFormat, path, readError)
		_ = streamer.send(Event{Kind: EventKindError, Path: path, Err: &ErrorEvent{Message: wrapped.Error()}})
		return wrapped
	}

	tokens, model := streamer.countTokens(path, content)
	size := int64(len(content))
	streamer.totals.Files++
	streamer.totals.Bytes += size
	streamer.totals.Tokens += tokens
	if streamer.totals.Model == "" && tokens > 0 {
		streamer.totals.Model = model
	}

	fileEvent := &FileEvent{
		Path:         path,
		RelativePath: utils.RelativePathOrSelf(path, streamer.options.Root),
		Name:         filepath.Base(path),
		SizeBytes:    size,
		Tokens:       tokens,
		Model:        model,
	}
	if sendError := streamer.send(Event{Kind: EventKindFile, Path: path, File: fileEvent}); sendError != nil {
		return sendError
	}
	chunk := &ChunkEvent{Path: path, Data: string(content), IsFinal: true}
	return streamer.send(Event{Kind: EventKindContentChunk, Path: path, Chunk: chunk})
}

// StreamSelection emits a file and a content_chunk event for every path in
// order, followed by summary and done. A file that cannot be read ends the
// stream with an error event and the read error.
func StreamSelection(ctx context.Context, opts SelectionOptions, out chan<- Event) error {
	if opts.Root == "" {
		return errEmptyRoot
	}
	if ctx == nil {
		ctx = context.Background()
	}
	streamer := &selectionStreamer{
		ctx:        ctx,
		out:        out,
		options:    opts,
		fileSystem: opts.FileSystem,
		logger:     utils.LoggerOrNop(opts.Logger),
	}
	if streamer.fileSystem == nil {
		streamer.fileSystem = afero.NewOsFs()
	}

	if sendError := streamer.send(Event{Kind: EventKindStart, Path: opts.Root}); sendError != nil {
		return sendError
	}
	for _, path := range opts.Paths {
		if streamError := streamer.streamFile(path); streamError != nil {
			return streamError
		}
	}
	summary := streamer.totals
	if sendError := streamer.send(Event{Kind: EventKindSummary, Path: opts.Root, Summary: &summary}); sendError != nil {
		return sendError
	}
	return streamer.send(Event{Kind: EventKindDone, Path: opts.Root})
}
