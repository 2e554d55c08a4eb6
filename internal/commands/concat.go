package commands

import (
	"bytes"
	"context"
	"errors"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/ctxpick/internal/output"
	"github.com/temirov/ctxpick/internal/services/stream"
	"github.com/temirov/ctxpick/internal/tokenizer"
)

// ErrNoSelection is returned when a concatenation is requested without selected files.
var ErrNoSelection = errors.New("no files selected")

// ConcatOptions describes one concatenation run.
type ConcatOptions struct {
	Root         string
	Paths        []string
	FileSystem   afero.Fs
	TokenCounter tokenizer.Counter
	TokenModel   string
	Logger       *zap.Logger
}

// Concatenate streams the selected files into renderer and flushes it.
func Concatenate(ctx context.Context, options ConcatOptions, renderer output.StreamRenderer) (err error) {
	defer func() {
		if flushErr := renderer.Flush(); flushErr != nil && err == nil {
			err = flushErr
		}
	}()

	producer := func(streamCtx context.Context, events chan<- stream.Event) error {
		return stream.StreamSelection(streamCtx, stream.SelectionOptions{
			Root:         options.Root,
			Paths:        options.Paths,
			FileSystem:   options.FileSystem,
			TokenCounter: options.TokenCounter,
			TokenModel:   options.TokenModel,
			Logger:       options.Logger,
		}, events)
	}
	return dispatchStream(ctx, producer, renderer.Handle)
}

// ConcatenateToString renders the selected files as the plain-text blob.
func ConcatenateToString(ctx context.Context, options ConcatOptions, headerFormat string) (string, error) {
	if len(options.Paths) == 0 {
		return "", ErrNoSelection
	}
	var buffer bytes.Buffer
	renderer := output.NewRawStreamRenderer(&buffer, nil, headerFormat, false)
	if err := Concatenate(ctx, options, renderer); err != nil {
		return "", err
	}
	return buffer.String(), nil
}

// dispatchStream runs produce and consume concurrently over an unbuffered channel.
func dispatchStream(
	ctx context.Context,
	produce func(context.Context, chan<- stream.Event) error,
	consume func(stream.Event) error,
) error {
	group, streamCtx := errgroup.WithContext(ctx)
	events := make(chan stream.Event)

	group.Go(func() error {
		defer close(events)
		return produce(streamCtx, events)
	})

	group.Go(func() error {
		for {
			select {
			case <-streamCtx.Done():
				return streamCtx.Err()
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := consume(event); err != nil {
					return err
				}
			}
		}
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
