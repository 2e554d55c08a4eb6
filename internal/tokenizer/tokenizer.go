// Package tokenizer estimates how many model tokens a selection costs.
package tokenizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o"

	fallbackEncoding         = "cl100k_base"
	errorFallbackEncodingFmt = "load %s encoding: %w"
)

var errNilCounter = errors.New("nil tokenizer counter")

// Counter turns text into a token count.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

// Config selects the model whose encoding a Counter uses.
type Config struct {
	Model string
}

// tiktokenCounter counts tokens with a BPE encoding from tiktoken.
type tiktokenCounter struct {
	encoding *tiktoken.Tiktoken
	label    string
}

func (counter tiktokenCounter) Name() string {
	return counter.label
}

func (counter tiktokenCounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, errNilCounter
	}
	return len(counter.encoding.Encode(input, nil, nil)), nil
}

// NewCounter resolves cfg.Model to a tiktoken encoding. It returns the counter
// and the model name to report next to counts. A model tiktoken does not know
// is counted with cl100k_base and reported under that encoding name.
func NewCounter(cfg Config) (Counter, string, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	normalizedModel := strings.ToLower(model)
	if encoding, encodingError := tiktoken.EncodingForModel(normalizedModel); encodingError == nil && encoding != nil {
		return tiktokenCounter{encoding: encoding, label: normalizedModel}, model, nil
	}

	encoding, encodingError := tiktoken.GetEncoding(fallbackEncoding)
	if encodingError != nil {
		return nil, "", fmt.Errorf(errorFallbackEncodingFmt, fallbackEncoding, encodingError)
	}
	return tiktokenCounter{encoding: encoding, label: fallbackEncoding}, fallbackEncoding, nil
}
