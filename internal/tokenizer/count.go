package tokenizer

import (
	"github.com/spf13/afero"

	"github.com/temirov/ctxpick/internal/utils"
)

// CountResult is the token count of one file. Counted is false for content
// that is not text, in which case Tokens is zero.
type CountResult struct {
	Tokens  int
	Counted bool
}

// CountBytes counts the tokens in data. Empty data counts as zero tokens.
func CountBytes(counter Counter, data []byte) (CountResult, error) {
	switch {
	case counter == nil:
		return CountResult{}, errNilCounter
	case len(data) == 0:
		return CountResult{Counted: true}, nil
	case utils.IsBinary(data):
		return CountResult{}, nil
	}
	tokens, countError := counter.CountString(string(data))
	if countError != nil {
		return CountResult{}, countError
	}
	return CountResult{Tokens: tokens, Counted: true}, nil
}

// CountFile counts the tokens of the file at path.
func CountFile(counter Counter, fileSystem afero.Fs, path string) (CountResult, error) {
	if counter == nil {
		return CountResult{}, errNilCounter
	}
	data, readError := afero.ReadFile(fileSystem, path)
	if readError != nil {
		return CountResult{}, readError
	}
	return CountBytes(counter, data)
}
