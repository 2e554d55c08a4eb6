package output_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/temirov/ctxpick/internal/output"
	"github.com/temirov/ctxpick/internal/services/stream"
)

func concatenationEvents() []stream.Event {
	return []stream.Event{
		{Kind: stream.EventKindStart, Path: "/proj"},
		{Kind: stream.EventKindFile, File: &stream.FileEvent{Path: "/proj/a.ts", RelativePath: "a.ts", SizeBytes: 5}},
		{Kind: stream.EventKindContentChunk, Chunk: &stream.ChunkEvent{Path: "/proj/a.ts", Data: "hello", IsFinal: true}},
		{Kind: stream.EventKindFile, File: &stream.FileEvent{Path: "/proj/src/b.vue", RelativePath: "src/b.vue", SizeBytes: 3, Tokens: 2}},
		{Kind: stream.EventKindContentChunk, Chunk: &stream.ChunkEvent{Path: "/proj/src/b.vue", Data: "<a>", IsFinal: true}},
		{Kind: stream.EventKindSummary, Summary: &stream.SummaryEvent{Files: 2, Bytes: 8, Tokens: 2, Model: "stub"}},
		{Kind: stream.EventKindDone},
	}
}

func renderEvents(t *testing.T, renderer output.StreamRenderer, events []stream.Event) {
	t.Helper()
	for index, event := range events {
		if err := renderer.Handle(event); err != nil {
			t.Fatalf("handle event %d failed: %v", index, err)
		}
	}
	if err := renderer.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
}

func TestRawStreamRendererWritesConcatenation(t *testing.T) {
	separator := strings.Repeat("-", 80)
	testCases := []struct {
		name           string
		headerFormat   string
		includeSummary bool
		expectedStdout string
		expectedStderr string
	}{
		{
			name:         "default_header",
			headerFormat: "",
			expectedStdout: "\n// File: a.ts\nhello\n\n" + separator + "\n\n" +
				"\n// File: src/b.vue\n<a>\n\n" + separator + "\n\n",
		},
		{
			name:           "custom_header_with_summary",
			headerFormat:   "# %s",
			includeSummary: true,
			expectedStdout: "\n# a.ts\nhello\n\n" + separator + "\n\n" +
				"\n# src/b.vue\n<a>\n\n" + separator + "\n\n",
			expectedStderr: "Summary: 2 files, 8 B, 2 tokens (model: stub)\n",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			var stdout bytes.Buffer
			var stderr bytes.Buffer
			renderer := output.NewRawStreamRenderer(&stdout, &stderr, testCase.headerFormat, testCase.includeSummary)
			renderEvents(t, renderer, concatenationEvents())
			if stdout.String() != testCase.expectedStdout {
				t.Fatalf("unexpected stdout:\n%q\nwant:\n%q", stdout.String(), testCase.expectedStdout)
			}
			if stderr.String() != testCase.expectedStderr {
				t.Fatalf("unexpected stderr: %q", stderr.String())
			}
		})
	}
}

func TestRawStreamRendererLeavesErrorsToCaller(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	renderer := output.NewRawStreamRenderer(&stdout, &stderr, "", false)
	renderEvents(t, renderer, []stream.Event{
		{Kind: stream.EventKindStart, Path: "/proj"},
		{Kind: stream.EventKindError, Path: "/proj/gone.ts", Err: &stream.ErrorEvent{Message: "reading /proj/gone.ts: missing"}},
	})
	if stdout.Len() != 0 {
		t.Fatalf("expected no stdout, got %q", stdout.String())
	}
	if stderr.Len() != 0 {
		t.Fatalf("expected error event to stay off stderr, got %q", stderr.String())
	}
}
