package tokenizer

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
)

type testCounter struct {
	calls *int
}

func (testCounter) Name() string { return "stub" }

func (counter testCounter) CountString(input string) (int, error) {
	if counter.calls != nil {
		*counter.calls++
	}
	return len([]rune(input)), nil
}

func TestCountBytes(t *testing.T) {
	testCases := []struct {
		name          string
		data          []byte
		expectCounted bool
		expectTokens  int
	}{
		{name: "text", data: []byte("hello"), expectCounted: true, expectTokens: 5},
		{name: "empty", data: nil, expectCounted: true, expectTokens: 0},
		{name: "binary", data: []byte{0x00, 0x01, 0x02}, expectCounted: false},
		{name: "invalid_utf8", data: []byte{'a', 0xff, 'b'}, expectCounted: false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result, err := CountBytes(testCounter{}, testCase.data)
			if err != nil {
				t.Fatalf("CountBytes error: %v", err)
			}
			if result.Counted != testCase.expectCounted {
				t.Fatalf("expected counted=%v, got %v", testCase.expectCounted, result.Counted)
			}
			if result.Tokens != testCase.expectTokens {
				t.Fatalf("expected %d tokens, got %d", testCase.expectTokens, result.Tokens)
			}
		})
	}
}

func TestCountBytesRequiresCounter(t *testing.T) {
	if _, err := CountBytes(nil, []byte("x")); !errors.Is(err, errNilCounter) {
		t.Fatalf("expected errNilCounter, got %v", err)
	}
}

func TestCountFileReadsFromFileSystem(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	if err := afero.WriteFile(fileSystem, "/project/a.ts", []byte("const a = 1"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	result, err := CountFile(testCounter{}, fileSystem, "/project/a.ts")
	if err != nil {
		t.Fatalf("CountFile error: %v", err)
	}
	if result.Tokens != len("const a = 1") {
		t.Fatalf("unexpected token count %d", result.Tokens)
	}
	if _, err := CountFile(testCounter{}, fileSystem, "/project/missing.ts"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestFileCacheReusesUnchangedFiles(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	if err := afero.WriteFile(fileSystem, "/project/a.ts", []byte("abc"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := afero.WriteFile(fileSystem, "/project/b.ts", []byte("de"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	var calls int
	cache, err := NewFileCache(testCounter{calls: &calls}, fileSystem, 8)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	for iteration := 0; iteration < 3; iteration++ {
		total, totalErr := cache.Total([]string{"/project/a.ts", "/project/b.ts"})
		if totalErr != nil {
			t.Fatalf("Total error: %v", totalErr)
		}
		if total != 5 {
			t.Fatalf("expected 5 tokens, got %d", total)
		}
	}
	if calls != 2 {
		t.Fatalf("expected each file counted once, got %d calls", calls)
	}
	if cache.Len() != 2 {
		t.Fatalf("expected 2 cached entries, got %d", cache.Len())
	}

	if err := afero.WriteFile(fileSystem, "/project/a.ts", []byte("abcdef"), 0o644); err != nil {
		t.Fatalf("rewrite file: %v", err)
	}
	result, countErr := cache.Count("/project/a.ts")
	if countErr != nil {
		t.Fatalf("Count error: %v", countErr)
	}
	if result.Tokens != 6 || calls != 3 {
		t.Fatalf("expected recount after change, got tokens=%d calls=%d", result.Tokens, calls)
	}
}

func TestFileCacheTotalReportsMissingFile(t *testing.T) {
	cache, err := NewFileCache(testCounter{}, afero.NewMemMapFs(), 0)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	if _, totalErr := cache.Total([]string{"/missing.ts"}); totalErr == nil {
		t.Fatalf("expected error for missing file")
	}
}
