package tokenizer

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"
)

// DefaultFileCacheSize bounds the number of files whose counts are retained.
const DefaultFileCacheSize = 4096

type cachedCount struct {
	result  CountResult
	size    int64
	modTime time.Time
}

// FileCache memoizes per-file token counts. An entry is reused only while the
// file size and modification time are unchanged.
type FileCache struct {
	counter    Counter
	fileSystem afero.Fs
	entries    *lru.Cache[string, cachedCount]
}

// NewFileCache constructs a cache holding at most size entries.
func NewFileCache(counter Counter, fileSystem afero.Fs, size int) (*FileCache, error) {
	if counter == nil {
		return nil, errNilCounter
	}
	if size <= 0 {
		size = DefaultFileCacheSize
	}
	entries, err := lru.New[string, cachedCount](size)
	if err != nil {
		return nil, fmt.Errorf("create token cache: %w", err)
	}
	return &FileCache{counter: counter, fileSystem: fileSystem, entries: entries}, nil
}

// Name reports the counter name backing the cache.
func (cache *FileCache) Name() string {
	return cache.counter.Name()
}

// Count returns the token count of the file at path.
func (cache *FileCache) Count(path string) (CountResult, error) {
	info, statErr := cache.fileSystem.Stat(path)
	if statErr != nil {
		return CountResult{}, statErr
	}
	if cached, found := cache.entries.Get(path); found && cached.size == info.Size() && cached.modTime.Equal(info.ModTime()) {
		return cached.result, nil
	}
	result, countErr := CountFile(cache.counter, cache.fileSystem, path)
	if countErr != nil {
		return CountResult{}, countErr
	}
	cache.entries.Add(path, cachedCount{result: result, size: info.Size(), modTime: info.ModTime()})
	return result, nil
}

// Total sums the token counts of paths, stopping at the first failure.
func (cache *FileCache) Total(paths []string) (int, error) {
	var total int
	for _, path := range paths {
		result, err := cache.Count(path)
		if err != nil {
			return 0, fmt.Errorf("count tokens for %s: %w", path, err)
		}
		total += result.Tokens
	}
	return total, nil
}

// Len returns the number of cached entries.
func (cache *FileCache) Len() int {
	return cache.entries.Len()
}
