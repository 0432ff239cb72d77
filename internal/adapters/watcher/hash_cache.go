package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unique"
)

// FileHasher fingerprints files.
type FileHasher interface {
	ComputeFileHash(path string) (uint64, error)
	ComputeTreeHashes(root string) map[string]uint64
}

// HashCache remembers the content fingerprint of every watched file so that
// writes which leave the content unchanged can be dropped.
type HashCache struct {
	mu      sync.Mutex
	entries map[unique.Handle[string]]uint64
	hasher  FileHasher
}

// NewHashCache creates a new hash cache.
func NewHashCache(hasher FileHasher) *HashCache {
	return &HashCache{
		entries: make(map[unique.Handle[string]]uint64),
		hasher:  hasher,
	}
}

// Prime records the fingerprint of every file below root.
func (h *HashCache) Prime(root string) {
	hashes := h.hasher.ComputeTreeHashes(root)

	h.mu.Lock()
	defer h.mu.Unlock()
	for path, sum := range hashes {
		h.entries[unique.Make(path)] = sum
	}
}

// Changed rehashes path and reports whether its content differs from the
// recorded fingerprint. Unknown or unreadable files count as changed.
func (h *HashCache) Changed(path string) bool {
	sum, err := h.hasher.ComputeFileHash(path)

	h.mu.Lock()
	defer h.mu.Unlock()

	key := unique.Make(path)
	if err != nil {
		delete(h.entries, key)
		return true
	}

	prev, known := h.entries[key]
	h.entries[key] = sum
	return !known || prev != sum
}

// Track records the fingerprint of a newly created path. Directories are
// primed recursively.
func (h *HashCache) Track(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.IsDir() {
		h.Prime(path)
		return
	}
	h.Changed(path)
}

// Forget drops path and everything recorded below it.
func (h *HashCache) Forget(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	prefix := path + string(filepath.Separator)
	for key := range h.entries {
		p := key.Value()
		if p == path || strings.HasPrefix(p, prefix) {
			delete(h.entries, key)
		}
	}
}

// Len returns the number of tracked files.
func (h *HashCache) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
