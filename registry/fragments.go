package registry

import (
	"encoding/hex"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
)

// FragmentCache memoizes the serialized form of each target's fragment.
// Any event application invalidates the entry; serialization is pure with
// respect to the held tree, so a hit is always current.
type FragmentCache struct {
	mu     sync.RWMutex
	chunks map[string]*fragmentChunk
}

type fragmentChunk struct {
	html     string
	digest   string
	cachedAt time.Time
}

// NewFragmentCache creates an empty cache.
func NewFragmentCache() *FragmentCache {
	return &FragmentCache{chunks: make(map[string]*fragmentChunk)}
}

// Get returns the cached markup and its digest.
func (fc *FragmentCache) Get(targetID string) (string, string, bool) {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	if chunk, ok := fc.chunks[targetID]; ok {
		return chunk.html, chunk.digest, true
	}
	return "", "", false
}

// Set stores markup for a target, keyed alongside a blake2b content digest
// usable as an ETag by the fragment endpoint.
func (fc *FragmentCache) Set(targetID, markup string) string {
	sum := blake2b.Sum256([]byte(markup))
	digest := hex.EncodeToString(sum[:16])

	fc.mu.Lock()
	fc.chunks[targetID] = &fragmentChunk{
		html:     markup,
		digest:   digest,
		cachedAt: time.Now().UTC(),
	}
	fc.mu.Unlock()
	return digest
}

// Invalidate drops a target's cached fragment.
func (fc *FragmentCache) Invalidate(targetID string) {
	fc.mu.Lock()
	delete(fc.chunks, targetID)
	fc.mu.Unlock()
}

// Stats reports cache occupancy.
func (fc *FragmentCache) Stats() map[string]any {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return map[string]any{"chunks": len(fc.chunks)}
}
