// cache.go memoizes the parsed form of a CSV dataset so a large snapshot
// file does not need to be re-parsed on every server restart. It caches the
// immutable, read-only input data only — never mutable session state,
// which this system never persists.
package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"uistd/internal/quotestore"
	"uistd/pkg/types"
)

// cachedForm is the on-disk representation of a built dataset: the flat
// list of quote tuples the Builder was fed, plus the frequency tag. The
// derived date index is recomputed on load since it is cheap and keeping it
// out of the cache file avoids a second format to keep in sync.
type cachedForm struct {
	Name      string          `json:"name"`
	Frequency types.Frequency `json:"frequency"`
	Quotes    []types.Quote   `json:"quotes"`
}

// Cache persists parsed dataset builds as JSON files in a directory, using
// atomic write-then-rename so a crash mid-write never leaves a corrupt
// cache entry behind. Deleting the directory is always safe; it only costs
// a re-parse of the source file.
type Cache struct {
	dir string
	mu  sync.Mutex
}

// OpenCache creates a cache backed by the given directory.
func OpenCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("dataset: create cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// keyFor derives a stable cache file name from a source path so unrelated
// datasets never collide.
func keyFor(sourcePath string) string {
	sum := sha256.Sum256([]byte(sourcePath))
	return hex.EncodeToString(sum[:]) + ".json"
}

// Load returns the cached Dataset for sourcePath, or nil if no cache entry
// exists yet.
func (c *Cache) Load(name, sourcePath string) (*Dataset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := filepath.Join(c.dir, keyFor(sourcePath))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("dataset: read cache: %w", err)
	}

	var cf cachedForm
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("dataset: unmarshal cache: %w", err)
	}

	builder := quotestore.NewBuilder()
	for _, q := range cf.Quotes {
		builder.Add(q)
	}
	return &Dataset{Name: cf.Name, Store: builder.Build(), Frequency: cf.Frequency}, nil
}

// Save writes ds's parsed quotes to the cache entry for sourcePath.
func (c *Cache) Save(sourcePath string, ds *Dataset, quotes []types.Quote) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cf := cachedForm{Name: ds.Name, Frequency: ds.Frequency, Quotes: quotes}
	data, err := json.Marshal(cf)
	if err != nil {
		return fmt.Errorf("dataset: marshal cache: %w", err)
	}

	path := filepath.Join(c.dir, keyFor(sourcePath))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("dataset: write cache: %w", err)
	}
	return os.Rename(tmp, path)
}
