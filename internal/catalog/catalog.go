package catalog

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tidwall/jsonc"
	"github.com/zeebo/blake3"
)

var (
	// ErrNoEntries is returned when a snapshot contains no entries.
	ErrNoEntries = errors.New("catalog has no entries")
	// ErrNoCatalogFiles is returned when no file matches the configured globs.
	ErrNoCatalogFiles = errors.New("no catalog files matched")
)

// Catalog is an immutable, ordered set of entries plus derived data.
type Catalog struct {
	entries     []Entry
	byID        map[string]int
	vocabulary  []string
	fingerprint string
}

// snapshot is the on-disk catalog shape.
type snapshot struct {
	Entries []rawEntry `json:"entries"`
}

// New builds a catalog from already-normalized entries. Later entries with
// a duplicate ID are dropped so lookups stay unambiguous.
func New(entries []Entry) *Catalog {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		byID:    make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if _, dup := c.byID[e.ID]; dup {
			continue
		}
		c.byID[e.ID] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	c.vocabulary = buildVocabulary(c.entries)
	c.fingerprint = fingerprint(c.entries)
	return c
}

// Parse decodes a JSON (or JSONC) snapshot of the form {"entries": [...]}.
func Parse(data []byte) ([]Entry, error) {
	var snap snapshot
	if err := json.Unmarshal(jsonc.ToJSON(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	entries := make([]Entry, 0, len(snap.Entries))
	for _, r := range snap.Entries {
		entries = append(entries, r.normalize())
	}
	return entries, nil
}

// LoadFile reads and parses a single snapshot file.
func LoadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	entries, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Discover expands doublestar patterns into a sorted, de-duplicated file list.
func Discover(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid catalog pattern %q: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	if len(files) == 0 {
		return nil, ErrNoCatalogFiles
	}
	return files, nil
}

// Load discovers, reads and merges every snapshot matched by patterns.
// Entry order follows pattern order, then file name, then position in file.
func Load(patterns []string) (*Catalog, error) {
	files, err := Discover(patterns)
	if err != nil {
		return nil, err
	}

	var all []Entry
	for _, f := range files {
		entries, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
	}

	if len(all) == 0 {
		return nil, ErrNoEntries
	}
	return New(all), nil
}

// Entries returns the entries in catalog order. Callers must not modify them.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Lookup finds an entry by ID.
func (c *Catalog) Lookup(id string) (*Entry, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &c.entries[i], true
}

// Head returns up to n entries from the start of the catalog.
func (c *Catalog) Head(n int) []Entry {
	if n > len(c.entries) {
		n = len(c.entries)
	}
	return c.entries[:n]
}

// Vocabulary returns every distinct lowercase tag in first-seen order.
func (c *Catalog) Vocabulary() []string {
	return c.vocabulary
}

// Fingerprint is a content hash of the catalog, stable across loads of
// identical data. Used to version cached query results.
func (c *Catalog) Fingerprint() string {
	return c.fingerprint
}

func buildVocabulary(entries []Entry) []string {
	seen := make(map[string]bool)
	var vocab []string
	for _, e := range entries {
		for _, t := range e.Tags {
			if !seen[t] {
				seen[t] = true
				vocab = append(vocab, t)
			}
		}
	}
	return vocab
}

func fingerprint(entries []Entry) string {
	h := blake3.New()
	for _, e := range entries {
		fmt.Fprintf(h, "%+v\n", e)
	}
	return hex.EncodeToString(h.Sum(nil)[:8])
}
