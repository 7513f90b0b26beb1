// Package tags supplies $TAG_PHRASE lookups from a YAML tag file or a SQLite tag database.
package tags

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/jeeftor/captionctl/internal/caption"
)

// Record is one tag attached to a content source
type Record struct {
	Name    string   `yaml:"name"`
	Phrases string   `yaml:"phrases,omitempty"` // newline-separated
	Clips   []string `yaml:"clips,omitempty"`   // empty applies to every clip
}

// File is the on-disk tag file layout, keyed by content source
type File struct {
	Sources map[string][]Record `yaml:"sources"`
}

// matches reports whether the record applies to clipID
func (r Record) matches(clipID string) bool {
	return len(r.Clips) == 0 || clipID == "" || slices.Contains(r.Clips, clipID)
}

// ReadFile parses a YAML tag file
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tag file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing tag file %s: %w", path, err)
	}
	if f.Sources == nil {
		f.Sources = make(map[string][]Record)
	}
	return &f, nil
}

// FileStore serves tags from a parsed tag file
type FileStore struct {
	file *File
}

// NewFileStore wraps a parsed tag file
func NewFileStore(f *File) *FileStore {
	return &FileStore{file: f}
}

// OpenFile reads a tag file into a FileStore
func OpenFile(path string) (*FileStore, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewFileStore(f), nil
}

// Tags returns the tags of source that apply to clipID
func (s *FileStore) Tags(source, clipID string) ([]caption.Tag, error) {
	var out []caption.Tag
	for _, r := range s.file.Sources[source] {
		if r.matches(clipID) {
			out = append(out, caption.Tag{Name: r.Name, PhraseString: r.Phrases})
		}
	}
	return out, nil
}

// Open returns the configured tag lookup. A database path wins over a tag file;
// with neither, the lookup is nil. The returned close function is never nil.
func Open(filePath, dbPath string) (caption.TagLookup, func() error, error) {
	noop := func() error { return nil }

	switch {
	case dbPath != "":
		store, err := OpenSQLite(dbPath)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	case filePath != "":
		store, err := OpenFile(filePath)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	default:
		return nil, noop, nil
	}
}
