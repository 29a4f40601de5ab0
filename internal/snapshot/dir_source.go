package snapshot

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// DirSource reads snapshot documents from *.json files in a directory
type DirSource struct {
	dir string
	loc *time.Location
}

// NewDirSource creates a directory source whose file stamps are in loc
func NewDirSource(dir string, loc *time.Location) *DirSource {
	return &DirSource{dir: dir, loc: loc}
}

// List returns the snapshot files sorted by their embedded timestamp
func (s *DirSource) List(ctx context.Context) ([]Entry, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list snapshot dir %s: %w", s.dir, err)
	}

	entries := make([]Entry, 0, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		stamp, err := ParseStamp(name, s.loc)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: name, Stamp: stamp})
	}
	sortEntries(entries)
	return entries, nil
}

// Open opens a snapshot file
func (s *DirSource) Open(_ context.Context, e Entry) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.dir, e.Name))
}
