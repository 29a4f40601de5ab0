package snapshot

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"
)

// Entry identifies one snapshot document of a source
type Entry struct {
	Name  string
	Stamp time.Time
}

// Source lists snapshot documents in ingestion order and opens them
type Source interface {
	List(ctx context.Context) ([]Entry, error)
	Open(ctx context.Context, e Entry) (io.ReadCloser, error)
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Stamp.Equal(entries[j].Stamp) {
			return entries[i].Stamp.Before(entries[j].Stamp)
		}
		return entries[i].Name < entries[j].Name
	})
}

// Load opens and decodes one snapshot document
func Load(ctx context.Context, src Source, e Entry) ([]Record, error) {
	rc, err := src.Open(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", e.Name, err)
	}
	defer rc.Close()

	records, err := Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", e.Name, err)
	}
	return records, nil
}
