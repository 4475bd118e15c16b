package store

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/kv"
)

// ReindexResult reports what Reindex changed.
type ReindexResult struct {
	Entries int `json:"entries"`
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// Reindex rebuilds the index from the stored records. Entries whose record is gone or
// unreadable are dropped, surviving entries are refreshed from their record in place,
// and records missing from the index are added at the front, newest first.
// The backend must implement kv.Lister.
func (s *Store) Reindex() (*ReindexResult, error) {
	lister, ok := s.kv.(kv.Lister)
	if !ok {
		return nil, errors.NewInvalidRequest("storage backend cannot enumerate keys")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := lister.Keys(CapsulePrefix)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	records := make(map[string]*capsule.Record, len(keys))
	for _, key := range keys {
		id := strings.TrimPrefix(key, CapsulePrefix)
		if rec, ok := s.loadCapsule(id); ok {
			records[id] = rec
		}
	}

	old := s.ListIndex()
	result := &ReindexResult{}
	seen := make(map[string]bool, len(old))
	kept := make([]capsule.IndexEntry, 0, len(old))
	for _, e := range old {
		rec, ok := records[e.ID]
		if !ok || seen[e.ID] {
			result.Removed++
			continue
		}
		seen[e.ID] = true
		refreshed := rec.ToIndexEntry(e.ID)
		if refreshed.UpdatedAt == "" {
			refreshed.UpdatedAt = e.UpdatedAt
		}
		kept = append(kept, refreshed)
	}

	added := make([]capsule.IndexEntry, 0)
	for id, rec := range records {
		if !seen[id] {
			added = append(added, rec.ToIndexEntry(id))
		}
	}
	sort.Slice(added, func(i, j int) bool {
		if added[i].UpdatedAt != added[j].UpdatedAt {
			return added[i].UpdatedAt > added[j].UpdatedAt
		}
		return added[i].ID > added[j].ID
	})
	result.Added = len(added)

	index := append(added, kept...)
	result.Entries = len(index)

	payload, err := json.Marshal(index)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := s.write(kv.Put(IndexKey, string(payload))); err != nil {
		return nil, err
	}

	s.log.Info("index rebuilt", "entries", result.Entries, "added", result.Added, "removed", result.Removed)
	return result, nil
}
