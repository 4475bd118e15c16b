package store

import (
	"encoding/json"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/kv"
)

// DraftKey holds the single unsaved author-form draft.
const DraftKey = "pc_draft"

// SaveDraft replaces the author draft. Drafts are not indexed.
func (s *Store) SaveDraft(rec *capsule.Record) error {
	if rec == nil {
		return errors.NewInvalidRequest("draft is required")
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return errors.NewInternal(err)
	}
	return s.write(kv.Put(DraftKey, string(payload)))
}

// LoadDraft returns the saved draft, if any. A corrupt draft counts as absent.
func (s *Store) LoadDraft() (*capsule.Record, bool) {
	raw, ok := s.read(DraftKey)
	if !ok {
		return nil, false
	}
	var rec capsule.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		s.log.Debug("draft is malformed, ignoring", "key", DraftKey, "error", err)
		return nil, false
	}
	return &rec, true
}

// ClearDraft removes the draft. Clearing when none exists is a no-op.
func (s *Store) ClearDraft() error {
	return s.write(kv.Del(DraftKey))
}
