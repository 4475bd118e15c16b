package ops

import (
	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/store"
)

// SaveOutput contains the result of a raw Save.
type SaveOutput struct {
	ID    string             `json:"id"`
	Entry capsule.IndexEntry `json:"entry"`
}

// Save stores rec as given, under id when set or a fresh id otherwise.
// Unlike Author no form checks run; timestamps are still stamped by the store.
func Save(st *store.Store, rec *capsule.Record, id string) (*SaveOutput, error) {
	if rec == nil {
		return nil, errors.NewInvalidRequest("capsule is required")
	}
	if id != "" {
		var err error
		if id, err = ValidateID(id); err != nil {
			return nil, err
		}
	}

	id, err := st.SaveCapsule(rec, id)
	if err != nil {
		return nil, err
	}
	return &SaveOutput{ID: id, Entry: findEntry(st, id)}, nil
}

// findEntry returns id's index entry, or a bare entry carrying the id.
func findEntry(st *store.Store, id string) capsule.IndexEntry {
	for _, e := range st.ListIndex() {
		if e.ID == id {
			return e
		}
	}
	return capsule.IndexEntry{ID: id}
}
