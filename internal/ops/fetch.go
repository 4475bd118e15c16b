package ops

import (
	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/store"
)

// FetchOutput contains a capsule with its learner progress.
type FetchOutput struct {
	ID       string           `json:"id"`
	Capsule  *capsule.Record  `json:"capsule"`
	Progress capsule.Progress `json:"progress"`
}

// Fetch retrieves a capsule by ID together with its progress.
func Fetch(st *store.Store, id string) (*FetchOutput, error) {
	id, rec, err := requireCapsule(st, id)
	if err != nil {
		return nil, err
	}
	return &FetchOutput{
		ID:       id,
		Capsule:  rec,
		Progress: st.GetProgress(id),
	}, nil
}
