package ops

import (
	"github.com/hpungsan/pocket/internal/store"
)

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// Delete removes a capsule with its index entry and progress.
// Deleted reports whether a capsule existed; deleting an unknown id is not an error.
func Delete(st *store.Store, id string) (*DeleteOutput, error) {
	id, err := ValidateID(id)
	if err != nil {
		return nil, err
	}

	_, existed := st.LoadCapsule(id)
	if !existed {
		for _, e := range st.ListIndex() {
			if e.ID == id {
				existed = true
				break
			}
		}
	}

	if err := st.DeleteCapsule(id); err != nil {
		return nil, err
	}
	return &DeleteOutput{Deleted: existed, ID: id}, nil
}
