package ops

import (
	"strings"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/store"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// ValidateID trims id and rejects empty or path-like values.
func ValidateID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.NewInvalidRequest("id is required")
	}
	if strings.ContainsAny(id, "/\\") || strings.ContainsRune(id, 0) {
		return "", errors.NewInvalidRequest("id must not contain path separators")
	}
	return id, nil
}

// requireCapsule loads a capsule or fails with NOT_FOUND.
func requireCapsule(st *store.Store, id string) (string, *capsule.Record, error) {
	id, err := ValidateID(id)
	if err != nil {
		return "", nil, err
	}
	rec, ok := st.LoadCapsule(id)
	if !ok {
		return "", nil, errors.NewNotFound(id)
	}
	return id, rec, nil
}
