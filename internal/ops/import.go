package ops

import (
	"fmt"
	"io"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/config"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/store"
)

// ImportInput contains parameters for the ImportFile operation.
type ImportInput struct {
	Path string // required
}

// ImportOutput contains the result of an import.
type ImportOutput struct {
	ID    string             `json:"id"`
	Entry capsule.IndexEntry `json:"entry"`
}

// ImportData imports an export payload that is already in memory.
func ImportData(st *store.Store, cfg *config.Config, data []byte) (*ImportOutput, error) {
	if limit := MaxImportBytes(cfg); int64(len(data)) > limit {
		return nil, errors.NewPayloadTooLarge(limit, int64(len(data)))
	}

	id, err := st.ImportCapsule(data)
	if err != nil {
		return nil, err
	}

	return &ImportOutput{ID: id, Entry: findEntry(st, id)}, nil
}

// ImportFile reads an export payload from a .json file and imports it under a new id.
func ImportFile(st *store.Store, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if _, ok := err.(*errors.PocketError); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	limit := MaxImportBytes(cfg)
	if info, err := file.Stat(); err == nil && info.Size() > limit {
		return nil, errors.NewPayloadTooLarge(limit, info.Size())
	}

	data, err := ReadLimited(file, limit)
	if err != nil {
		return nil, err
	}
	return ImportData(st, cfg, data)
}

// ReadLimited reads r to the end, failing with PAYLOAD_TOO_LARGE past limit bytes.
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to read import payload: %w", err))
	}
	if int64(len(data)) > limit {
		return nil, errors.NewPayloadTooLarge(limit, int64(len(data)))
	}
	return data, nil
}

// MaxImportBytes returns the configured import size limit, or the default.
func MaxImportBytes(cfg *config.Config) int64 {
	if cfg != nil && cfg.ImportMaxBytes > 0 {
		return cfg.ImportMaxBytes
	}
	return config.DefaultConfig().ImportMaxBytes
}

// ValidateOutput reports whether a payload would import, and why not.
type ValidateOutput struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
	Title  string `json:"title,omitempty"`
}

// Validate checks an export payload without storing it.
func Validate(data []byte) *ValidateOutput {
	env, err := capsule.DecodeEnvelope(data)
	if err != nil {
		return &ValidateOutput{Reason: capsule.DecodeFailure(err)}
	}
	if reason := capsule.RejectReason(env); reason != "" {
		return &ValidateOutput{Reason: reason}
	}
	return &ValidateOutput{Valid: true, Title: env.Capsule.Meta.Title}
}
