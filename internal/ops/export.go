package ops

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hpungsan/pocket/internal/config"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/store"
)

// ExportInput contains parameters for the ExportFile operation.
type ExportInput struct {
	ID   string // required
	Path string // optional, default: ~/.pocket/exports/<title>.json
}

// ExportOutput contains the result of an export.
type ExportOutput struct {
	ID    string `json:"id"`
	Path  string `json:"path,omitempty"`
	Bytes int    `json:"bytes"`
	JSON  string `json:"json,omitempty"`
}

// ExportJSON renders a stored capsule as its export payload.
func ExportJSON(st *store.Store, id string) (*ExportOutput, error) {
	id, rec, err := requireCapsule(st, id)
	if err != nil {
		return nil, err
	}
	payload, err := st.ExportCapsuleJSON(rec)
	if err != nil {
		return nil, err
	}
	return &ExportOutput{ID: id, Bytes: len(payload), JSON: payload}, nil
}

// ExportFile writes a capsule's export payload to a .json file.
// The file is written to a temp name and renamed into place.
func ExportFile(st *store.Store, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	out, err := ExportJSON(st, input.ID)
	if err != nil {
		return nil, err
	}
	rec, _ := st.LoadCapsule(out.ID)

	exportPath := input.Path
	if exportPath == "" {
		dir, err := DefaultExportsDir()
		if err != nil {
			return nil, err
		}
		exportPath = filepath.Join(dir, SanitizeForFilename(rec.Meta.Title)+FileExt)
	}

	// Default paths are validated too; titles are user input
	if err := ValidatePath(exportPath, PathCheckWrite, cfg); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	if err := writeFileAtomic(exportPath, []byte(out.JSON+"\n")); err != nil {
		return nil, err
	}

	return &ExportOutput{ID: out.ID, Path: exportPath, Bytes: out.Bytes}, nil
}

// writeFileAtomic writes data next to path and renames it over path, so a failed
// write leaves any existing file untouched.
func writeFileAtomic(path string, data []byte) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"

	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}
	// Close before rename (required on Windows)
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink at the destination
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("export path must not be a symlink")
	}

	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return nil
}
