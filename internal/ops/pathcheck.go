package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/config"
	"github.com/hpungsan/pocket/internal/errors"
)

// FileExt is the extension of capsule export files.
const FileExt = ".json"

// PathCheckMode indicates whether the path check is for reading or writing.
type PathCheckMode int

const (
	PathCheckRead  PathCheckMode = iota // for import (read file)
	PathCheckWrite                      // for export (write file)
)

// ValidatePath performs path validation for capsule import/export.
// It checks:
// 1. Path traversal (.. components)
// 2. Extension (.json required, any case)
// 3. Directory restrictions (file must be DIRECTLY in ~/.pocket/exports or an allowed_paths entry, no subdirectories)
// 4. Symlink safety (parent dir must not be a symlink, file must not be a symlink)
//
// The "no subdirectories" rule closes the TOCTOU window in which an intermediate
// directory component could be swapped for a symlink between validation and open.
// The final component is covered by O_NOFOLLOW at open time.
func ValidatePath(path string, mode PathCheckMode, cfg *config.Config) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}

	// Reject paths containing ".." (traversal attempt)
	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	// Require .json extension
	cleaned := filepath.Clean(path)
	if !strings.EqualFold(filepath.Ext(cleaned), FileExt) {
		return errors.NewInvalidRequest("path must have " + FileExt + " extension")
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	// If unsafe paths are allowed, skip directory checks but NOT symlink checks.
	// O_NOFOLLOW still applies at open time.
	if cfg != nil && cfg.AllowUnsafePaths {
		// For read mode, report a missing file up front instead of a failed open.
		if mode == PathCheckRead {
			if _, err := os.Stat(absPath); os.IsNotExist(err) {
				return errors.NewFileNotFound(path)
			}
		}
		// Symlink files are rejected even in unsafe mode; the O_NOFOLLOW open would fail anyway.
		if info, err := os.Lstat(absPath); err == nil {
			if info.Mode()&os.ModeSymlink != 0 {
				return errors.NewInvalidRequest("path must not be a symlink")
			}
		}
		return nil
	}

	// Get allowed directories (resolved to catch symlinked allowed_paths entries)
	allowedDirs, err := getAllowedDirs(cfg)
	if err != nil {
		return err
	}

	// File must be DIRECTLY in an allowed directory (no subdirectories).
	// Intermediate components therefore cannot change between check and open.
	parentDir := filepath.Dir(absPath)
	if !isDirectlyInAllowedDir(parentDir, allowedDirs) {
		return errors.NewInvalidRequest(
			fmt.Sprintf("file must be directly in an allowed directory (no subdirectories); allowed: %v",
				allowedDirs))
	}

	// The parent itself must not be a symlink either.
	if info, err := os.Lstat(parentDir); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			return errors.NewInvalidRequest("parent directory must not be a symlink")
		}
	}

	// For read mode, verify the file exists
	if mode == PathCheckRead {
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return errors.NewFileNotFound(path)
		}
	}

	// Reject symlink files for both read and write modes.
	// O_NOFOLLOW at open time catches this too; checking here gives a clearer error.
	if info, err := os.Lstat(absPath); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			return errors.NewInvalidRequest("path must not be a symlink")
		}
	}

	return nil
}

// getAllowedDirs returns the list of allowed directories (absolute, cleaned).
// If an allowed directory exists, it is resolved to catch symlinked allowed_paths entries.
func getAllowedDirs(cfg *config.Config) ([]string, error) {
	defaultDir, err := DefaultExportsDir()
	if err != nil {
		return nil, err
	}
	// Default: ~/.pocket/exports
	dirs := []string{defaultDir}

	// Add configured allowed paths (only absolute paths)
	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				dirs = append(dirs, filepath.Clean(p))
			}
		}
	}

	result := make([]string, 0, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(filepath.Clean(d))
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid allowed path: %v", err))
		}

		// If the directory is a symlink, resolve it so the entry matches its real target.
		// Parent directories of checked paths are compared unresolved, and must not be symlinks.
		if info, err := os.Lstat(abs); err == nil && info.Mode()&os.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(abs)
			if err != nil {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("cannot resolve symlink in allowed path: %v", err))
			}
			abs = resolved
		}
		result = append(result, abs)
	}

	return result, nil
}

// isDirectlyInAllowedDir checks if parentDir exactly matches one of the allowed directories.
// This is stricter than "is under": the file must be directly in the allowed dir, not in a subdirectory.
func isDirectlyInAllowedDir(parentDir string, allowedDirs []string) bool {
	parentDir = filepath.Clean(parentDir)
	for _, dir := range allowedDirs {
		if parentDir == filepath.Clean(dir) {
			return true
		}
	}
	return false
}

// DefaultExportsDir returns ~/.pocket/exports.
func DefaultExportsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}
	return filepath.Join(homeDir, config.DirName, "exports"), nil
}

// containsTraversal checks if path contains ".." directory traversal.
func containsTraversal(path string) bool {
	// Check each path component
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	// Also check forward slashes on platforms with a different separator (user input)
	if filepath.Separator != '/' {
		for _, part := range strings.Split(path, "/") {
			if part == ".." {
				return true
			}
		}
	}
	return false
}

// SanitizeForFilename turns a capsule title into a file name stem: lowercase,
// whitespace and separators become dashes, control characters are dropped.
// The result never contains a path separator or "..", so it is safe to join onto
// the exports directory.
func SanitizeForFilename(s string) string {
	s = capsule.Normalize(s)

	var b strings.Builder
	for _, r := range s {
		switch {
		// Separators and dots become dashes, which also removes embedded ".."
		case r == '/' || r == '\\' || r == ' ' || r == '.' || r == ':':
			b.WriteRune('-')
		case r < 32 || r == 127:
			// dropped
		case strings.ContainsRune(`<>"|?*`, r):
			// reserved on Windows
		default:
			b.WriteRune(r)
		}
	}
	s = b.String()

	// Collapse multiple dashes
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	// Trim leading/trailing dashes
	s = strings.Trim(s, "-")

	// If empty after sanitization, use a safe default
	if s == "" {
		s = "capsule"
	}
	return s
}
