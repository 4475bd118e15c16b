package ops

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/hpungsan/pocket/internal/config"
	"github.com/hpungsan/pocket/internal/errors"
)

func TestValidatePath_TraversalRejected(t *testing.T) {
	cfg := config.DefaultConfig()

	tests := []struct {
		name string
		path string
	}{
		{"parent traversal", "../cells.json"},
		{"deep traversal", "../../etc/cells.json"},
		{"mid-path traversal", "/tmp/../etc/cells.json"},
		{"hidden in path", "/tmp/safe/../../../etc/shadow.json"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePath(tc.path, PathCheckWrite, cfg)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got: %v", err)
			}
		})
	}
}

func TestValidatePath_ExtensionRequired(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	for _, path := range []string{"/tmp/cells", "/tmp/cells.jsonl", "/tmp/cells.txt", "/tmp/cells.json.bak"} {
		t.Run(path, func(t *testing.T) {
			err := ValidatePath(path, PathCheckWrite, cfg)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got: %v", err)
			}
		})
	}

	if err := ValidatePath(filepath.Join(t.TempDir(), "Cells.JSON"), PathCheckWrite, cfg); err != nil {
		t.Errorf("upper-case extension should pass, got: %v", err)
	}
}

func TestValidatePath_DirectoryRestriction(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := config.DefaultConfig()

	err := ValidatePath(filepath.Join(t.TempDir(), "cells.json"), PathCheckWrite, cfg)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}
}

func TestValidatePath_DefaultExportsDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := DefaultExportsDir()
	if err != nil {
		t.Fatalf("DefaultExportsDir failed: %v", err)
	}
	if dir != filepath.Join(home, ".pocket", "exports") {
		t.Errorf("DefaultExportsDir = %q", dir)
	}

	if err := ValidatePath(filepath.Join(dir, "cells.json"), PathCheckWrite, config.DefaultConfig()); err != nil {
		t.Errorf("path in exports dir should pass, got: %v", err)
	}
	// Subdirectories of an allowed dir are not allowed
	err = ValidatePath(filepath.Join(dir, "nested", "cells.json"), PathCheckWrite, config.DefaultConfig())
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for nested path, got: %v", err)
	}
}

func TestValidatePath_AllowedPaths(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	allowed := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{allowed, "relative/ignored"}

	if err := ValidatePath(filepath.Join(allowed, "cells.json"), PathCheckWrite, cfg); err != nil {
		t.Errorf("path in allowed_paths should pass, got: %v", err)
	}
}

func TestValidatePath_ReadMissingFile(t *testing.T) {
	allowed := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{allowed}

	err := ValidatePath(filepath.Join(allowed, "missing.json"), PathCheckRead, cfg)
	if !errors.Is(err, errors.ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got: %v", err)
	}

	cfg.AllowUnsafePaths = true
	err = ValidatePath(filepath.Join(allowed, "missing.json"), PathCheckRead, cfg)
	if !errors.Is(err, errors.ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound in unsafe mode, got: %v", err)
	}
}

func TestValidatePath_SymlinkRejected(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on Windows")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "target.json")
	if err := os.WriteFile(target, []byte("{}"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	link := filepath.Join(dir, "link.json")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("Symlink failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{dir}
	for _, mode := range []PathCheckMode{PathCheckRead, PathCheckWrite} {
		if err := ValidatePath(link, mode, cfg); !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("mode %d: expected ErrInvalidRequest, got: %v", mode, err)
		}
	}

	cfg.AllowUnsafePaths = true
	if err := ValidatePath(link, PathCheckRead, cfg); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("unsafe mode still rejects symlinks, got: %v", err)
	}
}

func TestSanitizeForFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Cell Biology", "cell-biology"},
		{"  Intro   to  Go ", "intro-to-go"},
		{"../../etc/passwd", "etc-passwd"},
		{`a\b/c`, "a-b-c"},
		{"What? <Why>", "what-why"},
		{"v1.2: notes", "v1-2-notes"},
		{"tab\x00null", "tabnull"},
		{"", "capsule"},
		{"...", "capsule"},
		{"Ünïcode Título", "ünïcode-título"},
	}
	for _, tc := range tests {
		if got := SanitizeForFilename(tc.in); got != tc.want {
			t.Errorf("SanitizeForFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
