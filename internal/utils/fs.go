package utils

import (
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// DirCheckResult is the outcome of CheckDirStatus.
type DirCheckResult struct {
	Exists   bool
	Writable bool
	Error    error
}

// FileExists reports whether path can be stat'ed.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDir creates dir and its parents.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// SaveTOMLFile encodes v into path.
func SaveTOMLFile(v any, path string) error {
	return WriteFileAtomic(path, func(w io.Writer) error {
		return toml.NewEncoder(w).Encode(v)
	})
}

// WriteFileAtomic writes path through write. The file is written beside its
// target and renamed into place, so watchers never observe a half written file.
func WriteFileAtomic(path string, write func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		log.Errorf("Failed to create file: %v", err)
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// GetAbsolutePath returns path made absolute, or "unknown" for an empty path.
func GetAbsolutePath(path string) string {
	if path == "" {
		return "unknown"
	}
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
	}
	return path
}

func testWriteAccess(dir string) bool {
	scratch := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(scratch, nil, 0644); err != nil {
		log.Debugf("Cannot write to directory %s: %v", dir, err)
		return false
	}
	os.Remove(scratch)
	return true
}

// GetExecutableDir returns the directory of the running binary, symlinks resolved.
func GetExecutableDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
		execPath = resolved
	}
	return filepath.Dir(execPath), nil
}

// CheckDirStatus creates dir when missing and tests that it is writable.
func CheckDirStatus(dir string) DirCheckResult {
	result := DirCheckResult{}
	if err := EnsureDir(dir); err != nil {
		result.Error = err
		log.Warnf("Cannot create directory %s: %v", dir, err)
		return result
	}
	result.Exists = true
	result.Writable = testWriteAccess(dir)
	return result
}
