package blade

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Filesystem is the file access the compiler needs. Paths are passed through
// untouched, so callers decide whether they are absolute or relative.
type Filesystem interface {
	Get(path string) (string, error)
	Put(path string, contents string) error
	Exists(path string) bool
	LastModified(path string) (time.Time, error)
}

// LocalFilesystem reads and writes the host filesystem.
type LocalFilesystem struct{}

// NewLocalFilesystem returns a Filesystem backed by the os package.
func NewLocalFilesystem() LocalFilesystem {
	return LocalFilesystem{}
}

func (LocalFilesystem) Get(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Put writes contents through a temporary file in the same directory, so a
// reader never sees a half written artifact.
func (LocalFilesystem) Put(path string, contents string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".blade-*")
	if err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if _, err := tmp.WriteString(contents); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (LocalFilesystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

func (LocalFilesystem) LastModified(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
