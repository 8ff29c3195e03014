package fsutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// FileSystem is the read-only view of the disk the verifier works against.
// Paths are absolute, which is why io/fs.FS (rooted, slash-separated) is not used.
type FileSystem interface {
	Stat(name string) (fs.FileInfo, error)
	Open(name string) (io.ReadCloser, error)
}

// OS is the FileSystem backed by the host operating system.
type OS struct{}

// Stat implements FileSystem.
func (OS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

// Open implements FileSystem.
func (OS) Open(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

// SHA256 returns the lowercase hex SHA-256 digest of a file.
func SHA256(fsys FileSystem, name string) (string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
