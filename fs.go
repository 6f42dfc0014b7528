package docload

import (
	"fmt"
	"io"
	"os"
)

// FileSystem abstracts document storage. Implementations may be backed by
// local disk or a remote object store; the loader only needs to check for a
// document and copy it to a local path before extraction.
type FileSystem interface {
	// Exists reports whether path is present in the store.
	Exists(path string) (bool, error)
	// Get copies the document at remotePath to localPath.
	Get(remotePath, localPath string) error
}

// LocalFS is the default FileSystem, backed by the local disk.
type LocalFS struct{}

func (LocalFS) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (LocalFS) Get(remotePath, localPath string) error {
	src, err := os.Open(remotePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", remotePath, err)
	}
	defer src.Close()

	dst, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", localPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy %s: %w", remotePath, err)
	}
	return dst.Close()
}
