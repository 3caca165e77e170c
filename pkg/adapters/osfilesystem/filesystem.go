// Package osfilesystem provides a filesystem implementation using the os package.
package osfilesystem

import (
	"io"
	"os"
	"path/filepath"

	"github.com/user/avtranscoder/pkg/ports"
)

// StdioPath selects stdin for Open and stdout for Create.
const StdioPath = "-"

// FileSystem implements ports.FileSystem using the os package.
type FileSystem struct {
	stdin  io.Reader
	stdout io.Writer
}

// New creates a FileSystem bound to the process's stdin and stdout.
func New() *FileSystem {
	return &FileSystem{stdin: os.Stdin, stdout: os.Stdout}
}

// NewWithStdio creates a FileSystem that serves StdioPath from the given
// streams.
func NewWithStdio(stdin io.Reader, stdout io.Writer) *FileSystem {
	return &FileSystem{stdin: stdin, stdout: stdout}
}

// Open opens path for reading. Closing the stdin stream is a no-op.
func (fs *FileSystem) Open(path string) (io.ReadCloser, error) {
	if path == StdioPath {
		return io.NopCloser(fs.stdin), nil
	}
	return os.Open(path)
}

// Create creates path for writing, creating parent directories.
// Closing the stdout stream is a no-op.
func (fs *FileSystem) Create(path string) (io.WriteCloser, error) {
	if path == StdioPath {
		return nopWriteCloser{fs.stdout}, nil
	}
	if err := mkdirParent(path); err != nil {
		return nil, err
	}
	return os.Create(path)
}

// ReadFile reads the entire contents of a file.
func (fs *FileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to a file, creating parent directories.
func (fs *FileSystem) WriteFile(path string, data []byte) error {
	if err := mkdirParent(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// MkdirAll creates a directory and all parent directories.
func (fs *FileSystem) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

// Exists checks if a file or directory exists.
func (fs *FileSystem) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Remove deletes a file. StdioPath and missing files are ignored.
func (fs *FileSystem) Remove(path string) error {
	if path == StdioPath {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func mkdirParent(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// Ensure FileSystem implements ports.FileSystem
var _ ports.FileSystem = (*FileSystem)(nil)
