package ports

import "io"

// FileSystem abstracts file system operations used around a transcoding
// session: streaming media in and out, and dumping debug chunks.
type FileSystem interface {
	// Open opens a media file for streaming reads. The path "-" is stdin.
	Open(path string) (io.ReadCloser, error)

	// Create creates or truncates a media file for streaming writes,
	// creating parent directories. The path "-" is stdout.
	Create(path string) (io.WriteCloser, error)

	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating it if necessary.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)

	// Remove deletes a file, typically a partial output after a failure.
	Remove(path string) error
}
