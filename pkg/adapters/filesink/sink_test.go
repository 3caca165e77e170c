package filesink

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/user/avtranscoder/pkg/mocks"
)

// testBaseDir is a platform-independent base directory for tests
var testBaseDir = filepath.Join("debug")

func TestSink_Enabled(t *testing.T) {
	sink := New(testBaseDir, mocks.NewFileSystem())

	if !sink.Enabled() {
		t.Error("expected Enabled to return true")
	}
}

func TestSink_SaveInputChunk(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs)

	data := []byte("input chunk")
	if err := sink.SaveInputChunk(3, data); err != nil {
		t.Fatalf("SaveInputChunk failed: %v", err)
	}

	expectedPath := filepath.Join(testBaseDir, "input", "chunk-000003.bin")
	saved, ok := fs.GetFile(expectedPath)
	if !ok {
		t.Fatalf("expected file to be saved at %s", expectedPath)
	}
	if string(saved) != string(data) {
		t.Errorf("expected %q, got %q", data, saved)
	}
}

func TestSink_SaveOutputChunk(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs)

	for i := 0; i < 3; i++ {
		if err := sink.SaveOutputChunk(i, []byte{byte(i)}); err != nil {
			t.Fatalf("SaveOutputChunk(%d) failed: %v", i, err)
		}
	}

	files := fs.GetAllFiles()
	if len(files) != 3 {
		t.Errorf("expected 3 files, got %d", len(files))
	}
	if _, ok := files[sink.ChunkPath("output", 2)]; !ok {
		t.Errorf("expected %s to be saved", sink.ChunkPath("output", 2))
	}
}

func TestSink_CreatesDirectoryOnce(t *testing.T) {
	fs := mocks.NewFileSystem()
	var mkdirs []string
	fs.MkdirAllFunc = func(path string) error {
		mkdirs = append(mkdirs, path)
		return nil
	}
	sink := New(testBaseDir, fs)

	sink.SaveInputChunk(0, []byte("a"))
	sink.SaveInputChunk(1, []byte("b"))
	sink.SaveOutputChunk(0, []byte("c"))

	if len(mkdirs) != 2 {
		t.Errorf("expected 2 directories created, got %v", mkdirs)
	}
}

func TestSink_MkdirError(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.MkdirAllFunc = func(path string) error {
		return errors.New("read-only file system")
	}
	sink := New(testBaseDir, fs)

	if err := sink.SaveInputChunk(0, []byte("a")); err == nil {
		t.Error("expected error when the directory cannot be created")
	}
	if len(fs.GetAllFiles()) != 0 {
		t.Error("expected no files to be written")
	}
}
