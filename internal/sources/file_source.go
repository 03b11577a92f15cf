package sources

import (
	"fmt"

	"github.com/benmeehan/tool-watchdog/pkg/file"
)

// FileSource treats a file's modification time as the tool timestamp,
// for tools that report by rewriting a file.
type FileSource struct {
	path       string
	fileClient file.FileOperations
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string, fileClient file.FileOperations) *FileSource {
	return &FileSource{path: path, fileClient: fileClient}
}

// Timestamp returns the modification time in nanoseconds since the epoch.
func (f *FileSource) Timestamp() (uint64, error) {
	modTime, err := f.fileClient.ModTime(f.path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, f.path, err)
	}
	return uint64(modTime.UnixNano()), nil
}
