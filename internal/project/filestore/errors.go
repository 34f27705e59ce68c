package filestore

import (
	"errors"
	"fmt"
)

// Standard errors returned by the document store.
var (
	// ErrIsDirectory indicates the path is a directory, not a file.
	ErrIsDirectory = errors.New("path is a directory")

	// ErrFileTooLarge indicates the file exceeds the maximum size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrBinaryFile indicates the content looks binary.
	ErrBinaryFile = errors.New("binary file")

	// ErrDocumentNotOpen indicates the document is not open.
	ErrDocumentNotOpen = errors.New("document not open")

	// ErrAlreadyOpen indicates another document is open at the path.
	ErrAlreadyOpen = errors.New("document already open")

	// ErrDocumentDirty indicates the document has unsaved changes.
	ErrDocumentDirty = errors.New("document has unsaved changes")

	// ErrReadOnly indicates the document may not be saved.
	ErrReadOnly = errors.New("document is read-only")
)

// PathError records a failed store operation on a path. Decoding and
// encoding failures use the ops "decode" and "encode".
type PathError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PathError) Unwrap() error {
	return e.Err
}

// IsBinary reports whether err was caused by binary content.
func IsBinary(err error) bool {
	return errors.Is(err, ErrBinaryFile)
}
