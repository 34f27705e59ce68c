// Package vfs provides the file system abstraction used by the document
// store and the encoding resolver.
//
// OSFS talks to the operating system; MemFS keeps everything in memory and
// backs the tests.
package vfs

import (
	"io/fs"
	"time"
)

// VFS is the set of file operations the document store needs.
type VFS interface {
	// ReadFile returns the whole file.
	ReadFile(path string) ([]byte, error)

	// ReadFileHead reads at most n bytes from the start of the file.
	// A file shorter than n yields its whole content and no error.
	ReadFileHead(path string, n int) ([]byte, error)

	// Stat describes the file at path.
	Stat(path string) (FileInfo, error)

	// WriteFile replaces the content of path, creating the file if needed.
	WriteFile(path string, data []byte, perm fs.FileMode) error

	// MkdirAll creates path and any missing parents.
	MkdirAll(path string, perm fs.FileMode) error

	// Remove deletes a file or an empty directory.
	Remove(path string) error

	// Abs resolves path to the key documents are stored under.
	Abs(path string) (string, error)

	// Exists reports whether anything is at path.
	Exists(path string) bool
}

// FileInfo describes a file.
type FileInfo struct {
	path    string
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

// NewFileInfo creates a FileInfo.
func NewFileInfo(path, name string, size int64, mode fs.FileMode, modTime time.Time, isDir bool) FileInfo {
	return FileInfo{
		path:    path,
		name:    name,
		size:    size,
		mode:    mode,
		modTime: modTime,
		isDir:   isDir,
	}
}

// Path returns the full path.
func (fi FileInfo) Path() string { return fi.path }

// Name returns the base name.
func (fi FileInfo) Name() string { return fi.name }

// Size returns the length in bytes.
func (fi FileInfo) Size() int64 { return fi.size }

// Mode returns the file mode bits.
func (fi FileInfo) Mode() fs.FileMode { return fi.mode }

// ModTime returns the modification time.
func (fi FileInfo) ModTime() time.Time { return fi.modTime }

// IsDir reports whether the file is a directory.
func (fi FileInfo) IsDir() bool { return fi.isDir }
