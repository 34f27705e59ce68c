package vfs

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// OSFS is the VFS backed by the local disk.
type OSFS struct{}

// NewOSFS returns an OSFS.
func NewOSFS() *OSFS {
	return &OSFS{}
}

var _ VFS = (*OSFS)(nil)

func (f *OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// ReadFileHead reads at most n leading bytes without loading the rest.
func (f *OSFS) ReadFileHead(path string, n int) ([]byte, error) {
	if n < 0 {
		n = 0
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, &fs.PathError{Op: "read", Path: path, Err: err}
	}
	return buf[:read], nil
}

func (f *OSFS) Stat(path string) (FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return NewFileInfo(path, info.Name(), info.Size(), info.Mode(), info.ModTime(), info.IsDir()), nil
}

func (f *OSFS) WriteFile(path string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func (f *OSFS) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (f *OSFS) Remove(path string) error {
	return os.Remove(path)
}

func (f *OSFS) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

func (f *OSFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
