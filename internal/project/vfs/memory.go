package vfs

import (
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"
)

var (
	errIsDir    = syscall.EISDIR
	errNotDir   = syscall.ENOTDIR
	errNotEmpty = syscall.ENOTEMPTY
)

// MemFS implements VFS in memory. Paths are slash separated and rooted
// at "/"; relative paths are resolved against the root.
//
// MemFS is safe for concurrent use.
type MemFS struct {
	mu    sync.RWMutex
	files map[string]*memFile
	dirs  map[string]bool
}

type memFile struct {
	content []byte
	mode    fs.FileMode
	modTime time.Time
}

// NewMemFS creates an empty in-memory file system.
func NewMemFS() *MemFS {
	return &MemFS{
		files: make(map[string]*memFile),
		dirs:  map[string]bool{"/": true},
	}
}

var _ VFS = (*MemFS)(nil)

// ReadFile reads the entire file content.
func (m *MemFS) ReadFile(filePath string) ([]byte, error) {
	return m.read("read", filePath, -1)
}

// ReadFileHead reads at most n bytes from the start of the file.
func (m *MemFS) ReadFileHead(filePath string, n int) ([]byte, error) {
	if n < 0 {
		n = 0
	}
	return m.read("read", filePath, n)
}

func (m *MemFS) read(op, filePath string, limit int) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filePath = cleanPath(filePath)
	f, ok := m.files[filePath]
	if !ok {
		if m.dirs[filePath] {
			return nil, &fs.PathError{Op: op, Path: filePath, Err: errIsDir}
		}
		return nil, &fs.PathError{Op: op, Path: filePath, Err: fs.ErrNotExist}
	}

	content := f.content
	if limit >= 0 && len(content) > limit {
		content = content[:limit]
	}

	// Callers own the returned slice.
	out := make([]byte, len(content))
	copy(out, content)
	return out, nil
}

// Stat returns file information.
func (m *MemFS) Stat(filePath string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filePath = cleanPath(filePath)

	if f, ok := m.files[filePath]; ok {
		return NewFileInfo(filePath, path.Base(filePath), int64(len(f.content)), f.mode, f.modTime, false), nil
	}
	if m.dirs[filePath] {
		return NewFileInfo(filePath, path.Base(filePath), 0, fs.ModeDir|0755, time.Time{}, true), nil
	}
	return FileInfo{}, &fs.PathError{Op: "stat", Path: filePath, Err: fs.ErrNotExist}
}

// WriteFile writes data to a file, creating it if necessary.
// The parent directory must exist.
func (m *MemFS) WriteFile(filePath string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	filePath = cleanPath(filePath)

	if m.dirs[filePath] {
		return &fs.PathError{Op: "write", Path: filePath, Err: errIsDir}
	}
	if !m.dirs[path.Dir(filePath)] {
		return &fs.PathError{Op: "write", Path: filePath, Err: fs.ErrNotExist}
	}

	content := make([]byte, len(data))
	copy(content, data)

	mode := perm
	if existing, ok := m.files[filePath]; ok {
		mode = existing.mode
	}
	m.files[filePath] = &memFile{content: content, mode: mode, modTime: time.Now()}
	return nil
}

// MkdirAll creates a directory and all parent directories.
func (m *MemFS) MkdirAll(dirPath string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mkdirAll(cleanPath(dirPath))
}

func (m *MemFS) mkdirAll(dirPath string) error {
	current := ""
	for _, part := range strings.Split(strings.Trim(dirPath, "/"), "/") {
		if part == "" {
			continue
		}
		current += "/" + part
		if _, ok := m.files[current]; ok {
			return &fs.PathError{Op: "mkdir", Path: current, Err: errNotDir}
		}
		m.dirs[current] = true
	}
	return nil
}

// Remove removes a file or empty directory.
func (m *MemFS) Remove(filePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	filePath = cleanPath(filePath)

	if _, ok := m.files[filePath]; ok {
		delete(m.files, filePath)
		return nil
	}
	if !m.dirs[filePath] {
		return &fs.PathError{Op: "remove", Path: filePath, Err: fs.ErrNotExist}
	}
	if filePath == "/" {
		return &fs.PathError{Op: "remove", Path: filePath, Err: errNotEmpty}
	}

	prefix := filePath + "/"
	for p := range m.files {
		if strings.HasPrefix(p, prefix) {
			return &fs.PathError{Op: "remove", Path: filePath, Err: errNotEmpty}
		}
	}
	for d := range m.dirs {
		if strings.HasPrefix(d, prefix) {
			return &fs.PathError{Op: "remove", Path: filePath, Err: errNotEmpty}
		}
	}

	delete(m.dirs, filePath)
	return nil
}

// Abs returns the cleaned, rooted path.
func (m *MemFS) Abs(filePath string) (string, error) {
	return cleanPath(filePath), nil
}

// Exists returns true if the path exists.
func (m *MemFS) Exists(filePath string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filePath = cleanPath(filePath)
	_, ok := m.files[filePath]
	return ok || m.dirs[filePath]
}

// AddFile creates a file and its parent directories. Used to seed fixtures.
func (m *MemFS) AddFile(filePath string, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	filePath = cleanPath(filePath)
	if m.dirs[filePath] {
		return &fs.PathError{Op: "write", Path: filePath, Err: errIsDir}
	}
	if err := m.mkdirAll(path.Dir(filePath)); err != nil {
		return err
	}

	data := make([]byte, len(content))
	copy(data, content)
	m.files[filePath] = &memFile{content: data, mode: 0644, modTime: time.Now()}
	return nil
}

// Files returns all file paths, sorted.
func (m *MemFS) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]string, 0, len(m.files))
	for f := range m.files {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

func cleanPath(p string) string {
	p = path.Clean(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
