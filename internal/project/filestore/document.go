// Package filestore manages open documents: it reads files through a vfs,
// detects and resolves their encoding, decodes them to text, and encodes
// them again on save.
package filestore

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/textcodec/internal/encoding"
)

// Document is an open file. ID and the open timestamp never change; all
// other state is read through methods.
type Document struct {
	mu sync.RWMutex

	// ID identifies the document for the lifetime of the store.
	ID string

	// OpenedAt is when the document was opened.
	OpenedAt time.Time

	path       string
	version    int64
	text       string
	original   string
	enc        encoding.ResourceEncoding
	lineEnding LineEnding
	readOnly   bool

	// Encoding chosen for the next save. It overwrites whatever BOM the
	// file on disk has.
	saveEncoding encoding.Encoding

	modifiedAt  time.Time
	diskModTime time.Time
	closed      bool
}

// loaded is the result of reading and decoding a file.
type loaded struct {
	text       string
	enc        encoding.ResourceEncoding
	lineEnding LineEnding
	modTime    time.Time
}

func newDocument(path string, l loaded) *Document {
	now := time.Now()
	return &Document{
		ID:          uuid.NewString(),
		OpenedAt:    now,
		path:        path,
		version:     1,
		text:        l.text,
		original:    l.text,
		enc:         l.enc,
		lineEnding:  l.lineEnding,
		modifiedAt:  now,
		diskModTime: l.modTime,
	}
}

// Path returns the absolute path of the document.
func (d *Document) Path() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.path
}

// Text returns the current text.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

// Version is incremented on each change of text or encoding.
func (d *Document) Version() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Encoding returns the encoding the document was read with, or last
// saved with. HasBOM tells whether the next save writes a byte order mark,
// which for UTF-16 and the UTF-8 BOM variant is always.
func (d *Document) Encoding() encoding.ResourceEncoding {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.enc
}

// SaveEncoding returns the encoding picked for the next save, if any.
func (d *Document) SaveEncoding() (encoding.Encoding, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.saveEncoding, !d.saveEncoding.IsZero()
}

// LineEnding returns the line ending detected when the file was read.
func (d *Document) LineEnding() LineEnding {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lineEnding
}

// ReadOnly reports whether saving is refused.
func (d *Document) ReadOnly() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.readOnly
}

// SetReadOnly marks the document read-only or writable.
func (d *Document) SetReadOnly(readOnly bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.readOnly = readOnly
}

// IsDirty reports unsaved text changes or a pending encoding change.
func (d *Document) IsDirty() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text != d.original || !d.saveEncoding.IsZero()
}

// IsClosed returns true if the document has been closed.
func (d *Document) IsClosed() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.closed
}

// ModifiedAt returns when the document last changed in memory.
func (d *Document) ModifiedAt() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.modifiedAt
}

// DiskModTime returns the file's modification time when last read or saved.
func (d *Document) DiskModTime() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.diskModTime
}

func (d *Document) setText(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if text == d.text {
		return
	}
	d.text = text
	d.version++
	d.modifiedAt = time.Now()
}

func (d *Document) setSaveEncoding(enc encoding.Encoding) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.saveEncoding = enc
	d.version++
	d.modifiedAt = time.Now()
}

// snapshot returns what Save needs, copied under the lock.
func (d *Document) snapshot() (text string, target encoding.Encoding, overwrite bool, le LineEnding) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.saveEncoding.IsZero() {
		return d.text, d.saveEncoding, true, d.lineEnding
	}
	return d.text, d.enc.Encoding, false, d.lineEnding
}

// markSaved records a successful write. written is before with line endings
// normalized; text edited since the snapshot is kept and stays dirty.
func (d *Document) markSaved(path, before, written string, enc encoding.ResourceEncoding, modTime time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.text == before {
		d.text = written
	}
	d.path = path
	d.original = written
	d.enc = enc
	d.saveEncoding = encoding.Encoding{}
	d.diskModTime = modTime
}

// reload replaces the document state with freshly read content.
// It reports whether text or encoding changed.
func (d *Document) reload(l loaded) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	changed := l.text != d.text || l.enc != d.enc
	d.text = l.text
	d.original = l.text
	d.enc = l.enc
	d.lineEnding = l.lineEnding
	d.saveEncoding = encoding.Encoding{}
	d.diskModTime = l.modTime
	if changed {
		d.version++
		d.modifiedAt = time.Now()
	}
	return changed
}

func (d *Document) markClosed() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
}
