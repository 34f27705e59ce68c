package filestore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dshills/textcodec/internal/config"
	"github.com/dshills/textcodec/internal/encoding"
	"github.com/dshills/textcodec/internal/encoding/codec"
	"github.com/dshills/textcodec/internal/encoding/detect"
	"github.com/dshills/textcodec/internal/encoding/resolve"
	"github.com/dshills/textcodec/internal/logging"
	"github.com/dshills/textcodec/internal/project/vfs"
)

// Settings supplies the files section that applies to a resource.
// *config.Config implements it.
type Settings interface {
	Files(resource string) config.FilesConfig
}

// Mode selects what SetEncoding does with the new encoding.
type Mode uint8

const (
	// ModeReopen decodes the file on disk again with the new encoding.
	ModeReopen Mode = iota

	// ModeSave keeps the text and writes it with the new encoding on the
	// next save.
	ModeSave
)

// OpenOptions controls Store.Open.
type OpenOptions struct {
	// Encoding is the encoding the caller asks for. Zero means detect.
	Encoding encoding.Encoding

	// AutoGuess runs the statistical guesser even when files.autoGuessEncoding
	// is off for the resource.
	AutoGuess bool

	// AcceptBinary opens content that looks binary instead of failing with
	// ErrBinaryFile.
	AcceptBinary bool
}

// Store manages open documents.
// It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	documents map[string]*Document

	vfs      vfs.VFS
	resolver *resolve.Resolver
	codec    *codec.Codec
	settings Settings
	guesser  detect.Guesser
	logger   *log.Logger

	// Zero takes files.maxFileSize from settings.
	maxFileSize int64

	onOpen  []func(doc *Document)
	onClose []func(path string)
	onSave  []func(doc *Document)
}

// Option configures a Store.
type Option func(*Store)

// WithSettings sets the per-resource files settings.
func WithSettings(s Settings) Option {
	return func(st *Store) {
		st.settings = s
	}
}

// WithGuesser replaces the statistical guesser. Nil disables guessing.
func WithGuesser(g detect.Guesser) Option {
	return func(st *Store) {
		st.guesser = g
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(st *Store) {
		st.logger = logging.WithComponent(l, "filestore")
	}
}

// WithMaxFileSize caps the size of files Open accepts, overriding
// files.maxFileSize. A negative size disables the cap.
func WithMaxFileSize(size int64) Option {
	return func(st *Store) {
		st.maxFileSize = size
	}
}

// New creates a Store reading and writing through fsys.
func New(fsys vfs.VFS, resolver *resolve.Resolver, cdc *codec.Codec, opts ...Option) *Store {
	s := &Store{
		documents: make(map[string]*Document),
		vfs:       fsys,
		resolver:  resolver,
		codec:     cdc,
		guesser:   detect.NewChardetGuesser(),
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnOpen registers a handler called after a document is opened.
func (s *Store) OnOpen(h func(doc *Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onOpen = append(s.onOpen, h)
}

// OnClose registers a handler called after a document is closed.
func (s *Store) OnClose(h func(path string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClose = append(s.onClose, h)
}

// OnSave registers a handler called after a document is written.
func (s *Store) OnSave(h func(doc *Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSave = append(s.onSave, h)
}

// Open opens a file and returns its Document.
// If the file is already open, the existing Document is returned and opts
// are ignored.
func (s *Store) Open(ctx context.Context, path string, opts OpenOptions) (*Document, error) {
	absPath, err := s.vfs.Abs(path)
	if err != nil {
		return nil, &PathError{Op: "open", Path: path, Err: err}
	}

	if doc, ok := s.Get(absPath); ok {
		return doc, nil
	}

	l, err := s.load(ctx, absPath, opts)
	if err != nil {
		return nil, err
	}
	doc := newDocument(absPath, l)

	s.mu.Lock()
	if existing, ok := s.documents[absPath]; ok {
		s.mu.Unlock()
		return existing, nil
	}
	s.documents[absPath] = doc
	handlers := append([]func(*Document){}, s.onOpen...)
	s.mu.Unlock()

	s.logger.Debug("opened document", "path", absPath, "encoding", l.enc.Encoding, "bom", l.enc.HasBOM, "eol", l.lineEnding)
	for _, h := range handlers {
		h(doc)
	}
	return doc, nil
}

// load reads absPath, detects and resolves its encoding and decodes it.
func (s *Store) load(ctx context.Context, absPath string, opts OpenOptions) (loaded, error) {
	if err := ctx.Err(); err != nil {
		return loaded{}, &PathError{Op: "open", Path: absPath, Err: err}
	}

	info, err := s.vfs.Stat(absPath)
	if err != nil {
		return loaded{}, &PathError{Op: "open", Path: absPath, Err: err}
	}
	if info.IsDir() {
		return loaded{}, &PathError{Op: "open", Path: absPath, Err: ErrIsDirectory}
	}

	files := s.files(absPath)
	if limit := s.sizeLimit(files); limit > 0 && info.Size() > limit {
		return loaded{}, &PathError{Op: "open", Path: absPath, Err: fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, info.Size(), limit)}
	}

	data, err := s.vfs.ReadFile(absPath)
	if err != nil {
		return loaded{}, &PathError{Op: "open", Path: absPath, Err: err}
	}

	detected, err := detect.Detect(ctx, data, len(data), detect.Options{
		AutoGuess: opts.AutoGuess || files.AutoGuessEncoding,
		Guesser:   s.guesser,
	})
	if err != nil {
		// Cancelled before guessing: keep what the cheap checks found.
		s.logger.Debug("encoding guess skipped", "path", absPath, "err", err)
	}
	if detected.SeemsBinary && !opts.AcceptBinary {
		return loaded{}, &PathError{Op: "open", Path: absPath, Err: ErrBinaryFile}
	}

	enc := s.resolver.ReadEncoding(absPath, resolve.ReadOptions{Encoding: opts.Encoding}, detected.Encoding)
	s.logger.Debug("resolved read encoding",
		"path", absPath,
		"requested", opts.Encoding,
		"detected", detected.Encoding,
		"resolved", enc,
	)

	text, err := s.codec.Decode(data, enc)
	if err != nil {
		return loaded{}, &PathError{Op: "decode", Path: absPath, Err: err}
	}

	return loaded{
		text: text,
		enc: encoding.ResourceEncoding{
			Encoding: enc,
			HasBOM:   enc.AlwaysHasBOM() || encoding.HasBOMPrefix(data, enc),
		},
		lineEnding: DetectLineEnding(text),
		modTime:    info.ModTime(),
	}, nil
}

// Close closes a document.
// Returns ErrDocumentDirty if the document has unsaved changes and force is
// false.
func (s *Store) Close(ctx context.Context, path string, force bool) error {
	absPath, err := s.vfs.Abs(path)
	if err != nil {
		return &PathError{Op: "close", Path: path, Err: err}
	}

	s.mu.Lock()
	doc, ok := s.documents[absPath]
	if !ok {
		s.mu.Unlock()
		return &PathError{Op: "close", Path: path, Err: ErrDocumentNotOpen}
	}
	if !force && doc.IsDirty() {
		s.mu.Unlock()
		return &PathError{Op: "close", Path: path, Err: ErrDocumentDirty}
	}
	doc.markClosed()
	delete(s.documents, absPath)
	handlers := append([]func(string){}, s.onClose...)
	s.mu.Unlock()

	for _, h := range handlers {
		h(absPath)
	}
	return nil
}

// Get returns a document by path if it is open.
func (s *Store) Get(path string) (*Document, bool) {
	absPath, err := s.vfs.Abs(path)
	if err != nil {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[absPath]
	return doc, ok
}

// Documents returns all open documents.
func (s *Store) Documents() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]*Document, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, doc)
	}
	return docs
}

// Count returns the number of open documents.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

// UpdateContent replaces the text of an open document.
func (s *Store) UpdateContent(path string, text string) error {
	doc, err := s.document("update", path)
	if err != nil {
		return err
	}
	doc.setText(text)
	return nil
}

// Save writes a document to its path.
func (s *Store) Save(ctx context.Context, path string) error {
	doc, err := s.document("save", path)
	if err != nil {
		return err
	}
	return s.write(ctx, "save", doc, doc.Path())
}

// SaveAs writes a document to newPath and moves it there.
func (s *Store) SaveAs(ctx context.Context, oldPath, newPath string) error {
	doc, err := s.document("saveas", oldPath)
	if err != nil {
		return err
	}

	newAbsPath, err := s.vfs.Abs(newPath)
	if err != nil {
		return &PathError{Op: "saveas", Path: newPath, Err: err}
	}
	oldAbsPath := doc.Path()
	if newAbsPath == oldAbsPath {
		return s.write(ctx, "saveas", doc, oldAbsPath)
	}

	s.mu.RLock()
	_, exists := s.documents[newAbsPath]
	s.mu.RUnlock()
	if exists {
		return &PathError{Op: "saveas", Path: newPath, Err: ErrAlreadyOpen}
	}

	if err := s.write(ctx, "saveas", doc, newAbsPath); err != nil {
		return err
	}

	s.mu.Lock()
	if cur, ok := s.documents[oldAbsPath]; ok && cur == doc {
		delete(s.documents, oldAbsPath)
	}
	s.documents[newAbsPath] = doc
	s.mu.Unlock()
	return nil
}

// write encodes the document's text and writes it to target.
func (s *Store) write(ctx context.Context, op string, doc *Document, target string) error {
	if doc.ReadOnly() {
		return &PathError{Op: op, Path: target, Err: ErrReadOnly}
	}
	if err := ctx.Err(); err != nil {
		return &PathError{Op: op, Path: target, Err: err}
	}

	text, enc, overwrite, docEOL := doc.snapshot()

	eol := docEOL
	if configured, ok := ParseEOL(s.files(target).EOL); ok {
		eol = configured
	}
	written := NormalizeLineEndings(text, eol)

	resEnc := s.resolver.WriteEncoding(ctx, target, resolve.WriteOptions{
		Encoding:          enc,
		OverwriteEncoding: overwrite,
	})
	s.logger.Debug("resolved write encoding",
		"path", target,
		"encoding", resEnc.Encoding,
		"bom", resEnc.HasBOM,
		"overwrite", overwrite,
	)

	data, err := s.codec.Encode(written, resEnc)
	if err != nil {
		return &PathError{Op: "encode", Path: target, Err: err}
	}
	if err := s.vfs.WriteFile(target, data, 0644); err != nil {
		return &PathError{Op: op, Path: target, Err: err}
	}

	modTime := time.Now()
	if info, err := s.vfs.Stat(target); err == nil {
		modTime = info.ModTime()
	}
	doc.markSaved(target, text, written, resEnc, modTime)

	s.mu.RLock()
	handlers := append([]func(*Document){}, s.onSave...)
	s.mu.RUnlock()
	for _, h := range handlers {
		h(doc)
	}
	return nil
}

// Reload reads a document from disk again with its current encoding.
// Returns ErrDocumentDirty if the document has unsaved changes and force is
// false.
func (s *Store) Reload(ctx context.Context, path string, force bool) error {
	doc, err := s.document("reload", path)
	if err != nil {
		return err
	}
	if !force && doc.IsDirty() {
		return &PathError{Op: "reload", Path: path, Err: ErrDocumentDirty}
	}

	l, err := s.load(ctx, doc.Path(), OpenOptions{Encoding: doc.Encoding().Encoding, AcceptBinary: true})
	if err != nil {
		return err
	}
	doc.reload(l)
	return nil
}

// SetEncoding changes the encoding of an open document.
//
// ModeReopen decodes the file on disk again with enc and fails with
// ErrDocumentDirty when there are unsaved changes. ModeSave keeps the text
// and marks the document dirty; the next save writes enc and ignores any
// BOM already in the file.
func (s *Store) SetEncoding(ctx context.Context, path string, enc encoding.Encoding, mode Mode) error {
	doc, err := s.document("setencoding", path)
	if err != nil {
		return err
	}

	switch mode {
	case ModeSave:
		doc.setSaveEncoding(enc)
		return nil
	case ModeReopen:
		if doc.IsDirty() {
			return &PathError{Op: "reopen", Path: path, Err: ErrDocumentDirty}
		}
		l, err := s.load(ctx, doc.Path(), OpenOptions{Encoding: enc, AcceptBinary: true})
		if err != nil {
			return err
		}
		doc.reload(l)
		return nil
	}
	return &PathError{Op: "setencoding", Path: path, Err: errors.New("unknown mode")}
}

func (s *Store) document(op, path string) (*Document, error) {
	doc, ok := s.Get(path)
	if !ok {
		return nil, &PathError{Op: op, Path: path, Err: ErrDocumentNotOpen}
	}
	return doc, nil
}

func (s *Store) files(resource string) config.FilesConfig {
	if s.settings == nil {
		return config.FilesConfig{EOL: "auto", MaxFileSize: config.DefaultMaxFileSize}
	}
	return s.settings.Files(resource)
}

func (s *Store) sizeLimit(files config.FilesConfig) int64 {
	if s.maxFileSize != 0 {
		return s.maxFileSize
	}
	return files.MaxFileSize
}
