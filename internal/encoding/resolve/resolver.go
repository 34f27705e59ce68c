// Package resolve decides which encoding to use when a resource is read or
// written.
//
// Resolution combines, from strongest to weakest: a configured override for
// the resource, the caller's explicit request, the detected encoding, and the
// stored files.encoding preference. Unknown names never fail; they resolve to
// UTF-8 so text stays readable and writable.
package resolve

import (
	"context"
	"sync/atomic"

	"github.com/dshills/textcodec/internal/encoding"
	"github.com/dshills/textcodec/internal/encoding/detect"
)

// HeadReader reads a bounded prefix of a resource.
type HeadReader interface {
	ReadFileHead(path string, n int) ([]byte, error)
}

// Preferences is the stored files.encoding setting, at resource scope.
// An empty string means the setting is absent.
type Preferences interface {
	Encoding(resource string) string
}

// Registry reports which encodings can be converted.
type Registry interface {
	Exists(enc encoding.Encoding) bool
}

// Deps holds the collaborators of a Resolver.
type Deps struct {
	// Storage is probed by WriteEncoding for an existing UTF-8 BOM.
	// Nil disables the probe.
	Storage HeadReader

	// Preferences supplies files.encoding. Nil means no preference.
	Preferences Preferences

	// Registry validates resolved names. Required.
	Registry Registry

	// Overrides is the initial override list.
	Overrides []encoding.Override
}

// ReadOptions carries per-call read parameters.
type ReadOptions struct {
	// Encoding is the encoding explicitly requested by the caller.
	Encoding encoding.Encoding
}

// WriteOptions carries per-call write parameters.
type WriteOptions struct {
	// Encoding is the encoding the caller would like to write.
	Encoding encoding.Encoding

	// OverwriteEncoding skips preserving a BOM found in the existing file,
	// used when the user explicitly picked a new encoding.
	OverwriteEncoding bool
}

// Resolver computes effective encodings for resources.
// Resolver is safe for concurrent use; the override list is replaced
// atomically by SetOverrides.
type Resolver struct {
	storage     HeadReader
	preferences Preferences
	registry    Registry
	overrides   atomic.Pointer[Overrides]
}

// New creates a Resolver from deps.
func New(deps Deps) *Resolver {
	r := &Resolver{
		storage:     deps.Storage,
		preferences: deps.Preferences,
		registry:    deps.Registry,
	}
	r.SetOverrides(deps.Overrides)
	return r
}

// SetOverrides replaces the override list.
func (r *Resolver) SetOverrides(overrides []encoding.Override) {
	list := make(Overrides, len(overrides))
	copy(list, overrides)
	r.overrides.Store(&list)
}

// Overrides returns a copy of the current override list.
func (r *Resolver) Overrides() []encoding.Override {
	list := *r.overrides.Load()
	out := make([]encoding.Override, len(list))
	copy(out, list)
	return out
}

// Override returns the override encoding for resource, if any.
func (r *Resolver) Override(resource string) (encoding.Encoding, bool) {
	return r.overrides.Load().Match(resource)
}

// ReadEncoding returns the encoding to decode resource with.
//
// An explicit request wins over detection, except that a detected
// UTF-8-with-BOM is kept when plain UTF-8 was requested. Without either, a
// stored utf8bom preference is downgraded to plain UTF-8: the content was
// inspected and carries no BOM.
func (r *Resolver) ReadEncoding(resource string, opts ReadOptions, detected encoding.Encoding) encoding.Encoding {
	var preferred encoding.Encoding

	switch {
	case !opts.Encoding.IsZero():
		if detected.IsUTF8BOM() && opts.Encoding.IsUTF8() {
			preferred = encoding.UTF8BOM
		} else {
			preferred = opts.Encoding
		}
	case !detected.IsZero():
		preferred = detected
	case r.preference(resource).IsUTF8BOM():
		preferred = encoding.UTF8
	}

	return r.EncodingForResource(resource, preferred)
}

// EncodingForResource applies the final precedence: override, then
// preferred, then the stored preference. Empty or unknown results become
// UTF-8.
func (r *Resolver) EncodingForResource(resource string, preferred encoding.Encoding) encoding.Encoding {
	var enc encoding.Encoding

	if override, ok := r.Override(resource); ok {
		enc = override
	} else if !preferred.IsZero() {
		enc = preferred
	} else {
		enc = r.preference(resource)
	}

	if enc.IsZero() || !r.exists(enc) {
		return encoding.UTF8
	}
	return enc
}

// PreferredWriteEncoding resolves the write encoding without touching
// storage. UTF-16 and UTF-8-with-BOM always carry a BOM.
func (r *Resolver) PreferredWriteEncoding(resource string, preferred encoding.Encoding) encoding.ResourceEncoding {
	enc := r.EncodingForResource(resource, preferred)
	return encoding.ResourceEncoding{
		Encoding: enc,
		HasBOM:   enc.AlwaysHasBOM(),
	}
}

// WriteEncoding resolves how resource is written. A resolved plain UTF-8
// keeps a BOM that the existing file already has, unless
// opts.OverwriteEncoding is set. Failure to probe the file, including a
// missing file or a done ctx, counts as "no BOM".
func (r *Resolver) WriteEncoding(ctx context.Context, resource string, opts WriteOptions) encoding.ResourceEncoding {
	result := r.PreferredWriteEncoding(resource, opts.Encoding)
	if result.HasBOM || opts.OverwriteEncoding || !result.Encoding.IsUTF8() {
		return result
	}

	if r.hasExistingUTF8BOM(ctx, resource) {
		result.HasBOM = true
	}
	return result
}

func (r *Resolver) hasExistingUTF8BOM(ctx context.Context, resource string) bool {
	if r.storage == nil || ctx.Err() != nil {
		return false
	}

	head, err := r.storage.ReadFileHead(resource, encoding.UTF8BOMLen)
	if err != nil {
		return false
	}
	return detect.SniffBOM(head, len(head)) == detect.BOMUTF8
}

func (r *Resolver) preference(resource string) encoding.Encoding {
	if r.preferences == nil {
		return encoding.Encoding{}
	}
	return encoding.Parse(r.preferences.Encoding(resource))
}

func (r *Resolver) exists(enc encoding.Encoding) bool {
	if enc.IsUTF8BOM() {
		return true
	}
	return r.registry != nil && r.registry.Exists(enc)
}
