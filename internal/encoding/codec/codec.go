package codec

import (
	"github.com/dshills/textcodec/internal/encoding"
)

// Codec performs byte/text conversion for resolved encodings.
type Codec struct {
	registry *Registry
}

// New creates a Codec over registry. A nil registry uses NewRegistry.
func New(registry *Registry) *Codec {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Codec{registry: registry}
}

// Registry returns the general codec behind c.
func (c *Codec) Registry() *Registry {
	return c.registry
}

// Encode serializes text for target. Plain UTF-8 without a BOM is a direct
// conversion; everything else goes through the registry.
func (c *Codec) Encode(text string, target encoding.ResourceEncoding) ([]byte, error) {
	name := target.Encoding.CodecName()
	if name == "" {
		name = encoding.NameUTF8
	}
	if name == encoding.NameUTF8 && !target.HasBOM {
		return []byte(text), nil
	}
	return c.registry.Encode(text, name, target.HasBOM)
}

// Decode converts data, written in enc, to text.
func (c *Codec) Decode(data []byte, enc encoding.Encoding) (string, error) {
	name := enc.CodecName()
	if name == "" {
		name = encoding.NameUTF8
	}
	return c.registry.Decode(data, name)
}

// Exists reports whether enc can be converted.
func (c *Codec) Exists(enc encoding.Encoding) bool {
	if enc.IsZero() {
		return false
	}
	return c.registry.Exists(enc.CodecName())
}
