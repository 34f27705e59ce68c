package resolve

import (
	"path/filepath"
	"strings"

	"github.com/dshills/textcodec/internal/encoding"
)

// Overrides is an ordered list of encoding overrides. The first rule that
// matches a resource wins.
type Overrides []encoding.Override

// Match returns the encoding of the first rule matching resource.
// A rule matches when its Parent is resource or an ancestor of it, or
// when resource's extension equals "." + Extension.
func (o Overrides) Match(resource string) (encoding.Encoding, bool) {
	if resource == "" {
		return encoding.Encoding{}, false
	}

	for _, rule := range o {
		if rule.Encoding.IsZero() {
			continue
		}
		if rule.Parent != "" && isEqualOrParent(resource, rule.Parent) {
			return rule.Encoding, true
		}
		if rule.Extension != "" && filepath.Ext(resource) == "."+rule.Extension {
			return rule.Encoding, true
		}
	}
	return encoding.Encoding{}, false
}

// isEqualOrParent reports whether parent is path or one of its ancestors.
func isEqualOrParent(path, parent string) bool {
	path = filepath.Clean(path)
	parent = filepath.Clean(parent)

	if path == parent {
		return true
	}
	if !strings.HasSuffix(parent, string(filepath.Separator)) {
		parent += string(filepath.Separator)
	}
	return strings.HasPrefix(path, parent)
}
