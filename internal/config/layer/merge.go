package layer

import (
	"path/filepath"
	"reflect"
	"sort"
	"strings"
)

// DeepMerge merges src into dst and returns dst.
// Nested maps merge key by key; any other src value replaces the dst value.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}

	for key, srcVal := range src {
		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = DeepMerge(dstMap, srcMap)
			continue
		}
		dst[key] = cloneValue(srcVal)
	}
	return dst
}

func cloneValue(val any) any {
	switch v := val.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		return cloneSlice(v)
	default:
		return val
	}
}

// GetByPath retrieves a value from a nested map using a dot-separated path.
func GetByPath(data map[string]any, path string) (any, bool) {
	if data == nil || path == "" {
		return nil, false
	}

	var current any = data
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = m[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

// SetByPath sets a value in a nested map, creating intermediate maps.
// Non-map values on the way are replaced.
func SetByPath(data map[string]any, path string, value any) {
	if data == nil || path == "" {
		return
	}

	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

// DeleteByPath removes the value at path. It reports whether a value was
// removed.
func DeleteByPath(data map[string]any, path string) bool {
	if data == nil || path == "" {
		return false
	}

	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			return false
		}
		current = next
	}

	key := parts[len(parts)-1]
	if _, ok := current[key]; !ok {
		return false
	}
	delete(current, key)
	return true
}

// FlattenMap flattens a nested map into dot-separated keys.
func FlattenMap(data map[string]any) map[string]any {
	result := make(map[string]any)
	flatten(data, "", result)
	return result
}

func flatten(data map[string]any, prefix string, result map[string]any) {
	for key, val := range data {
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok && len(nested) > 0 {
			flatten(nested, key, result)
			continue
		}
		result[key] = val
	}
}

// ChangedPaths returns the sorted leaf paths whose values differ between
// old and new, including paths present in only one of them.
func ChangedPaths(old, new map[string]any) []string {
	oldFlat := FlattenMap(old)
	newFlat := FlattenMap(new)

	var changed []string
	for path, newVal := range newFlat {
		if oldVal, ok := oldFlat[path]; !ok || !reflect.DeepEqual(oldVal, newVal) {
			changed = append(changed, path)
		}
	}
	for path := range oldFlat {
		if _, ok := newFlat[path]; !ok {
			changed = append(changed, path)
		}
	}

	sort.Strings(changed)
	return changed
}

// Within reports whether path is root or lies below it.
func Within(path, root string) bool {
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if path == root {
		return true
	}
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	return strings.HasPrefix(path, root)
}
