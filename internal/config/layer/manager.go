package layer

import (
	"fmt"
	"sort"
	"sync"
)

// Manager holds configuration layers and provides merged access.
// Manager is safe for concurrent use.
type Manager struct {
	mu     sync.RWMutex
	layers []*Layer       // sorted by priority, ascending
	merged map[string]any // cached merge of unrooted layers
}

// NewManager creates an empty layer manager.
func NewManager() *Manager {
	return &Manager{}
}

// AddLayer adds l, replacing any existing layer with the same name.
func (m *Manager) AddLayer(l *Layer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.add(l)
}

// RemoveLayer removes the named layer and reports whether it existed.
func (m *Manager) RemoveLayer(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(name)
	if i < 0 {
		return false
	}
	m.layers = append(m.layers[:i], m.layers[i+1:]...)
	m.merged = nil
	return true
}

// Layer returns a copy of the named layer, or nil.
func (m *Manager) Layer(name string) *Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.index(name); i >= 0 {
		return m.layers[i].Clone()
	}
	return nil
}

// Layers returns copies of all layers in priority order.
func (m *Manager) Layers() []*Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Layer, len(m.layers))
	for i, l := range m.layers {
		out[i] = l.Clone()
	}
	return out
}

// Merge returns the merge of all unrooted layers.
func (m *Manager) Merge() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.merged == nil {
		m.merged = m.mergeFor("")
	}
	return cloneMap(m.merged)
}

// MergeFor returns the merge of every layer that applies to resource.
func (m *Manager) MergeFor(resource string) map[string]any {
	if resource == "" {
		return m.Merge()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mergeFor(resource)
}

// Lookup returns the effective value of path for resource along with the
// name of the layer that supplied it. Folder layers only participate when
// the resource lies inside their root.
func (m *Manager) Lookup(path, resource string) (any, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.layers) - 1; i >= 0; i-- {
		l := m.layers[i]
		if !l.AppliesTo(resource) {
			continue
		}
		if val, ok := GetByPath(l.Data, path); ok {
			if nested, isMap := val.(map[string]any); isMap {
				// Maps are merged across layers rather than shadowed.
				merged, _ := GetByPath(m.mergeFor(resource), path)
				if mm, ok := merged.(map[string]any); ok {
					nested = mm
				}
				return nested, l.Name, true
			}
			return cloneValue(val), l.Name, true
		}
	}
	return nil, "", false
}

// Set sets path in the named layer.
func (m *Manager) Set(name, path string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(name)
	if i < 0 {
		return fmt.Errorf("layer not found: %s", name)
	}
	l := m.layers[i]
	if l.Data == nil {
		l.Data = make(map[string]any)
	}
	SetByPath(l.Data, path, value)
	m.merged = nil
	return nil
}

// SetInSession sets path in the session layer, creating it when needed.
func (m *Manager) SetInSession(path string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := StandardLayerName(SourceSession)
	i := m.index(name)
	if i < 0 {
		m.add(NewLayer(name, SourceSession, PrioritySession))
		i = m.index(name)
	}
	SetByPath(m.layers[i].Data, path, value)
	m.merged = nil
}

// Delete removes path from the named layer.
func (m *Manager) Delete(name, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(name)
	if i < 0 {
		return fmt.Errorf("layer not found: %s", name)
	}
	if DeleteByPath(m.layers[i].Data, path) {
		m.merged = nil
	}
	return nil
}

func (m *Manager) mergeFor(resource string) map[string]any {
	result := make(map[string]any)
	for _, l := range m.layers {
		if l.Root != "" && !l.AppliesTo(resource) {
			continue
		}
		result = DeepMerge(result, l.Data)
	}
	return result
}

func (m *Manager) add(l *Layer) {
	if i := m.index(l.Name); i >= 0 {
		m.layers = append(m.layers[:i], m.layers[i+1:]...)
	}
	m.layers = append(m.layers, l)
	sort.SliceStable(m.layers, func(i, j int) bool {
		return m.layers[i].Priority < m.layers[j].Priority
	})
	m.merged = nil
}

func (m *Manager) index(name string) int {
	for i, l := range m.layers {
		if l.Name == name {
			return i
		}
	}
	return -1
}
