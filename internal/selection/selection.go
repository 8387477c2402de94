// Package selection tracks the entries a user has marked for transfer. The
// set is keyed by path and survives navigation between directories.
package selection

import (
	"sync"

	"github.com/freedroid/freedroid/internal/models"
)

// Model is a path-keyed set of selected items in insertion order.
// It is safe for concurrent use.
type Model struct {
	mu        sync.RWMutex
	index     map[string]int // path -> position in items
	items     []models.SelectedItem
	totalSize int64
}

// New returns an empty selection.
func New() *Model {
	return &Model{index: make(map[string]int)}
}

// Add inserts entry if its path is not already selected.
// It reports whether the set changed.
func (m *Model) Add(entry models.DirectoryEntry) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addLocked(entry.Selected())
}

func (m *Model) addLocked(item models.SelectedItem) bool {
	if _, ok := m.index[item.Path]; ok {
		return false
	}
	m.index[item.Path] = len(m.items)
	m.items = append(m.items, item)
	m.recompute()
	return true
}

// Remove drops path from the set. Removing a non-member is a no-op that
// returns false.
func (m *Model) Remove(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[path]
	if !ok {
		return false
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	delete(m.index, path)
	for j := i; j < len(m.items); j++ {
		m.index[m.items[j].Path] = j
	}
	m.recompute()
	return true
}

// Toggle mirrors a checkbox: selected adds the entry, unselected removes it.
func (m *Model) Toggle(entry models.DirectoryEntry, selected bool) {
	if selected {
		m.Add(entry)
	} else {
		m.Remove(entry.Path)
	}
}

// Contains reports whether path is selected.
func (m *Model) Contains(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.index[path]
	return ok
}

// Items returns a copy of the selection in insertion order.
func (m *Model) Items() []models.SelectedItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.SelectedItem, len(m.items))
	copy(out, m.items)
	return out
}

// Len returns the number of selected items.
func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// TotalSize returns the sum of the selected items' sizes.
func (m *Model) TotalSize() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalSize
}

// SelectAll adds every entry of a listing. Already selected paths keep their
// position. It returns how many entries were added.
func (m *Model) SelectAll(entries []models.DirectoryEntry) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	added := 0
	for _, e := range entries {
		if m.addLocked(e.Selected()) {
			added++
		}
	}
	return added
}

// Clear empties the selection.
func (m *Model) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	m.index = make(map[string]int)
	m.totalSize = 0
}

// UpdateSize records a size computed after the item was selected, such as a
// background directory size. It reports whether path is selected.
func (m *Model) UpdateSize(path string, size int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[path]
	if !ok {
		return false
	}
	m.items[i].Size = size
	m.recompute()
	return true
}

func (m *Model) recompute() {
	var total int64
	for _, it := range m.items {
		total += it.Size
	}
	m.totalSize = total
}
