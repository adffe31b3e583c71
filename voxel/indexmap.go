package voxel

import "github.com/go-mclib/voxelpack/block"

// PalIdx is the dense index a ChunkPalette assigns to each distinct block
// id it has seen, in insertion order.
type PalIdx uint32

// IndexMap is a bijection between block.ID and a dense PalIdx, preserving
// insertion order. It is two containers kept in lockstep — a hash map for
// O(1) value-to-index lookup, a slice for O(1) index-to-value lookup —
// rather than a single ordered-map structure, since Go's map does not
// preserve insertion order and a single structure buying both directions
// at O(1) does not exist in the standard library.
type IndexMap struct {
	byValue map[block.ID]PalIdx
	byIndex []block.ID
}

// NewIndexMap returns an empty map.
func NewIndexMap() *IndexMap {
	return &IndexMap{byValue: make(map[block.ID]PalIdx)}
}

// Len returns the number of distinct values stored.
func (m *IndexMap) Len() int { return len(m.byIndex) }

// Index returns the index assigned to v, if any.
func (m *IndexMap) Index(v block.ID) (PalIdx, bool) {
	i, ok := m.byValue[v]
	return i, ok
}

// Value returns the value assigned to index i, if any.
func (m *IndexMap) Value(i PalIdx) (block.ID, bool) {
	if int(i) >= len(m.byIndex) {
		return 0, false
	}
	return m.byIndex[i], true
}

// IndexOrAdd returns the index for v, inserting it at the next index if it
// is not already present. The second return value reports whether an
// insertion happened.
func (m *IndexMap) IndexOrAdd(v block.ID) (PalIdx, bool) {
	if i, ok := m.byValue[v]; ok {
		return i, false
	}
	idx := PalIdx(len(m.byIndex))
	m.byValue[v] = idx
	m.byIndex = append(m.byIndex, v)
	return idx, true
}
