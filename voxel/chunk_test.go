package voxel

import (
	"testing"

	"github.com/go-mclib/voxelpack/block"
)

func TestChunkStartsEmpty(t *testing.T) {
	c := NewChunk(dims16)
	v, ok := c.GetAt(0)
	if !ok || v != block.Empty {
		t.Fatalf("GetAt(0) on new chunk = %v, %v, want Empty true", v, ok)
	}
	if _, promoted := c.Palette(); promoted {
		t.Fatal("new chunk should not be promoted to Palette storage")
	}
}

func TestChunkSingleFillStaysUnpromoted(t *testing.T) {
	c := NewChunk(dims16)
	c.Fill(block.Coord{}, dims16, block.ID(3))
	if _, promoted := c.Palette(); promoted {
		t.Fatal("full-chunk fill should stay in Single storage")
	}
	v, ok := c.GetAt(100)
	if !ok || v != block.ID(3) {
		t.Fatalf("GetAt(100) = %v, %v, want 3 true", v, ok)
	}
}

func TestChunkSetAtPromotesAndPreservesImplicitValue(t *testing.T) {
	c := NewChunk(dims16)
	c.Fill(block.Coord{}, dims16, block.ID(4))

	changed, ok := c.SetAt(50, block.ID(9))
	if !ok || !changed {
		t.Fatalf("SetAt(50, 9) = %v, %v, want true true", changed, ok)
	}
	_, promoted := c.Palette()
	if !promoted {
		t.Fatal("chunk should have promoted to Palette storage")
	}

	v, ok := c.GetAt(50)
	if !ok || v != block.ID(9) {
		t.Fatalf("GetAt(50) = %v, %v, want 9 true", v, ok)
	}
	other, ok := c.GetAt(51)
	if !ok || other != block.ID(4) {
		t.Fatalf("GetAt(51) = %v, %v, want 4 true (implicit value preserved)", other, ok)
	}
}

func TestChunkOutOfBounds(t *testing.T) {
	c := NewChunk(dims16)
	if _, ok := c.GetAt(-1); ok {
		t.Fatal("GetAt(-1) should be out of range")
	}
	if _, ok := c.GetAt(dims16.Volume()); ok {
		t.Fatal("GetAt(volume) should be out of range")
	}
}

func TestChunkGetSliceEmpty(t *testing.T) {
	c := NewChunk(dims16)
	size := block.Size{Width: 4, Height: 1, Depth: 1}
	dst := make([]block.ID, 4)
	c.GetSlice(block.Coord{}, size, block.Coord{}, size, dst)
	for i, v := range dst {
		if v != block.Empty {
			t.Fatalf("dst[%d] = %v, want Empty", i, v)
		}
	}
}

func TestChunkSetSlicePromotes(t *testing.T) {
	c := NewChunk(dims16)
	srcBounds := block.Size{Width: 2, Height: 1, Depth: 1}
	src := []block.ID{11, 12}
	c.SetSlice(block.Coord{}, srcBounds, block.Coord{}, srcBounds, src)

	v0, _ := c.GetAt(0)
	v1, _ := c.GetAt(1)
	if v0 != block.ID(11) || v1 != block.ID(12) {
		t.Fatalf("GetAt(0,1) = %v, %v, want 11, 12", v0, v1)
	}
}
