package netchunk

import (
	"testing"

	"github.com/go-mclib/voxelpack/block"
	"github.com/go-mclib/voxelpack/pack"
)

func newDirectTestData() *pack.PackVec {
	v := pack.NewVarPackVec(15)
	v.ExtendWith(sectionDims.Volume(), 0)
	return v
}

func TestChunkKeyRoundTrip(t *testing.T) {
	tests := []struct{ x, z int32 }{
		{0, 0},
		{1, 1},
		{-1, -1},
		{100, -100},
		{-100, 100},
		{2147483647, 0},
		{0, 2147483647},
		{-2147483648, 0},
		{0, -2147483648},
	}

	for _, tt := range tests {
		key := chunkKey(tt.x, tt.z)
		gotX := int32(key >> 32)
		gotZ := int32(key)
		if gotX != tt.x || gotZ != tt.z {
			t.Errorf("chunkKey(%d, %d) roundtrip failed: got (%d, %d)", tt.x, tt.z, gotX, gotZ)
		}
	}
}

func TestPalettedContainerSingleValue(t *testing.T) {
	p := &PalettedContainer{isSingle: true, singleValue: 7}
	if got := p.GetBlockState(3, 4, 5); got != 7 {
		t.Fatalf("GetBlockState on single-valued container = %d, want 7", got)
	}
	if got := p.BitsPerEntry(); got != 0 {
		t.Fatalf("BitsPerEntry on single-valued container = %d, want 0", got)
	}
}

func TestPalettedContainerSetExpandsFromSingle(t *testing.T) {
	p := &PalettedContainer{isSingle: true, singleValue: 0}
	p.SetBlockState(1, 2, 3, 42)

	if p.isSingle {
		t.Fatal("container should no longer be single-valued after a differing write")
	}
	got := p.GetBlockState(1, 2, 3)
	if got != 42 {
		t.Fatalf("GetBlockState(1,2,3) = %d, want 42", got)
	}
	other := p.GetBlockState(0, 0, 0)
	if other != 0 {
		t.Fatalf("GetBlockState(0,0,0) = %d, want 0 (implicit value preserved)", other)
	}
}

func TestPalettedContainerGrowsBitsOnOverflow(t *testing.T) {
	p := &PalettedContainer{isSingle: true, singleValue: 0}
	p.SetBlockState(0, 0, 0, 1) // expands to 4 bits, palette cap 16

	// Use distinct (x, y, 0) positions so later writes never overwrite
	// an earlier one's slot.
	for i := 2; i <= 20; i++ {
		p.SetBlockState(i%16, i/16, 0, int32(i))
	}

	for i := 2; i <= 20; i++ {
		want := int32(i)
		got := p.GetBlockState(i%16, i/16, 0)
		if got != want {
			t.Fatalf("after growth, GetBlockState(%d,%d,0) = %d, want %d", i%16, i/16, got, want)
		}
	}
}

func TestPalettedContainerDirectPalette(t *testing.T) {
	p := &PalettedContainer{Palette: nil, data: newDirectTestData()}
	p.SetBlockState(0, 0, 0, 1234)
	if got := p.GetBlockState(0, 0, 0); got != 1234 {
		t.Fatalf("direct palette GetBlockState = %d, want 1234", got)
	}
}

func TestPalettedContainerToPaletteRoundTrip(t *testing.T) {
	p := &PalettedContainer{isSingle: true, singleValue: 0}
	p.SetBlockState(0, 0, 0, 5)
	p.SetBlockState(1, 0, 0, 9)
	p.SetBlockState(0, 1, 0, 9)

	palette := p.ToPalette()

	for _, tc := range []struct {
		x, y, z int
		want    block.ID
	}{
		{0, 0, 0, 5},
		{1, 0, 0, 9},
		{0, 1, 0, 9},
		{5, 5, 5, 0},
	} {
		offset := block.Offset(sectionDims, block.Coord{X: uint32(tc.x), Y: uint32(tc.y), Z: uint32(tc.z)})
		got, ok := palette.GetAt(offset)
		if !ok {
			t.Fatalf("GetAt(%d,%d,%d): out of range", tc.x, tc.y, tc.z)
		}
		if got != tc.want {
			t.Fatalf("GetAt(%d,%d,%d) = %d, want %d", tc.x, tc.y, tc.z, got, tc.want)
		}
	}
}

func TestChunkColumnToChunks(t *testing.T) {
	populated := &PalettedContainer{isSingle: true, singleValue: 0}
	populated.SetBlockState(2, 2, 2, 42)

	col := &ChunkColumn{X: 1, Z: -1}
	col.Sections[0] = &ChunkSection{BlockStates: populated}
	// Sections[1] and onward stay nil, as if the column never received them.

	chunks := col.ToChunks()
	if len(chunks) != len(col.Sections) {
		t.Fatalf("ToChunks returned %d chunks, want %d", len(chunks), len(col.Sections))
	}

	offset := block.Offset(sectionDims, block.Coord{X: 2, Y: 2, Z: 2})
	got, ok := chunks[0].GetAt(offset)
	if !ok || got != 42 {
		t.Fatalf("chunks[0].GetAt(2,2,2) = (%d, %v), want (42, true)", got, ok)
	}

	emptyGot, ok := chunks[1].GetAt(0)
	if !ok || emptyGot != block.Empty {
		t.Fatalf("chunks[1].GetAt(0) = (%d, %v), want (block.Empty, true) for an unreceived section", emptyGot, ok)
	}
}
