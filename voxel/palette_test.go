package voxel

import (
	"math/rand"
	"testing"

	"github.com/go-mclib/voxelpack/block"
	"github.com/go-mclib/voxelpack/pack"
)

var dims16 = block.Size{Width: 16, Height: 16, Depth: 16}

// TestFillThenRead mirrors scenario S1.
func TestFillThenRead(t *testing.T) {
	p := NewChunkPalette(dims16)
	p.Fill(block.Coord{}, dims16, block.ID(7))

	first, ok := p.GetAt(0)
	if !ok || first != block.ID(7) {
		t.Fatalf("GetAt(0) = %v, %v, want 7 true", first, ok)
	}
	last, ok := p.GetAt(16*16*16 - 1)
	if !ok || last != block.ID(7) {
		t.Fatalf("GetAt(last) = %v, %v, want 7 true", last, ok)
	}
	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (empty + 7)", p.Len())
	}
}

// TestGrowingPaletteWidth mirrors scenario S2.
func TestGrowingPaletteWidth(t *testing.T) {
	p := NewChunkPalette(dims16)
	for i, id := range []block.ID{1, 2, 3} {
		p.SetAt(i, id)
		want := storageBitsForPalette(p.Len())
		if got := p.ValueBits(); got != want {
			t.Fatalf("after inserting %d: ValueBits() = %d, want %d", id, got, want)
		}
	}
	for i, want := range []block.ID{1, 2, 3} {
		got, ok := p.GetAt(i)
		if !ok || got != want {
			t.Fatalf("GetAt(%d) = %v, %v, want %v true", i, got, ok, want)
		}
	}
}

// TestStripedSetSlice mirrors scenario S3.
func TestStripedSetSlice(t *testing.T) {
	p := NewChunkPalette(dims16)
	srcBounds := block.Size{Width: 4, Height: 1, Depth: 4}
	src := make([]block.ID, srcBounds.Volume())
	for i := range src {
		src[i] = block.ID(5)
	}
	src[0] = block.ID(6)

	target := block.Coord{X: 1, Y: 2, Z: 3}
	p.SetSlice(target, srcBounds, block.Coord{}, srcBounds, src)

	got, ok := p.GetAt(block.Offset(dims16, target))
	if !ok || got != block.ID(6) {
		t.Fatalf("GetAt(target) = %v, %v, want 6 true", got, ok)
	}

	for z := uint32(0); z < 4; z++ {
		for x := uint32(0); x < 4; x++ {
			if x == 0 && z == 0 {
				continue
			}
			c := block.Coord{X: target.X + x, Y: target.Y, Z: target.Z + z}
			v, ok := p.GetAt(block.Offset(dims16, c))
			if !ok || v != block.ID(5) {
				t.Fatalf("GetAt(%+v) = %v, %v, want 5 true", c, v, ok)
			}
		}
	}
	if p.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (empty + 5 + 6)", p.Len())
	}
}

// TestCrossWidthCopy mirrors scenario S4: copying a PackVec into a wider
// one (the same operation ChunkPalette.resize performs internally) must
// preserve every value.
func TestCrossWidthCopy(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	a := pack.NewVarPackVec(3)
	for i := 0; i < 100; i++ {
		a.Push(pack.Part(r.Intn(8)))
	}
	b := pack.NewVarPackVec(5)
	b.ExtendWith(100, 0)

	a.CopyTo(b.AsSpanMut())

	for i := 0; i < 100; i++ {
		av, _ := a.GetPart(i)
		bv, _ := b.GetPart(i)
		if av != bv {
			t.Fatalf("index %d: got %d, want %d", i, bv, av)
		}
	}
}

// TestResizePreservesValues covers testable property 7.
func TestResizePreservesValues(t *testing.T) {
	p := NewChunkPalette(dims16)
	ids := make([]block.ID, dims16.Volume())
	for i := range ids {
		ids[i] = block.ID(uint32(i%20) + 1)
		p.SetAt(i, ids[i])
	}
	for i, want := range ids {
		got, ok := p.GetAt(i)
		if !ok || got != want {
			t.Fatalf("after growth, GetAt(%d) = %v, want %v", i, got, want)
		}
	}
}

// TestPaletteInvariant covers testable property 6: every offset's decoded
// block id maps back to the stored index.
func TestPaletteInvariant(t *testing.T) {
	p := NewChunkPalette(dims16)
	for i := 0; i < dims16.Volume(); i += 7 {
		p.SetAt(i, block.ID(uint32(i%13)+1))
	}
	for i := 0; i < dims16.Volume(); i++ {
		v, ok := p.GetAt(i)
		if !ok {
			t.Fatalf("GetAt(%d) out of range", i)
		}
		idx, ok := p.indices.Index(v)
		if !ok {
			t.Fatalf("index %d: decoded value %v not present in index map", i, v)
		}
		raw, ok := p.data.GetPart(i)
		if !ok || PalIdx(raw) != idx {
			t.Fatalf("index %d: stored index %d != palette index %d", i, raw, idx)
		}
	}
}

func TestGetSlice(t *testing.T) {
	p := NewChunkPalette(dims16)
	p.Fill(block.Coord{}, dims16, block.ID(2))
	p.SetAt(block.Offset(dims16, block.Coord{X: 5, Y: 5, Z: 5}), block.ID(9))

	size := block.Size{Width: 16, Height: 1, Depth: 1}
	dst := make([]block.ID, 16)
	p.GetSlice(block.Coord{Y: 5, Z: 5}, size, block.Coord{}, size, dst)

	for x, v := range dst {
		want := block.ID(2)
		if x == 5 {
			want = block.ID(9)
		}
		if v != want {
			t.Fatalf("dst[%d] = %v, want %v", x, v, want)
		}
	}
}
