package voxel

import (
	"fmt"
	"math/bits"

	"github.com/go-mclib/voxelpack/block"
	"github.com/go-mclib/voxelpack/pack"
	"github.com/go-mclib/voxelpack/voxel/simdscan"
)

// narrow is the set of element types the contiguous-block kernels unpack a
// palette row into. SIMD run detection needs a concrete integer type to
// dispatch on; Part alone (always 64-bit) would defeat the point of
// choosing a narrower lane width per bit-width class.
type narrow interface {
	~uint8 | ~uint16 | ~uint32
}

// CorruptPaletteError is raised when a decoded palette index does not
// correspond to any entry in the index map — an earlier invariant
// violation, never a caller mistake, hence a panic rather than a returned
// error.
type CorruptPaletteError struct {
	Index PalIdx
}

func (e *CorruptPaletteError) Error() string {
	return fmt.Sprintf("voxel: palette does not contain index %d", e.Index)
}

// UnsupportedValueBitsError is raised when a palette's value width falls
// outside the 1..32 range the contiguous-block kernels are specialized
// for.
type UnsupportedValueBitsError struct {
	Bits int
}

func (e *UnsupportedValueBitsError) Error() string {
	return fmt.Sprintf("voxel: unsupported value width %d bits for palette dispatch", e.Bits)
}

// ChunkPalette is a chunk-sized block store: an insertion-ordered mapping
// from block.ID to a dense index, and a packed vector of those indices at
// the minimal bit width the current palette size requires.
type ChunkPalette struct {
	indices *IndexMap
	data    *pack.PackVec
	dims    block.Size
}

// NewChunkPalette returns a palette sized for dims, seeded with block.Empty
// at index 0 so that every offset reads as empty before any write. This
// also resolves the question of whether an implicit "empty" should consume
// the first palette slot: it always does here, so get_at never needs a
// special case for an unpopulated vector.
func NewChunkPalette(dims block.Size) *ChunkPalette {
	p := &ChunkPalette{
		indices: NewIndexMap(),
		data:    pack.NewVarPackVec(1),
		dims:    dims,
	}
	p.indices.IndexOrAdd(block.Empty)
	p.data.ExtendWith(dims.Volume(), 0)
	return p
}

// storageBitsForPalette returns the minimal value width needed to address
// count distinct palette entries.
func storageBitsForPalette(count int) int {
	if count <= 1 {
		return 1
	}
	return bits.Len(uint(count - 1))
}

// GetAt returns the block at the given linear offset, and whether offset
// was in range.
func (p *ChunkPalette) GetAt(offset int) (block.ID, bool) {
	raw, ok := p.data.GetPart(offset)
	if !ok {
		return 0, false
	}
	idx := PalIdx(raw)
	v, ok := p.indices.Value(idx)
	if !ok {
		panic(&CorruptPaletteError{Index: idx})
	}
	return v, true
}

// SetAt inserts value into the palette if absent (resizing data first if
// needed), writes its index at offset, and reports whether the stored
// index changed and whether offset was in range.
func (p *ChunkPalette) SetAt(offset int, value block.ID) (changed, ok bool) {
	idx, _ := p.getOrAddIndex(value)
	old, inRange := p.data.SetPart(offset, pack.Part(idx))
	if !inRange {
		return false, false
	}
	return PalIdx(old) != idx, true
}

// Fill sets every block within the box [offset, offset+size) to value.
func (p *ChunkPalette) Fill(offset block.Coord, size block.Size, value block.ID) {
	idx, _ := p.getOrAddIndex(value)
	if size.Width == p.dims.Width && size.Depth == p.dims.Depth {
		stride := int(size.Width) * int(size.Depth)
		for y := uint32(0); y < size.Height; y++ {
			dstIdx := block.Offset(p.dims, block.Coord{X: offset.X, Y: offset.Y + y, Z: offset.Z})
			p.fillContiguous(dstIdx, stride, idx)
		}
		return
	}
	stride := int(size.Width)
	for y := uint32(0); y < size.Height; y++ {
		for z := uint32(0); z < size.Depth; z++ {
			dstIdx := block.Offset(p.dims, block.Coord{X: offset.X, Y: offset.Y + y, Z: offset.Z + z})
			p.fillContiguous(dstIdx, stride, idx)
		}
	}
}

func (p *ChunkPalette) fillContiguous(dstIdx, length int, idx PalIdx) {
	span := p.data.AsSpanMut().Cut(dstIdx, length)
	span.FillPart(pack.Part(idx))
}

// GetSlice decodes the box [offset, offset+size) of the chunk into dst,
// which is addressed as a dstBounds-sized box starting at dstOffset.
func (p *ChunkPalette) GetSlice(offset block.Coord, size block.Size, dstOffset block.Coord, dstBounds block.Size, dst []block.ID) {
	switch bitsNeeded := p.data.Order().ValueBits(); {
	case bitsNeeded <= 8:
		getBlocksCore[uint8](p, offset, size, dstOffset, dstBounds, dst)
	case bitsNeeded <= 16:
		getBlocksCore[uint16](p, offset, size, dstOffset, dstBounds, dst)
	case bitsNeeded <= 32:
		getBlocksCore[uint32](p, offset, size, dstOffset, dstBounds, dst)
	default:
		panic(&UnsupportedValueBitsError{Bits: bitsNeeded})
	}
}

func getBlocksCore[E narrow](p *ChunkPalette, offset block.Coord, size block.Size, dstOffset block.Coord, dstBounds block.Size, dst []block.ID) {
	stride := int(size.Width)
	buf := make([]E, stride)

	for y := uint32(0); y < size.Height; y++ {
		srcY := offset.Y + y
		dstY := dstOffset.Y + y
		for z := uint32(0); z < size.Depth; z++ {
			dstZ := dstOffset.Z + z
			dstIdx := block.Offset(dstBounds, block.Coord{X: dstOffset.X, Y: dstY, Z: dstZ})
			srcZ := offset.Z + z
			srcIdx := block.Offset(p.dims, block.Coord{X: offset.X, Y: srcY, Z: srcZ})

			pack.UnpackValues(p.data, buf, srcIdx)
			getContiguousBlocks(p, dst[dstIdx:dstIdx+stride], buf)
		}
	}
}

func getContiguousBlocks[E narrow](p *ChunkPalette, dst []block.ID, src []E) {
	for len(src) > 0 {
		idx := src[0]
		runLen := len(src)
		if n, ok := simdscan.IndexOfAnyExcept(src, idx); ok {
			runLen = n
		}
		v, ok := p.indices.Value(PalIdx(idx))
		if !ok {
			panic(&CorruptPaletteError{Index: PalIdx(idx)})
		}
		for i := 0; i < runLen; i++ {
			dst[i] = v
		}
		dst = dst[runLen:]
		src = src[runLen:]
	}
}

// SetSlice writes the srcBounds-sized box of src starting at srcOffset
// into the chunk box [offset, offset+size). If src is a single repeated
// value for its full length, this degenerates into a Fill.
func (p *ChunkPalette) SetSlice(offset block.Coord, size block.Size, srcOffset block.Coord, srcBounds block.Size, src []block.ID) {
	if len(src) == 0 {
		return
	}
	first := src[0]
	runLen, ok := simdscan.IndexOfAnyExcept(src, first)
	if !ok {
		p.Fill(offset, size, first)
		return
	}

	addedEstimate := len(src) - runLen
	bitsEstimate := storageBitsForPalette(p.indices.Len() + addedEstimate)
	switch {
	case bitsEstimate <= 8:
		setBlocksCore[uint8](p, offset, size, srcOffset, srcBounds, src)
	case bitsEstimate <= 16:
		setBlocksCore[uint16](p, offset, size, srcOffset, srcBounds, src)
	case bitsEstimate <= 32:
		setBlocksCore[uint32](p, offset, size, srcOffset, srcBounds, src)
	default:
		panic(&UnsupportedValueBitsError{Bits: bitsEstimate})
	}
}

func setBlocksCore[E narrow](p *ChunkPalette, offset block.Coord, size block.Size, srcOffset block.Coord, srcBounds block.Size, src []block.ID) {
	stride := int(size.Width)
	if size.Width == srcBounds.Width && size.Width == p.dims.Width &&
		size.Depth == srcBounds.Depth && size.Depth == p.dims.Depth {
		stride = int(size.Width) * int(size.Depth)
		buf := make([]E, stride)
		for y := uint32(0); y < size.Height; y++ {
			srcIdx := block.Offset(srcBounds, block.Coord{X: srcOffset.X, Y: srcOffset.Y + y, Z: srcOffset.Z})
			dstIdx := block.Offset(p.dims, block.Coord{X: offset.X, Y: offset.Y + y, Z: offset.Z})
			setContiguousBlocks(p, buf, dstIdx, src[srcIdx:srcIdx+stride])
		}
		return
	}

	buf := make([]E, stride)
	for y := uint32(0); y < size.Height; y++ {
		srcY := srcOffset.Y + y
		for z := uint32(0); z < size.Depth; z++ {
			srcIdx := block.Offset(srcBounds, block.Coord{X: srcOffset.X, Y: srcY, Z: srcOffset.Z + z})
			dstIdx := block.Offset(p.dims, block.Coord{X: offset.X, Y: offset.Y + y, Z: offset.Z + z})
			setContiguousBlocks(p, buf, dstIdx, src[srcIdx:srcIdx+stride])
		}
	}
}

func setContiguousBlocks[E narrow](p *ChunkPalette, buf []E, bufOffset int, src []block.ID) {
	// Unpack the current row so untouched neighbors (when src doesn't
	// cover the whole row) survive the round trip.
	pack.UnpackValues(p.data, buf, bufOffset)

	rest := src
	bufIdx := 0
	for len(rest) > 0 {
		value := rest[0]
		idx, _ := p.getOrAddIndex(value)

		runLen := len(rest)
		if n, ok := simdscan.IndexOfAnyExcept(rest, value); ok {
			runLen = n
		}
		for i := 0; i < runLen; i++ {
			buf[bufIdx+i] = E(idx)
		}
		rest = rest[runLen:]
		bufIdx += runLen
	}

	pack.PackValues(p.data, buf, bufOffset)
}

// getOrAddIndex returns value's palette index, inserting it (and resizing
// data to a wider value width first, if the new count demands it) if
// absent.
func (p *ChunkPalette) getOrAddIndex(value block.ID) (PalIdx, bool) {
	if idx, ok := p.indices.Index(value); ok {
		return idx, false
	}
	bitsNeeded := storageBitsForPalette(p.indices.Len() + 1)
	if p.data.Order().ValueBits() != bitsNeeded {
		p.resize(bitsNeeded)
	}
	return p.indices.IndexOrAdd(value)
}

// resize rebuilds data at a new value width, bulk-copying every existing
// value through PackVec.CopyTo. Marked as the cold path by the caller's
// shape (only reached when the palette grows past its current width).
func (p *ChunkPalette) resize(valueBits int) {
	order := pack.NewOrder(valueBits)
	next := pack.NewPackVecWithCapacity(p.data.Len(), order)
	next.ExtendWith(p.data.Len(), 0)
	p.data.CopyTo(next.AsSpanMut())
	p.data = next
}

// Len reports the number of distinct block ids the palette has recorded.
func (p *ChunkPalette) Len() int { return p.indices.Len() }

// ValueBits reports the current packed width of the underlying storage.
func (p *ChunkPalette) ValueBits() int { return p.data.Order().ValueBits() }
