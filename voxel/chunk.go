package voxel

import "github.com/go-mclib/voxelpack/block"

// BlockStorage is the capability set a chunk-sized block store exposes,
// regardless of which representation backs it.
type BlockStorage interface {
	Size() block.Size
	GetAt(offset int) (block.ID, bool)
	GetSlice(offset block.Coord, size block.Size, dstOffset block.Coord, dstBounds block.Size, dst []block.ID)
	SetAt(offset int, value block.ID) (changed, ok bool)
	SetSlice(offset block.Coord, size block.Size, srcOffset block.Coord, srcBounds block.Size, src []block.ID)
	Fill(offset block.Coord, size block.Size, value block.ID)
}

// storageKind tags which representation a Chunk currently holds.
type storageKind int

const (
	storageEmpty storageKind = iota
	storageSingle
	storagePalette
)

// Chunk is a fixed-dimension 3D grid of block ids with one of three
// backing representations, promoted lazily as writes demand more than the
// cheap representations can hold.
type Chunk struct {
	dims    block.Size
	kind    storageKind
	single  block.ID
	palette *ChunkPalette
}

// NewChunk returns an empty chunk of the given dimensions. An empty chunk
// allocates nothing and reads as block.Empty everywhere.
func NewChunk(dims block.Size) *Chunk {
	return &Chunk{dims: dims, kind: storageEmpty}
}

// NewChunkFromPalette wraps an already-populated palette as Palette
// storage, for callers (such as a wire-format decoder) that built a
// ChunkPalette directly instead of writing through Chunk's own surface.
func NewChunkFromPalette(dims block.Size, palette *ChunkPalette) *Chunk {
	return &Chunk{dims: dims, kind: storagePalette, palette: palette}
}

// Size returns the chunk's dimensions.
func (c *Chunk) Size() block.Size { return c.dims }

// GetAt returns the block at the given linear offset, and whether offset
// was within the chunk's volume.
func (c *Chunk) GetAt(offset int) (block.ID, bool) {
	if offset < 0 || offset >= c.dims.Volume() {
		return 0, false
	}
	switch c.kind {
	case storageEmpty:
		return block.Empty, true
	case storageSingle:
		return c.single, true
	default:
		return c.palette.GetAt(offset)
	}
}

// SetAt writes value at the given linear offset, promoting Empty/Single
// storage to Palette on first write if value differs from the implicit
// value already held.
func (c *Chunk) SetAt(offset int, value block.ID) (changed, ok bool) {
	if offset < 0 || offset >= c.dims.Volume() {
		return false, false
	}
	switch c.kind {
	case storageEmpty:
		if value == block.Empty {
			return false, true
		}
		c.promote(block.Empty)
		return c.palette.SetAt(offset, value)
	case storageSingle:
		if value == c.single {
			return false, true
		}
		c.promote(c.single)
		return c.palette.SetAt(offset, value)
	default:
		return c.palette.SetAt(offset, value)
	}
}

// Fill sets every block within [offset, offset+size) to value.
func (c *Chunk) Fill(offset block.Coord, size block.Size, value block.ID) {
	switch c.kind {
	case storageEmpty:
		if value == block.Empty && offset == (block.Coord{}) && size == c.dims {
			return
		}
		if offset == (block.Coord{}) && size == c.dims {
			c.kind = storageSingle
			c.single = value
			return
		}
		c.promote(block.Empty)
		c.palette.Fill(offset, size, value)
	case storageSingle:
		if offset == (block.Coord{}) && size == c.dims {
			c.single = value
			return
		}
		c.promote(c.single)
		c.palette.Fill(offset, size, value)
	default:
		c.palette.Fill(offset, size, value)
	}
}

// GetSlice decodes the box [offset, offset+size) into dst.
func (c *Chunk) GetSlice(offset block.Coord, size block.Size, dstOffset block.Coord, dstBounds block.Size, dst []block.ID) {
	switch c.kind {
	case storageEmpty:
		fillSlice(dst, dstOffset, dstBounds, size, block.Empty)
	case storageSingle:
		fillSlice(dst, dstOffset, dstBounds, size, c.single)
	default:
		c.palette.GetSlice(offset, size, dstOffset, dstBounds, dst)
	}
}

func fillSlice(dst []block.ID, dstOffset block.Coord, dstBounds block.Size, size block.Size, value block.ID) {
	for y := uint32(0); y < size.Height; y++ {
		for z := uint32(0); z < size.Depth; z++ {
			base := block.Offset(dstBounds, block.Coord{X: dstOffset.X, Y: dstOffset.Y + y, Z: dstOffset.Z + z})
			row := dst[base : base+int(size.Width)]
			for i := range row {
				row[i] = value
			}
		}
	}
}

// SetSlice writes the srcBounds-sized box of src starting at srcOffset
// into the chunk box [offset, offset+size), promoting storage if needed.
func (c *Chunk) SetSlice(offset block.Coord, size block.Size, srcOffset block.Coord, srcBounds block.Size, src []block.ID) {
	switch c.kind {
	case storageEmpty:
		c.promote(block.Empty)
	case storageSingle:
		c.promote(c.single)
	}
	c.palette.SetSlice(offset, size, srcOffset, srcBounds, src)
}

// promote converts Empty/Single storage into Palette storage, seeding the
// palette with implicitValue so every offset already written by the
// implicit representation continues to read back correctly.
func (c *Chunk) promote(implicitValue block.ID) {
	p := NewChunkPalette(c.dims)
	if implicitValue != block.Empty {
		p.Fill(block.Coord{}, c.dims, implicitValue)
	}
	c.palette = p
	c.kind = storagePalette
}

// Palette returns the backing palette and true if the chunk has been
// promoted to Palette storage.
func (c *Chunk) Palette() (*ChunkPalette, bool) {
	return c.palette, c.kind == storagePalette
}
