// Package netchunk decodes Minecraft-protocol chunk packets into the
// packed voxel storage core. It is an external collaborator in the sense
// the storage core's specification uses the term: it never reaches into
// pack or voxel internals, it only calls the same SetAt/Fill/GetAt surface
// any other caller would, via (*ChunkColumn).ToChunks.
package netchunk

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-mclib/protocol/nbt"

	"github.com/go-mclib/voxelpack/block"
	"github.com/go-mclib/voxelpack/pack"
	"github.com/go-mclib/voxelpack/voxel"
)

// sectionDims is the fixed 16x16x16 volume a single Minecraft chunk
// section covers.
var sectionDims = block.Size{Width: 16, Height: 16, Depth: 16}

// ChunkColumn is a vertical stack of chunk sections, Y -64 to 319 for
// protocol version 1.21 (24 sections of 16 blocks each).
type ChunkColumn struct {
	X, Z       int32
	Sections   [24]*ChunkSection
	Heightmaps nbt.Compound
}

// ChunkSection is a single 16x16x16 section of a column.
type ChunkSection struct {
	BlockCount  int16
	BlockStates *PalettedContainer
}

// PalettedContainer stores block states exactly as the wire format
// describes them (bits-per-entry, an optional palette array, packed
// data), but keeps its packed data in a pack.PackVec instead of hand-
// rolled bit math, so reading and writing a wire-decoded section goes
// through the same codec the rest of this module uses.
type PalettedContainer struct {
	// Palette maps a stored index to a block state id. Nil means the
	// container uses the direct (un-palette) encoding: stored indices
	// are block state ids themselves.
	Palette []int32

	data        *pack.PackVec
	singleValue int32
	isSingle    bool
}

// BitsPerEntry returns the width, in bits, of one stored index.
func (p *PalettedContainer) BitsPerEntry() int {
	if p.isSingle {
		return 0
	}
	return p.data.Order().ValueBits()
}

// GetBlockState returns the block state id at the given position within
// the section.
func (p *PalettedContainer) GetBlockState(x, y, z int) int32 {
	if p.isSingle {
		return p.singleValue
	}
	index := (y*16+z)*16 + x
	raw, ok := p.data.GetPart(index)
	if !ok {
		return 0
	}
	paletteIndex := int(raw)

	if p.Palette == nil {
		return int32(paletteIndex)
	}
	if paletteIndex >= len(p.Palette) {
		return 0
	}
	return p.Palette[paletteIndex]
}

// SetBlockState sets the block state id at the given position within the
// section, growing the palette (and the backing PackVec's width) if
// needed.
func (p *PalettedContainer) SetBlockState(x, y, z int, blockState int32) {
	if p.isSingle {
		if p.singleValue == blockState {
			return
		}
		p.expand(blockState)
	}

	paletteIndex := p.indexFor(blockState)

	index := (y*16+z)*16 + x
	if index >= p.data.Len() {
		p.data.ExtendWith(index+1-p.data.Len(), 0)
	}
	p.data.SetPart(index, pack.Part(paletteIndex))
}

func (p *PalettedContainer) indexFor(blockState int32) int {
	if p.Palette == nil {
		return int(blockState)
	}
	for i, v := range p.Palette {
		if v == blockState {
			return i
		}
	}
	maxPaletteSize := 1 << p.data.Order().ValueBits()
	if len(p.Palette) < maxPaletteSize {
		p.Palette = append(p.Palette, blockState)
		return len(p.Palette) - 1
	}
	p.growBits(p.data.Order().ValueBits() + 1)
	p.Palette = append(p.Palette, blockState)
	return len(p.Palette) - 1
}

// expand converts a single-valued container into a 4-bit indexed one.
func (p *PalettedContainer) expand(newValue int32) {
	oldValue := p.singleValue
	p.isSingle = false
	p.Palette = []int32{oldValue, newValue}
	p.data = pack.NewVarPackVec(4)
	p.data.ExtendWith(sectionDims.Volume(), 0)
}

// growBits rebuilds data at a wider value width, preserving every index
// already stored.
func (p *PalettedContainer) growBits(bitsNeeded int) {
	next := pack.NewVarPackVec(bitsNeeded)
	next.ExtendWith(p.data.Len(), 0)
	p.data.CopyTo(next.AsSpanMut())
	p.data = next
}

// ToPalette translates this container into a voxel.ChunkPalette, which is
// the form the rest of this module consumes.
func (p *PalettedContainer) ToPalette() *voxel.ChunkPalette {
	palette := voxel.NewChunkPalette(sectionDims)
	volume := sectionDims.Volume()
	for i := 0; i < volume; i++ {
		c := block.CoordAt(sectionDims, i)
		state := p.GetBlockState(int(c.X), int(c.Y), int(c.Z))
		palette.SetAt(i, block.ID(uint32(state)))
	}
	return palette
}

// ToChunks folds every section of the column into a voxel.Chunk, in
// bottom-to-top order. A nil section (one the column never received,
// trailing past its last populated section) becomes an empty chunk rather
// than an error, matching how a live world treats unloaded sections as
// air.
func (col *ChunkColumn) ToChunks() []*voxel.Chunk {
	chunks := make([]*voxel.Chunk, len(col.Sections))
	for i, section := range col.Sections {
		if section == nil || section.BlockStates == nil {
			chunks[i] = voxel.NewChunk(sectionDims)
			continue
		}
		palette := section.BlockStates.ToPalette()
		chunks[i] = voxel.NewChunkFromPalette(sectionDims, palette)
	}
	return chunks
}

// chunkReader is a cursor over a chunk packet's payload.
type chunkReader struct {
	data   []byte
	offset int
}

func newChunkReader(data []byte) *chunkReader {
	return &chunkReader{data: data, offset: 0}
}

func (r *chunkReader) readByte() (byte, error) {
	if r.offset >= len(r.data) {
		return 0, io.EOF
	}
	b := r.data[r.offset]
	r.offset++
	return b, nil
}

func (r *chunkReader) readShort() (int16, error) {
	if r.offset+2 > len(r.data) {
		return 0, io.EOF
	}
	v := int16(binary.BigEndian.Uint16(r.data[r.offset:]))
	r.offset += 2
	return v, nil
}

func (r *chunkReader) readVarInt() (int32, error) {
	var result int32
	var shift uint
	for {
		if r.offset >= len(r.data) {
			return 0, io.EOF
		}
		b := r.data[r.offset]
		r.offset++
		result |= int32(b&0x7F) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
		if shift >= 32 {
			return 0, errors.New("netchunk: VarInt too big")
		}
	}
	return result, nil
}

func (r *chunkReader) readLong() (int64, error) {
	if r.offset+8 > len(r.data) {
		return 0, io.EOF
	}
	v := int64(binary.BigEndian.Uint64(r.data[r.offset:]))
	r.offset += 8
	return v, nil
}

// readNetworkNBT reads a network NBT compound from the reader using the
// nbt package. Since Minecraft 1.20.2, network NBT omits the root
// compound's tag type and name.
func (r *chunkReader) readNetworkNBT() (nbt.Tag, error) {
	br := bytes.NewReader(r.data[r.offset:])
	nbtReader := nbt.NewReaderFrom(br)

	tag, _, err := nbtReader.ReadTag(true)
	if err != nil {
		return nil, err
	}

	consumed := len(r.data[r.offset:]) - br.Len()
	r.offset += consumed

	return tag, nil
}

// ParseChunkColumn parses the Data field of a level-chunk packet into a
// ChunkColumn.
func ParseChunkColumn(chunkX, chunkZ int32, data []byte) (*ChunkColumn, error) {
	column := &ChunkColumn{X: chunkX, Z: chunkZ}
	reader := newChunkReader(data)

	heightmaps, err := reader.readNetworkNBT()
	if err != nil {
		return nil, fmt.Errorf("netchunk: parse heightmaps NBT: %w", err)
	}
	if compound, ok := heightmaps.(nbt.Compound); ok {
		column.Heightmaps = compound
	}

	dataSize, err := reader.readVarInt()
	if err != nil {
		return nil, fmt.Errorf("netchunk: read chunk data size: %w", err)
	}
	chunkDataEnd := reader.offset + int(dataSize)

	for sectionIndex := 0; sectionIndex < 24 && reader.offset < chunkDataEnd; sectionIndex++ {
		section, err := parseChunkSection(reader)
		if err != nil {
			return nil, fmt.Errorf("netchunk: parse chunk section %d: %w", sectionIndex, err)
		}
		column.Sections[sectionIndex] = section
	}

	return column, nil
}

func parseChunkSection(reader *chunkReader) (*ChunkSection, error) {
	blockCount, err := reader.readShort()
	if err != nil {
		return nil, err
	}

	section := &ChunkSection{BlockCount: blockCount}

	blockStates, err := parsePalettedContainer(reader, 4, 8, 15)
	if err != nil {
		return nil, fmt.Errorf("parse block states: %w", err)
	}
	section.BlockStates = blockStates

	if _, err := parsePalettedContainer(reader, 1, 3, 6); err != nil {
		return nil, fmt.Errorf("parse biomes: %w", err)
	}

	return section, nil
}

// parsePalettedContainer parses a paletted container from the chunk data.
// minBits/maxBits/directBits follow the protocol's per-container-kind
// thresholds (4/8/15 for blocks, 1/3/6 for biomes).
func parsePalettedContainer(reader *chunkReader, minBits, maxBits, directBits int) (*PalettedContainer, error) {
	bitsPerEntry, err := reader.readByte()
	if err != nil {
		return nil, err
	}

	container := &PalettedContainer{}

	if bitsPerEntry == 0 {
		value, err := reader.readVarInt()
		if err != nil {
			return nil, err
		}
		container.isSingle = true
		container.singleValue = value

		dataLength, err := reader.readVarInt()
		if err != nil {
			return nil, err
		}
		for i := int32(0); i < dataLength; i++ {
			if _, err := reader.readLong(); err != nil {
				return nil, err
			}
		}
		return container, nil
	}

	effectiveBits := int(bitsPerEntry)
	directPalette := effectiveBits > maxBits
	if directPalette {
		effectiveBits = directBits
	} else if effectiveBits < minBits {
		effectiveBits = minBits
	}

	if !directPalette {
		paletteLength, err := reader.readVarInt()
		if err != nil {
			return nil, err
		}
		container.Palette = make([]int32, paletteLength)
		for i := int32(0); i < paletteLength; i++ {
			value, err := reader.readVarInt()
			if err != nil {
				return nil, err
			}
			container.Palette[i] = value
		}
	}

	dataLength, err := reader.readVarInt()
	if err != nil {
		return nil, err
	}
	words := make([]pack.Part, dataLength)
	for i := int32(0); i < dataLength; i++ {
		value, err := reader.readLong()
		if err != nil {
			return nil, err
		}
		words[i] = pack.Part(value)
	}

	container.data = packVecFromWords(words, effectiveBits, sectionDims.Volume())
	return container, nil
}

// packVecFromWords adopts already-packed wire words as a PackVec,
// avoiding an unpack/repack round trip. A short word count (a malformed
// or truncated packet) is zero-padded rather than rejected, matching the
// defensive out-of-range-reads-as-zero stance the rest of this decoder
// takes against untrusted network input.
func packVecFromWords(words []pack.Part, valueBits, length int) *pack.PackVec {
	order := pack.NewOrder(valueBits)
	needed := pack.PartCountCeil(length, order.ValuesPerPart())
	if len(words) < needed {
		padded := make([]pack.Part, needed)
		copy(padded, words)
		words = padded
	}
	return pack.NewPackVecFromWords(words, length, order)
}

// chunkKey packs a chunk column's (x, z) coordinate into a single map key.
func chunkKey(chunkX, chunkZ int32) int64 {
	return int64(chunkX)<<32 | int64(uint32(chunkZ))
}
