// Package block defines the identifiers and geometry shared by the packed
// storage core and its consumers: a block type id, and the coordinate and
// size triples used to address a chunk's volume.
package block

import "fmt"

// ID is an opaque block type identifier. The zero value is "empty".
// Equality and hashing are bitwise, so ID is safe to use as a map key.
type ID uint32

// Empty is the reserved block id meaning "no block".
const Empty ID = 0

// Coord is a position within a chunk's local block grid.
type Coord struct {
	X, Y, Z uint32
}

// Size is a chunk or sub-box's extent along each axis.
type Size struct {
	Width, Height, Depth uint32
}

// Volume returns Width*Height*Depth.
func (s Size) Volume() int {
	return int(s.Width) * int(s.Height) * int(s.Depth)
}

// Contains reports whether c lies within the box [0, s) on every axis.
func (s Size) Contains(c Coord) bool {
	return c.X < s.Width && c.Y < s.Height && c.Z < s.Depth
}

// Offset returns the linear index of c within a grid of the given size,
// using the row-major layout ((y*depth + z)*width) + x that the rest of
// this module assumes everywhere a chunk's volume is flattened.
func Offset(size Size, c Coord) int {
	return int((c.Y*size.Depth+c.Z)*size.Width + c.X)
}

// CoordAt is the inverse of Offset: it recovers the (x, y, z) position of
// the given linear offset within a grid of the given size.
func CoordAt(size Size, offset int) Coord {
	width := int(size.Width)
	depth := int(size.Depth)
	x := offset % width
	rest := offset / width
	z := rest % depth
	y := rest / depth
	return Coord{X: uint32(x), Y: uint32(y), Z: uint32(z)}
}

// ErrOutOfBounds is returned when a coordinate or sub-box falls outside a
// chunk's declared size.
type ErrOutOfBounds struct {
	Coord Coord
	Size  Size
}

func (e ErrOutOfBounds) Error() string {
	return fmt.Sprintf("block: coord %+v out of bounds for size %+v", e.Coord, e.Size)
}
