package pack

// Order describes how values are laid out inside a Part: the width of a
// single value in bits, and how many such values fit in one word.
//
// The source this package is modeled on distinguishes a runtime Order
// (value_bits chosen at construction time) from a compile-time Order
// (value_bits fixed as a const generic parameter, used purely so the
// compiler can specialize hot loops). Go has no const generic parameters,
// so both collapse onto this single runtime type. The pack/unpack codec in
// codec.go uses one generic core for every width; the only explicit
// width-class dispatch is the palette's 8/16/32-bit ladder in
// voxel/palette.go.
// Behavior between the two is identical by construction, matching the
// source's contract that the const path never diverges from the var path.
type Order struct {
	valueBits     int
	valuesPerPart int
}

// NewOrder builds an Order for packing values of the given width into
// Part words. It panics if valueBits is outside [1, PartBits].
func NewOrder(valueBits int) Order {
	if valueBits < 1 || valueBits > PartBits {
		panic("pack: value_bits out of range [1, PartBits]")
	}
	return Order{
		valueBits:     valueBits,
		valuesPerPart: ValuesPerPart[Part](valueBits),
	}
}

// ValueBits returns the width, in bits, of a single packed value.
func (o Order) ValueBits() int { return o.valueBits }

// ValuesPerPart returns floor(PartBits / ValueBits()).
func (o Order) ValuesPerPart() int { return o.valuesPerPart }

// BitsPerPart returns the number of bits of a Part actually used by
// ValuesPerPart() values; this may be less than PartBits when ValueBits()
// does not evenly divide PartBits.
func (o Order) BitsPerPart() int { return o.valuesPerPart * o.valueBits }

// PartKey locates the slot holding the index'th logical value under this
// order.
func (o Order) PartKey(index int) PartKey {
	return NewPartKey(index, o.valueBits, o.valuesPerPart)
}

// ValueMaskAs returns the mask covering a single value under this order,
// widened to T.
func ValueMaskAs[T Unsigned](o Order) T {
	return ValueMask[T](o.valueBits)
}
