package pack

// PackAccess is a read-only capability over a sequence of packed values.
// Go has no generic methods, so this is expressed in terms of the concrete
// Part word type rather than a caller-chosen narrow type E; callers that
// want a narrower type cast the result themselves (see GetBits/SetBits in
// part.go for that cast).
type PackAccess interface {
	Order() Order
	Len() int
	PartLen() int
	// GetPart returns the value at the given logical index, widened to
	// Part, and reports whether index was in range.
	GetPart(index int) (Part, bool)
}

// PackAccessMut extends PackAccess with in-place mutation.
type PackAccessMut interface {
	PackAccess
	// SetPart truncates value to Order().ValueBits() and stores it at the
	// given logical index. It reports whether index was in range.
	SetPart(index int, value Part) (Part, bool)
	// FillPart overwrites every value with the truncated value.
	FillPart(value Part)
}

// PackSpan is a read-only, word-aligned-or-not view over a []Part buffer.
// start is the value offset of the view's first element within parts[0].
type PackSpan struct {
	parts []Part
	start int
	len   int
	order Order
}

// PackSpanMut is the mutable counterpart of PackSpan.
type PackSpanMut struct {
	parts []Part
	start int
	len   int
	order Order
}

// NewPackSpan builds a read-only view covering len values of order starting
// at the start'th value of parts. It panics if the range does not fit.
func NewPackSpan(parts []Part, order Order, start, length int) PackSpan {
	checkSpanRange(len(parts), order, start, length)
	return PackSpan{parts: parts, start: start, len: length, order: order}
}

// NewPackSpanMut is the mutable counterpart of NewPackSpan.
func NewPackSpanMut(parts []Part, order Order, start, length int) PackSpanMut {
	checkSpanRange(len(parts), order, start, length)
	return PackSpanMut{parts: parts, start: start, len: length, order: order}
}

func checkSpanRange(partCount int, order Order, start, length int) {
	vpp := order.ValuesPerPart()
	if start < 0 || length < 0 {
		panic("pack: negative span range")
	}
	needed := PartCountCeil(start+length, vpp)
	if needed > partCount {
		panic("pack: span range exceeds backing storage")
	}
}

func (s PackSpan) Order() Order  { return s.order }
func (s PackSpan) Len() int      { return s.len }
func (s PackSpan) PartLen() int  { return PartCountCeil(s.start+s.len, s.order.ValuesPerPart()) }

func (s PackSpan) GetPart(index int) (Part, bool) {
	if index < 0 || index >= s.len {
		return 0, false
	}
	key := s.order.PartKey(s.start + index)
	mask := ValueMaskAs[Part](s.order)
	return GetBits(s.parts[key.Part], key.Bit, mask), true
}

func (s PackSpanMut) Order() Order  { return s.order }
func (s PackSpanMut) Len() int      { return s.len }
func (s PackSpanMut) PartLen() int  { return PartCountCeil(s.start+s.len, s.order.ValuesPerPart()) }

func (s PackSpanMut) GetPart(index int) (Part, bool) {
	if index < 0 || index >= s.len {
		return 0, false
	}
	key := s.order.PartKey(s.start + index)
	mask := ValueMaskAs[Part](s.order)
	return GetBits(s.parts[key.Part], key.Bit, mask), true
}

func (s PackSpanMut) SetPart(index int, value Part) (Part, bool) {
	if index < 0 || index >= s.len {
		return 0, false
	}
	key := s.order.PartKey(s.start + index)
	mask := ValueMaskAs[Part](s.order)
	old := GetBits(s.parts[key.Part], key.Bit, mask)
	s.parts[key.Part] = SetBits(s.parts[key.Part], key.Bit, value, mask)
	return old, true
}

func (s PackSpanMut) FillPart(value Part) {
	mask := ValueMaskAs[Part](s.order)
	v := value & mask
	for i := 0; i < s.len; i++ {
		key := s.order.PartKey(s.start + i)
		s.parts[key.Part] = SetBits(s.parts[key.Part], key.Bit, v, mask)
	}
}

// cutUnchecked advances the view by newStart values, dropping the words
// before the new first value and returning the new start offset within
// the first remaining word. newLen is not used: the caller records the new
// length itself. It is the shared algorithm behind Cut/CutChecked on both
// span types and behind Iter.Next.
func cutUnchecked(parts []Part, order Order, start, newStart, newLen int) (outParts []Part, outStart int) {
	vpp := order.ValuesPerPart()
	absolute := start + newStart
	wordAdvance := absolute / vpp
	head := absolute % vpp
	return parts[wordAdvance:], head
}

// CutChecked returns the sub-view [offset, offset+length) of s, or false if
// that range falls outside s.
func (s PackSpan) CutChecked(offset, length int) (PackSpan, bool) {
	if offset < 0 || length < 0 || offset+length > s.len {
		return PackSpan{}, false
	}
	parts, start := cutUnchecked(s.parts, s.order, s.start, offset, length)
	return PackSpan{parts: parts, start: start, len: length, order: s.order}, true
}

// Cut is CutChecked but panics instead of reporting failure.
func (s PackSpan) Cut(offset, length int) PackSpan {
	out, ok := s.CutChecked(offset, length)
	if !ok {
		panic("pack: cut range out of bounds")
	}
	return out
}

// CutChecked is the mutable counterpart of PackSpan.CutChecked.
func (s PackSpanMut) CutChecked(offset, length int) (PackSpanMut, bool) {
	if offset < 0 || length < 0 || offset+length > s.len {
		return PackSpanMut{}, false
	}
	parts, start := cutUnchecked(s.parts, s.order, s.start, offset, length)
	return PackSpanMut{parts: parts, start: start, len: length, order: s.order}, true
}

// Cut is the mutable counterpart of PackSpan.Cut.
func (s PackSpanMut) Cut(offset, length int) PackSpanMut {
	out, ok := s.CutChecked(offset, length)
	if !ok {
		panic("pack: cut range out of bounds")
	}
	return out
}

// SplitAt splits s into [0, mid) and [mid, Len()) without overlap checks.
// This is defined only on the read-only PackSpan: a mutable split would
// hand out two PackSpanMut values whose underlying word ranges can still
// overlap at the shared boundary word, letting a caller mutate through one
// half and silently perturb bits the other half owns. Splitting a value
// range at a non-word-aligned point is inherently partial-word-sharing, so
// mutable split is left unsupported rather than given a misleading API.
func (s PackSpan) SplitAt(mid int) (PackSpan, PackSpan) {
	return s.Cut(0, mid), s.Cut(mid, s.len-mid)
}

// Iter is a single-pass, consuming iterator over a PackSpan's values.
type Iter struct {
	span PackSpan
}

// NewIter wraps a PackSpan for sequential consumption.
func NewIter(span PackSpan) Iter { return Iter{span: span} }

// Next returns the next value and advances the iterator, or returns false
// once the span is exhausted.
func (it *Iter) Next() (Part, bool) {
	if it.span.len == 0 {
		return 0, false
	}
	v, _ := it.span.GetPart(0)
	it.span = it.span.Cut(1, it.span.len-1)
	return v, true
}

// copyValues performs an elementwise, width-truncating copy from src into
// dst. Both views must have equal length.
func copyValues(src PackAccess, dst PackAccessMut) {
	if src.Len() != dst.Len() {
		panic("pack: copy_to length mismatch")
	}
	mask := ValueMaskAs[Part](dst.Order())
	for i := 0; i < src.Len(); i++ {
		v, _ := src.GetPart(i)
		dst.SetPart(i, v&mask)
	}
}

// CopyTo copies every value of s into dst, truncating to dst's order.
func (s PackSpan) CopyTo(dst PackAccessMut) { copyValues(s, dst) }

// CopyTo copies every value of s into dst, truncating to dst's order.
func (s PackSpanMut) CopyTo(dst PackAccessMut) { copyValues(s, dst) }

// Fill overwrites every value in s with value, truncated to s's order.
func (s PackSpanMut) Fill(value Part) { s.FillPart(value) }
