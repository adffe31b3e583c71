package pack

// Unpack decodes len(dst) values of the given bit width out of src,
// starting at the srcOffset'th logical value, into dst.
//
// src is a slice of wide words (P); dst is a slice of the narrow element
// type (E) the caller wants the values widened to. The source this
// package is modeled on specializes this routine per constant value_bits
// in [1, 12] via a compile-time dispatch macro, purely so the compiler can
// unroll/vectorize the inner loop; Go has no equivalent of that macro, so
// a single generic core handles every width and relies on the widened
// mask (see ParallelMask-style widening below) to keep the inner loop
// branch-free and auto-vectorizable.
func Unpack[P, E Unsigned](dst []E, src []P, srcOffset, valueBits int) {
	if len(dst) == 0 {
		return
	}
	unpackCore(dst, src, srcOffset, valueBits)
}

func unpackCore[P, E Unsigned](dst []E, src []P, srcOffset, valueBits int) {
	vpp := ValuesPerPart[P](valueBits)
	srcIdx := srcOffset / vpp
	srcRem := srcOffset % vpp

	// Widening the mask from E to P lets the inner loop run entirely in
	// P-sized arithmetic; P never carries bits outside E's range so the
	// later narrowing conversion is lossless.
	valueMaskP := P(ValueMask[E](valueBits))

	rest := src[srcIdx:]
	if srcRem != 0 {
		headOffset := srcRem * valueBits
		headPart := rest[0] >> uint(headOffset)
		rest = rest[1:]

		headCount := vpp - srcRem
		if headCount > len(dst) {
			headCount = len(dst)
		}
		unpackPart(dst[:headCount], headPart, valueBits, valueMaskP)
		dst = dst[headCount:]
	}

	for i := 0; len(dst) > 0; i++ {
		chunkLen := min(vpp, len(dst))
		unpackPart(dst[:chunkLen], rest[i], valueBits, valueMaskP)
		dst = dst[chunkLen:]
	}
}

func unpackPart[P, E Unsigned](dst []E, part P, valueBits int, valueMaskP P) {
	for i := range dst {
		bits := part >> uint(i*valueBits)
		dst[i] = E(bits & valueMaskP)
	}
}

// Pack is the inverse of Unpack: it encodes len(src) values into dst
// starting at the dstOffset'th logical value.
//
// The reference implementation this package is modeled on leaves Pack
// unimplemented (a todo stub) and documents it only as "OR-insertion into
// dst words", implying dst is expected to start zeroed. This
// implementation instead clears each destination slot before writing so
// Pack is safe to call against a buffer that already holds unrelated
// values at the target slots, matching the truncate-and-overwrite
// semantics PackVec.SetPart documents elsewhere in this package.
func Pack[P, E Unsigned](dst []P, src []E, dstOffset, valueBits int) {
	if len(src) == 0 {
		return
	}
	packCore(dst, src, dstOffset, valueBits)
}

func packCore[P, E Unsigned](dst []P, src []E, dstOffset, valueBits int) {
	vpp := ValuesPerPart[P](valueBits)
	dstIdx := dstOffset / vpp
	dstRem := dstOffset % vpp

	valueMaskP := P(ValueMask[E](valueBits))

	rest := dst[dstIdx:]
	if dstRem != 0 {
		headBit := dstRem * valueBits
		headCount := min(vpp-dstRem, len(src))
		rest[0] = packPart(rest[0], src[:headCount], headBit, valueBits, valueMaskP)
		src = src[headCount:]
		rest = rest[1:]
	}

	for i := 0; len(src) > 0; i++ {
		chunkLen := min(vpp, len(src))
		rest[i] = packPart(rest[i], src[:chunkLen], 0, valueBits, valueMaskP)
		src = src[chunkLen:]
	}
}

func packPart[P, E Unsigned](part P, src []E, baseBit, valueBits int, valueMaskP P) P {
	for i, v := range src {
		bit := baseBit + i*valueBits
		clearMask := valueMaskP << uint(bit)
		setMask := (P(v) & valueMaskP) << uint(bit)
		part = (part &^ clearMask) | setMask
	}
	return part
}
