package uart

// accumulator is a growable receive buffer. Capacity doubles whenever the
// next chunk would not fit; growth copies, so appended bytes are never lost
// or reordered.
type accumulator struct {
	buf []byte
}

// next returns a scratch slice of n bytes immediately past the appended
// data, growing capacity first if needed. The scratch bytes become part of
// the buffer only after extend.
func (a *accumulator) next(n int) []byte {
	need := len(a.buf) + n
	if need > cap(a.buf) {
		newCap := cap(a.buf)
		if newCap == 0 {
			newCap = n
		}
		for newCap < need {
			newCap *= 2
		}
		grown := make([]byte, len(a.buf), newCap)
		copy(grown, a.buf)
		a.buf = grown
	}
	return a.buf[len(a.buf):need]
}

// extend commits n bytes previously written into the scratch slice.
func (a *accumulator) extend(n int) {
	a.buf = a.buf[:len(a.buf)+n]
}

func (a *accumulator) bytes() []byte { return a.buf }

func (a *accumulator) len() int { return len(a.buf) }
