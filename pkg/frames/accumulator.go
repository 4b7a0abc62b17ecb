package frames

// Accumulator reassembles arbitrarily-sized sample chunks into
// fixed-size frames, preserving sample order and losing nothing.
//
// It is not safe for concurrent use.
type Accumulator struct {
	frameSize int
	buf       []float32
	head      int
}

func NewAccumulator(frameSize int) *Accumulator {
	return &Accumulator{
		frameSize: frameSize,
	}
}

// Push appends a chunk of samples to the tail of the accumulator.
func (a *Accumulator) Push(chunk []float32) {
	if a.head > 0 && a.head >= len(a.buf)-a.head {
		// more dead space in front than live samples, compact
		n := copy(a.buf, a.buf[a.head:])
		a.buf = a.buf[:n]
		a.head = 0
	}
	a.buf = append(a.buf, chunk...)
}

// TakeFrame moves exactly one frame from the head of the accumulator
// into dst (which must be frameSize long). It reports false when fewer
// than frameSize samples are pending, in which case dst is untouched.
func (a *Accumulator) TakeFrame(dst []float32) bool {
	if len(dst) != a.frameSize {
		return false
	}
	if a.Pending() < a.frameSize {
		return false
	}
	copy(dst, a.buf[a.head:a.head+a.frameSize])
	a.head += a.frameSize
	return true
}

// Pending returns the amount of accumulated samples not yet taken.
func (a *Accumulator) Pending() int {
	return len(a.buf) - a.head
}

// Reset discards all pending samples.
func (a *Accumulator) Reset() {
	a.buf = a.buf[:0]
	a.head = 0
}
