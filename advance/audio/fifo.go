package audio

import "github.com/valerio/go-advance/advance/savestate"

// fifo is one DirectSound channel: a 32-byte queue of signed 8-bit
// samples popped on overflows of the bound timer.
type fifo struct {
	data  [fifoSize]int8
	head  int
	count int

	// output is the sample currently driven to the mixer.
	output int8

	timer int
	left  bool
	right bool
	full  bool // 100% volume instead of 50%
}

func (f *fifo) push(v int8) {
	if f.count == fifoSize {
		return
	}
	f.data[(f.head+f.count)%fifoSize] = v
	f.count++
}

func (f *fifo) pop() {
	if f.count == 0 {
		return
	}
	f.output = f.data[f.head]
	f.head = (f.head + 1) % fifoSize
	f.count--
}

func (f *fifo) reset() {
	f.head = 0
	f.count = 0
	f.output = 0
}

func (f *fifo) stateAction(s *savestate.Section) {
	raw := make([]byte, fifoSize)
	for i, v := range f.data {
		raw[i] = byte(v)
	}
	s.Bytes(raw)
	out := uint8(f.output)
	s.Uint8(&out)
	s.Int(&f.head)
	s.Int(&f.count)
	s.Int(&f.timer)
	s.Bool(&f.left)
	s.Bool(&f.right)
	s.Bool(&f.full)
	if s.Loading() {
		for i := range f.data {
			f.data[i] = int8(raw[i])
		}
		f.output = int8(out)
		f.head %= fifoSize
		if f.count > fifoSize {
			f.count = fifoSize
		}
	}
}
