package audio

import (
	"encoding/binary"
	"sync"
)

// sampleRing is the queue between the emulation goroutine and a pulling
// audio device. Reads that find it short are padded with silence.
type sampleRing struct {
	mu   sync.Mutex
	data []int16
	max  int
}

func newSampleRing(max int) *sampleRing {
	return &sampleRing{max: max}
}

func (r *sampleRing) push(samples []int16) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data = append(r.data, samples...)
	if over := len(r.data) - r.max; over > 0 {
		// drop whole frames from the front
		over += over & 1
		n := copy(r.data, r.data[over:])
		r.data = r.data[:n]
	}
}

func (r *sampleRing) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data)
}

// Read fills p with little-endian int16 samples.
func (r *sampleRing) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := len(p) / 2
	n := count
	if n > len(r.data) {
		n = len(r.data)
	}
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(p[i*2:], uint16(r.data[i]))
	}
	for i := n * 2; i < count*2; i++ {
		p[i] = 0
	}
	rest := copy(r.data, r.data[n:])
	r.data = r.data[:rest]
	return count * 2, nil
}
