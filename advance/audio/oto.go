//go:build oto

package audio

import (
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
)

// OtoSink plays the output on the default audio device.
type OtoSink struct {
	ctx    *oto.Context
	player *oto.Player
	ring   *sampleRing
}

// NewOtoSink opens the audio device and starts playback.
func NewOtoSink() (*OtoSink, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   50 * time.Millisecond,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	s := &OtoSink{ctx: ctx, ring: newSampleRing(SampleRate / 5 * 2)}
	s.player = ctx.NewPlayer(s.ring)
	s.player.Play()
	return s, nil
}

// WriteSamples queues interleaved stereo samples for playback.
func (s *OtoSink) WriteSamples(samples []int16) error {
	s.ring.push(samples)
	return nil
}

// Close stops playback.
func (s *OtoSink) Close() error {
	return s.player.Close()
}
