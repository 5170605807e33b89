package audio

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WavSink records the output to a 16-bit stereo PCM wave file.
type WavSink struct {
	enc    *wav.Encoder
	closer io.Closer
	buf    *goaudio.IntBuffer
	frames int
}

// NewWavSink creates path and writes samples to it until Close.
func NewWavSink(path string) (*WavSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating wav file: %w", err)
	}
	s := NewWavWriter(f)
	s.closer = f
	slog.Info("Recording audio", "path", path)
	return s, nil
}

// NewWavWriter encodes to w. Closing the sink does not close w.
func NewWavWriter(w io.WriteSeeker) *WavSink {
	return &WavSink{
		enc: wav.NewEncoder(w, SampleRate, 16, 2, 1),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 2, SampleRate: SampleRate},
			SourceBitDepth: 16,
		},
	}
}

// WriteSamples appends interleaved stereo samples.
func (s *WavSink) WriteSamples(samples []int16) error {
	if len(samples) == 0 {
		return nil
	}
	data := s.buf.Data[:0]
	for _, v := range samples {
		data = append(data, int(v))
	}
	s.buf.Data = data
	s.frames += len(samples) / 2
	return s.enc.Write(s.buf)
}

// Frames returns the number of stereo frames written so far.
func (s *WavSink) Frames() int {
	return s.frames
}

// Close finalizes the wave header.
func (s *WavSink) Close() error {
	err := s.enc.Close()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
