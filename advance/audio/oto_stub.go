//go:build !oto

package audio

import "errors"

// OtoSink stub for builds without the oto tag.
type OtoSink struct{}

// NewOtoSink reports that audio output was not compiled in.
func NewOtoSink() (*OtoSink, error) {
	return nil, errors.New("audio output not available - compile with -tags oto")
}

func (s *OtoSink) WriteSamples(samples []int16) error {
	return errors.New("audio output not available")
}

func (s *OtoSink) Close() error {
	return nil
}
