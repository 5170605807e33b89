package audio

import "errors"

// Sink consumes interleaved stereo samples at SampleRate.
type Sink interface {
	WriteSamples(samples []int16) error
	Close() error
}

// MultiSink duplicates the samples to every sink. Write and close errors
// are joined.
func MultiSink(sinks ...Sink) Sink {
	return multiSink(sinks)
}

type multiSink []Sink

func (m multiSink) WriteSamples(samples []int16) error {
	var errs []error
	for _, s := range m {
		if err := s.WriteSamples(samples); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
