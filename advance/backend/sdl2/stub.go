//go:build !sdl2

package sdl2

import (
	"errors"

	"github.com/valerio/go-advance/advance/backend"
	"github.com/valerio/go-advance/advance/video"
)

// ErrUnavailable is returned by the stub backend.
var ErrUnavailable = errors.New("SDL2 backend not available, build with -tags sdl2 to enable")

// Backend stub for builds without SDL2.
type Backend struct{}

func New() *Backend {
	return &Backend{}
}

func (s *Backend) Init(backend.Config) error {
	return ErrUnavailable
}

func (s *Backend) Update(*video.FrameBuffer) ([]backend.InputEvent, error) {
	return nil, ErrUnavailable
}

func (s *Backend) Cleanup() error {
	return nil
}
