package input

import (
	"time"

	"github.com/valerio/go-advance/advance/input/action"
	"github.com/valerio/go-advance/advance/input/event"
)

// Handler debounces emulator actions. Console buttons are never debounced:
// games poll them every frame and rely on quick taps.
type Handler struct {
	lastActionTime map[action.Action]time.Time
	debounceDelay  time.Duration
	now            func() time.Time
}

func NewHandler() *Handler {
	return &Handler{
		lastActionTime: make(map[action.Action]time.Time),
		debounceDelay:  debounceDuration,
		now:            time.Now,
	}
}

// ProcessEvent reports whether the event should be handled, false if it
// was debounced.
func (h *Handler) ProcessEvent(act action.Action, typ event.Type) bool {
	if typ != event.Press || action.GetInfo(act).Category == action.CategoryGameInput {
		return true
	}

	now := h.now()
	if last, ok := h.lastActionTime[act]; ok && now.Sub(last) < h.debounceDelay {
		return false
	}
	h.lastActionTime[act] = now
	return true
}
