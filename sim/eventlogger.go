package sim

import (
	"fmt"
	"reflect"

	"github.com/rs/zerolog"
)

// EventLogger is an hook that prints the event information
type EventLogger struct {
	LogHookBase
}

// NewEventLogger returns a new EventLogger which will write into the logger
// at debug level.
func NewEventLogger(logger zerolog.Logger) *EventLogger {
	h := new(EventLogger)
	h.Logger = logger
	return h
}

// Func writes the event information into the logger
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	entry := h.Logger.Debug().
		Float64("time", float64(evt.Time())).
		Str("type", reflect.TypeOf(evt).String())

	if s, ok := evt.(fmt.Stringer); ok {
		entry = entry.Str("event", s.String())
	}

	entry.Msg("event")
}
