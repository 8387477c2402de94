package logging

import (
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/freedroid/freedroid/internal/events"
)

// busHook forwards warnings and errors to the event bus so an attached
// surface can show them without parsing log output.
type busHook struct {
	bus *events.EventBus
}

func (h busHook) Run(e *zerolog.Event, level zerolog.Level, message string) {
	switch level {
	case zerolog.WarnLevel:
		h.bus.PublishLog(events.WarnLevel, message, "", nil)
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		h.bus.PublishLog(events.ErrorLevel, message, "", nil)
	}
}

func dirOf(path string) string {
	return filepath.Dir(path)
}
