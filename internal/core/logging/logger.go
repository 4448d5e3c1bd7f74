package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component derives a logger from the global logger tagged with "cmp". Events
// logged with .Ctx(ctx) also carry the list and task ids stored on ctx.
func Component(name string) zerolog.Logger {
	return For(log.Logger, name)
}

// For is Component for an explicit parent logger.
func For(parent zerolog.Logger, name string) zerolog.Logger {
	return parent.With().Str("cmp", name).Logger().Hook(ContextHook{})
}
