package observability

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	appLoggerOnce sync.Once
	appLogger     zerolog.Logger
)

// InitLogger tags the global logger with the app name once per process and
// returns it. Later calls return the first logger unchanged. Output and
// level are set by internal/logging.
func InitLogger(app string) zerolog.Logger {
	appLoggerOnce.Do(func() {
		appLogger = log.Logger.With().Str("app", app).Logger()
		log.Logger = appLogger
	})
	return appLogger
}
