package helpers

import (
	"os"

	"github.com/sirupsen/logrus"
)

// appHook stamps every entry with the process name and environment, so logs
// from the API, the seeder and the email worker can share one sink.
type appHook struct {
	app, env string
}

func (h appHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h appHook) Fire(e *logrus.Entry) error {
	if _, ok := e.Data["app"]; !ok {
		e.Data["app"] = h.app
	}
	e.Data["env"] = h.env
	return nil
}

// NewLogger returns a logrus logger: text at debug level in development, JSON
// elsewhere. A non-empty level overrides the default.
func NewLogger(appName, env, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if env == "development" {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if level != "" {
		if lvl, err := logrus.ParseLevel(level); err == nil {
			logger.SetLevel(lvl)
		} else {
			logger.WithError(err).Warn("ignoring LOG_LEVEL")
		}
	}
	logger.AddHook(appHook{app: appName, env: env})
	logger.WithField("level", logger.GetLevel().String()).Info("logger initialized")
	return logger
}
