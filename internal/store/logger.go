package store

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// Option configures New
type Option func(*options)

type options struct {
	logger logrus.FieldLogger
}

// WithLogger routes gorm's warnings and slow-query reports to log
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		if log != nil {
			o.logger = log
		}
	}
}

// gormWriter forwards gorm's formatted lines to logrus at warn level.
// gorm filters by level before writing, so nothing below a warning reaches it.
type gormWriter struct {
	log logrus.FieldLogger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Warnf(format, args...)
}

// newGormLogger reports at warn level and stays silent on lookups that find nothing
func newGormLogger(log logrus.FieldLogger) logger.Interface {
	return logger.New(gormWriter{log: log.WithField("component", "gorm")}, logger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
