// Package logrus implements logger.Logger on top of sirupsen/logrus.
package logrus

import (
	"io"

	"github.com/raykavin/backview/pkg/logger"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Level      string
	TimeFormat string
	Colored    bool
	JSON       bool
}

// New builds a logrus backed logger writing to out
func New(out io.Writer, cfg Config) (*Adapter, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	if cfg.JSON {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: cfg.TimeFormat})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: cfg.TimeFormat,
			ForceColors:     cfg.Colored,
			DisableColors:   !cfg.Colored,
		})
	}

	return NewAdapter(logrus.NewEntry(l)), nil
}

type Adapter struct {
	*logrus.Entry
}

func NewAdapter(entry *logrus.Entry) *Adapter {
	return &Adapter{entry}
}

func (a *Adapter) WithField(key string, value any) logger.Logger {
	return &Adapter{a.Entry.WithField(key, value)}
}

func (a *Adapter) WithFields(fields map[string]any) logger.Logger {
	return &Adapter{a.Entry.WithFields(fields)}
}

func (a *Adapter) WithError(err error) logger.Logger {
	return &Adapter{a.Entry.WithError(err)}
}

// SetLevel applies to every adapter sharing the same logrus logger
func (a *Adapter) SetLevel(level logger.Level) {
	switch level {
	case logger.Disabled:
		a.Logger.SetOutput(io.Discard)
	default:
		a.Logger.SetLevel(toLogrusLevel(level))
	}
}

func (a *Adapter) GetLevel() logger.Level {
	switch a.Logger.GetLevel() {
	case logrus.TraceLevel:
		return logger.TraceLevel
	case logrus.DebugLevel:
		return logger.DebugLevel
	case logrus.InfoLevel:
		return logger.InfoLevel
	case logrus.WarnLevel:
		return logger.WarnLevel
	case logrus.ErrorLevel:
		return logger.ErrorLevel
	case logrus.FatalLevel:
		return logger.FatalLevel
	case logrus.PanicLevel:
		return logger.PanicLevel
	default:
		return logger.NoLevel
	}
}

func toLogrusLevel(level logger.Level) logrus.Level {
	switch level {
	case logger.TraceLevel:
		return logrus.TraceLevel
	case logger.DebugLevel:
		return logrus.DebugLevel
	case logger.WarnLevel:
		return logrus.WarnLevel
	case logger.ErrorLevel:
		return logrus.ErrorLevel
	case logger.FatalLevel:
		return logrus.FatalLevel
	case logger.PanicLevel:
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}
