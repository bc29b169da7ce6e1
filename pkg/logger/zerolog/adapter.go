// Package zerolog implements logger.Logger on top of rs/zerolog.
package zerolog

import (
	"fmt"

	"github.com/raykavin/backview/pkg/logger"
	"github.com/rs/zerolog"
)

type Adapter struct {
	log *zerolog.Logger
}

func NewAdapter(l *zerolog.Logger) *Adapter {
	return &Adapter{log: l}
}

func (a *Adapter) derive(l zerolog.Logger) logger.Logger {
	return &Adapter{log: &l}
}

func (a *Adapter) WithError(err error) logger.Logger {
	return a.derive(a.log.With().Err(err).Logger())
}

func (a *Adapter) WithField(key string, value any) logger.Logger {
	return a.derive(a.log.With().Interface(key, value).Logger())
}

func (a *Adapter) WithFields(fields map[string]any) logger.Logger {
	return a.derive(a.log.With().Fields(fields).Logger())
}

func (a *Adapter) Print(args ...any) { a.log.Print(args...) }
func (a *Adapter) Trace(args ...any) { a.log.Trace().Msg(fmt.Sprint(args...)) }
func (a *Adapter) Debug(args ...any) { a.log.Debug().Msg(fmt.Sprint(args...)) }
func (a *Adapter) Info(args ...any)  { a.log.Info().Msg(fmt.Sprint(args...)) }
func (a *Adapter) Warn(args ...any)  { a.log.Warn().Msg(fmt.Sprint(args...)) }
func (a *Adapter) Error(args ...any) { a.log.Error().Msg(fmt.Sprint(args...)) }
func (a *Adapter) Fatal(args ...any) { a.log.Fatal().Msg(fmt.Sprint(args...)) }
func (a *Adapter) Panic(args ...any) { a.log.Panic().Msg(fmt.Sprint(args...)) }

func (a *Adapter) Printf(format string, args ...any) { a.log.Printf(format, args...) }
func (a *Adapter) Tracef(format string, args ...any) { a.log.Trace().Msgf(format, args...) }
func (a *Adapter) Debugf(format string, args ...any) { a.log.Debug().Msgf(format, args...) }
func (a *Adapter) Infof(format string, args ...any)  { a.log.Info().Msgf(format, args...) }
func (a *Adapter) Warnf(format string, args ...any)  { a.log.Warn().Msgf(format, args...) }
func (a *Adapter) Errorf(format string, args ...any) { a.log.Error().Msgf(format, args...) }
func (a *Adapter) Fatalf(format string, args ...any) { a.log.Fatal().Msgf(format, args...) }
func (a *Adapter) Panicf(format string, args ...any) { a.log.Panic().Msgf(format, args...) }

// SetLevel changes the minimum level of this logger only
func (a *Adapter) SetLevel(level logger.Level) {
	l := a.log.Level(toZerologLevel(level))
	a.log = &l
}

func (a *Adapter) GetLevel() logger.Level {
	return toLevel(a.log.GetLevel())
}

var levels = map[logger.Level]zerolog.Level{
	logger.Disabled:   zerolog.Disabled,
	logger.NoLevel:    zerolog.NoLevel,
	logger.TraceLevel: zerolog.TraceLevel,
	logger.DebugLevel: zerolog.DebugLevel,
	logger.InfoLevel:  zerolog.InfoLevel,
	logger.WarnLevel:  zerolog.WarnLevel,
	logger.ErrorLevel: zerolog.ErrorLevel,
	logger.FatalLevel: zerolog.FatalLevel,
	logger.PanicLevel: zerolog.PanicLevel,
}

func toZerologLevel(level logger.Level) zerolog.Level {
	if l, ok := levels[level]; ok {
		return l
	}
	return zerolog.NoLevel
}

func toLevel(level zerolog.Level) logger.Level {
	for l, zl := range levels {
		if zl == level {
			return l
		}
	}
	return logger.NoLevel
}

// Nop returns an adapter that discards every entry
func Nop() *Adapter {
	l := zerolog.Nop()
	return &Adapter{log: &l}
}
