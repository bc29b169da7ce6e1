package config

import (
	"fmt"
	"io"

	"github.com/raykavin/backview/pkg/logger"
	"github.com/raykavin/backview/pkg/logger/logrus"
	"github.com/raykavin/backview/pkg/logger/zerolog"
)

// NewLogger builds the configured logging backend writing to out
func (c LogConfig) NewLogger(out io.Writer) (logger.Logger, error) {
	level := c.Level
	if level == logger.Disabled.String() {
		level = logger.PanicLevel.String()
	}

	var (
		log logger.Logger
		err error
	)

	switch c.Backend {
	case "logrus":
		log, err = logrus.New(out, logrus.Config{
			Level:      level,
			TimeFormat: c.TimeFormat,
			Colored:    c.Colored,
			JSON:       c.JSON,
		})
	case "", "zerolog":
		z, zerr := zerolog.New(out, zerolog.Config{
			Level:      level,
			TimeFormat: c.TimeFormat,
			Colored:    c.Colored,
			JSON:       c.JSON,
		})
		if zerr == nil {
			log = zerolog.NewAdapter(z)
		}
		err = zerr
	default:
		return nil, fmt.Errorf("unknown log backend %q", c.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s logger: %w", c.Backend, err)
	}

	if c.Level == logger.Disabled.String() {
		log.SetLevel(logger.Disabled)
	}
	return log, nil
}
