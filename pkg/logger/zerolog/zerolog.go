package zerolog

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/goterm/term"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Config selects the output format of the logger
type Config struct {
	Level      string
	TimeFormat string
	Colored    bool
	JSON       bool
}

// New builds a zerolog logger writing to out. JSON output is written as
// is; otherwise entries go through a column aligned console writer.
func New(out io.Writer, cfg Config) (*zerolog.Logger, error) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	if cfg.JSON {
		zerolog.TimeFieldFormat = time.RFC3339
		l := zerolog.New(out).Level(level).With().Timestamp().Logger()
		return &l, nil
	}

	output := zerolog.ConsoleWriter{
		Out:           out,
		NoColor:       !cfg.Colored,
		TimeFormat:    cfg.TimeFormat,
		FormatLevel:   formatLevel(cfg.Colored),
		FormatMessage: formatMessage,
		FormatCaller:  formatCaller,
		FormatTimestamp: func(i interface{}) string {
			return formatTimestamp(i, cfg.TimeFormat)
		},
	}

	l := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		CallerWithSkipFrameCount(3).
		Logger()

	return &l, nil
}

func formatLevel(colored bool) zerolog.Formatter {
	return func(i interface{}) string {
		level, _ := i.(string)
		tag, paint := levelTag(level)
		if !colored {
			return tag
		}
		return paint(tag)
	}
}

func levelTag(level string) (string, func(string, ...interface{}) string) {
	switch level {
	case zerolog.LevelTraceValue:
		return "[TRC]", term.Cyanf
	case zerolog.LevelDebugValue:
		return "[DBG]", term.Cyanf
	case zerolog.LevelInfoValue:
		return "[INF]", term.Greenf
	case zerolog.LevelWarnValue:
		return "[WAR]", term.Yellowf
	case zerolog.LevelErrorValue:
		return "[ERR]", term.Redf
	case zerolog.LevelFatalValue:
		return "[FTL]", term.Redf
	case zerolog.LevelPanicValue:
		return "[PAN]", term.Redf
	default:
		return "[UNK]", term.Whitef
	}
}

func formatMessage(i interface{}) string {
	const width = 60

	msg, ok := i.(string)
	if !ok || msg == "" {
		return ">"
	}
	if len(msg) < width {
		msg += strings.Repeat(" ", width-len(msg))
	}
	return "> " + msg
}

func formatCaller(i interface{}) string {
	const fileWidth, lineWidth = 16, 4

	name, ok := i.(string)
	if !ok || name == "" {
		return ""
	}

	file, line, found := strings.Cut(filepath.Base(name), ":")
	if !found {
		return file
	}
	if len(file) > fileWidth {
		file = file[:fileWidth]
	}
	if len(line) > lineWidth {
		line = line[len(line)-lineWidth:]
	}
	return fmt.Sprintf("[%-*s:%*s]", fileWidth, file, lineWidth, line)
}

func formatTimestamp(i interface{}, layout string) string {
	raw, ok := i.(string)
	if !ok {
		return fmt.Sprintf("[%v]", i)
	}
	if ts, err := time.Parse(zerolog.TimeFieldFormat, raw); err == nil {
		raw = ts.In(time.Local).Format(layout)
	}
	return "[" + raw + "]"
}
