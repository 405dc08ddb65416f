package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

var levelColors = map[string]*color.Color{
	zerolog.LevelTraceValue: color.New(color.FgHiBlack, color.Bold),
	zerolog.LevelDebugValue: color.New(color.FgHiBlue, color.Bold),
	zerolog.LevelInfoValue:  color.New(color.FgHiGreen, color.Bold),
	zerolog.LevelWarnValue:  color.New(color.FgHiYellow, color.Bold),
	zerolog.LevelErrorValue: color.New(color.FgHiRed, color.Bold),
	zerolog.LevelFatalValue: color.New(color.FgHiRed, color.Bold),
}

type Config struct {
	Level      string `yaml:"level"`
	TimeFormat string `yaml:"time_format"`
	Colored    bool   `yaml:"colored"`
	JSON       bool   `yaml:"json"`

	// Out defaults to stderr
	Out io.Writer `yaml:"-"`
}

// New builds a logger from config. A nil config gives an info-level colored
// console logger.
func New(config *Config) (zerolog.Logger, error) {
	if config == nil {
		config = &Config{Level: "info", Colored: true}
	}
	if config.TimeFormat == "" {
		config.TimeFormat = time.RFC3339
	}
	out := config.Out
	if out == nil {
		out = os.Stderr
	}

	level, err := zerolog.ParseLevel(config.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level: %w", err)
	}

	if config.JSON {
		return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
	}

	writer := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    !config.Colored,
		TimeFormat: config.TimeFormat,
		PartsOrder: []string{"time", "level", "message"},
	}
	if config.Colored {
		writer.FormatLevel = formatLevel
	}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger(), nil
}

func formatLevel(i any) string {
	s, ok := i.(string)
	if !ok {
		return "????"
	}
	c, ok := levelColors[s]
	if !ok {
		return s
	}
	if len(s) > 4 {
		s = s[:4]
	}
	return c.Sprintf("%-4s", s)
}
