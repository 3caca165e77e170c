package ports

import (
	"fmt"
	"strings"
)

// LogLevel is the severity of a log message.
type LogLevel int

const (
	// LevelDebug is used by components (transcoder, engine) for per-event detail.
	LevelDebug LogLevel = iota
	// LevelInfo is used by the CLI and orchestrator for job progress.
	LevelInfo
	// LevelWarn reports problems that do not end the session, such as a
	// failed debug chunk dump.
	LevelWarn
	// LevelError reports the terminal error of a session.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

var levelNames = map[LogLevel]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
	LevelQuiet: "quiet",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// ParseLogLevel parses a level name, case-insensitively. "warning" is
// accepted for warn.
func ParseLogLevel(s string) (LogLevel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return LevelWarn, nil
	}
	for level, name := range levelNames {
		if name == s {
			return level, nil
		}
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger abstracts logging with translatable messages.
// Components receive a Logger at construction; there is no package-level logger.
type Logger interface {
	// Debug, Info, Warn and Error take a message key that is translated
	// before formatting with args.
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that prefixes messages with component.
	WithComponent(component string) Logger
}
