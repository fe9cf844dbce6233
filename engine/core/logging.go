package core

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var once sync.Once

type logger struct {
	*log.Logger
	file *os.File
}

var singleton *logger

func getLogger() *logger {
	once.Do(func() {
		singleton = &logger{Logger: newLogger(os.Stderr)}
		singleton.SetLevel(log.DebugLevel)
	})
	return singleton
}

func newLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		CallerOffset:    1,
		Prefix:          "Solo 🎥 ",
	})
}

// ParseLogLevel maps a configuration string onto a LogLevel. Unknown values
// fall back to info.
func ParseLogLevel(s string) LogLevel {
	switch LogLevel(strings.ToLower(strings.TrimSpace(s))) {
	case LogLevelDebug:
		return LogLevelDebug
	case LogLevelWarn:
		return LogLevelWarn
	case LogLevelError:
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

func (l LogLevel) charm() log.Level {
	switch l {
	case LogLevelDebug:
		return log.DebugLevel
	case LogLevelWarn:
		return log.WarnLevel
	case LogLevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ConfigureLogging sets the level of the engine logger and, when filePath is
// not empty, mirrors every record into that file.
func ConfigureLogging(level LogLevel, filePath string) error {
	l := getLogger()
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
	out := io.Writer(os.Stderr)
	if filePath != "" {
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", filePath, err)
		}
		l.file = f
		out = io.MultiWriter(os.Stderr, f)
	}
	l.Logger = newLogger(out)
	l.SetLevel(level.charm())
	return nil
}

// CloseLogging releases the log file opened by ConfigureLogging, if any.
func CloseLogging() {
	l := getLogger()
	if l.file == nil {
		return
	}
	l.file.Close()
	l.file = nil
	level := l.GetLevel()
	l.Logger = newLogger(os.Stderr)
	l.SetLevel(level)
}

func LogDebug(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}

func LogFatal(msg string, args ...interface{}) {
	getLogger().Fatalf(msg, args...)
}
