// Package logger provides process-wide leveled logging.
//
// Two formats are supported. "text" writes classic log lines with a
// [LEVEL] prefix and the caller's file:line. "json" writes one object per
// line with time, level and msg fields.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents a logging level
type Level int

const (
	// DebugLevel logs request retries and fetch sizes.
	DebugLevel Level = iota
	// InfoLevel is the default logging priority.
	InfoLevel
	// WarnLevel logs recoverable problems.
	WarnLevel
	// ErrorLevel logs failed operations.
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	}
	return "unknown"
}

// ParseLevel maps a config value to a Level. Unknown values map to InfoLevel.
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Logger provides leveled logging
type Logger struct {
	mu     sync.Mutex
	level  Level
	json   bool
	out    io.Writer
	logger *log.Logger
}

var defaultLogger *Logger

// Init initializes the default logger on stderr.
func Init(level string, format string) {
	Setup(os.Stderr, level, format)
}

// Setup initializes the default logger on w.
func Setup(w io.Writer, level string, format string) {
	l := &Logger{
		level: ParseLevel(level),
		json:  strings.ToLower(format) == "json",
		out:   w,
	}
	if !l.json {
		l.logger = log.New(w, "", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	}
	defaultLogger = l
}

type entry struct {
	Time  string `json:"time"`
	Level string `json:"level"`
	Msg   string `json:"msg"`
}

func (l *Logger) output(level Level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if !l.json {
		// skip output, logAt and the exported wrapper
		_ = l.logger.Output(4, "["+strings.ToUpper(level.String())+"] "+msg)
		return
	}

	line, err := json.Marshal(entry{
		Time:  time.Now().UTC().Format(time.RFC3339Nano),
		Level: level.String(),
		Msg:   msg,
	})
	if err != nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(append(line, '\n'))
}

func logAt(level Level, format string, args ...interface{}) {
	if defaultLogger != nil && defaultLogger.level <= level {
		defaultLogger.output(level, format, args...)
	}
}

// Debug logs a message at DebugLevel
func Debug(format string, args ...interface{}) { logAt(DebugLevel, format, args...) }

// Info logs a message at InfoLevel
func Info(format string, args ...interface{}) { logAt(InfoLevel, format, args...) }

// Warn logs a message at WarnLevel
func Warn(format string, args ...interface{}) { logAt(WarnLevel, format, args...) }

// Error logs a message at ErrorLevel
func Error(format string, args ...interface{}) { logAt(ErrorLevel, format, args...) }

// Fatal logs a message at ErrorLevel and exits
func Fatal(format string, args ...interface{}) {
	if defaultLogger != nil {
		logAt(ErrorLevel, format, args...)
	} else {
		log.Printf("[FATAL] "+format, args...)
	}
	os.Exit(1)
}
