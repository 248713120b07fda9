package logging

import (
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

const maxLogSizeMB = 2

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var current atomic.Int32

func init() {
	current.Store(int32(LevelInfo))
}

// Setup tees the standard logger to console and a size-rotated file. A nil
// console means stdout.
func Setup(logPath string, console io.Writer) io.Closer {
	if console == nil {
		console = os.Stdout
	}
	rw := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    maxLogSizeMB,
		MaxBackups: 1,
	}

	log.SetOutput(io.MultiWriter(console, rw))
	return rw
}

func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func SetLevel(l Level) {
	current.Store(int32(l))
}

func Enabled(l Level) bool {
	return int32(l) >= current.Load()
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

func logf(l Level, format string, args ...interface{}) {
	if !Enabled(l) {
		return
	}
	log.Printf("["+l.String()+"] "+format, args...)
}

// Logf writes at a level chosen at runtime.
func Logf(l Level, format string, args ...interface{}) { logf(l, format, args...) }

func Debugf(format string, args ...interface{}) { logf(LevelDebug, format, args...) }
func Infof(format string, args ...interface{})  { logf(LevelInfo, format, args...) }
func Warnf(format string, args ...interface{})  { logf(LevelWarn, format, args...) }
func Errorf(format string, args ...interface{}) { logf(LevelError, format, args...) }
