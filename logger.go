package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/fatih/color"
)

// LogLevel enumerates severity tiers.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelTags = map[LogLevel]string{
	LevelDebug: color.New(color.FgCyan).Sprint("DEBUG"),
	LevelInfo:  color.New(color.FgGreen).Sprint("INFO"),
	LevelWarn:  color.New(color.FgYellow).Sprint("WARN"),
	LevelError: color.New(color.FgRed, color.Bold).Sprint("ERROR"),
}

// Logger is a small leveled logger shared by the UI, the sampler and the CLI.
type Logger struct {
	mu       sync.Mutex
	minLevel LogLevel
	inner    *log.Logger
}

func NewLogger(out io.Writer, minLevel LogLevel) *Logger {
	return &Logger{
		minLevel: minLevel,
		inner:    log.New(out, "", log.Ldate|log.Ltime),
	}
}

var defaultLogger = NewLogger(os.Stderr, LevelInfo)

// SetLevel changes the minimum level that gets written.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
}

func (l *Logger) logf(level LogLevel, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.minLevel {
		return
	}
	l.inner.Printf("[%s] %s", levelTags[level], fmt.Sprintf(format, args...))
}

func (l *Logger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }
