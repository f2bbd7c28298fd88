package logger

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
)

// Logger is a subsystem logger for a Backend.
type Logger struct {
	level     Level // atomic
	tag       string
	backend   *Backend
	writeChan chan<- logEntry
}

// Trace formats message using the default formats for its operands, prepends
// the prefix as necessary, and writes to log with LevelTrace.
func (l *Logger) Trace(args ...interface{}) {
	l.Write(LevelTrace, args...)
}

// Tracef formats message according to format specifier, prepends the prefix as
// necessary, and writes to log with LevelTrace.
func (l *Logger) Tracef(format string, args ...interface{}) {
	l.Writef(LevelTrace, format, args...)
}

// Debug writes to log with LevelDebug.
func (l *Logger) Debug(args ...interface{}) {
	l.Write(LevelDebug, args...)
}

// Debugf writes a formatted message to log with LevelDebug.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.Writef(LevelDebug, format, args...)
}

// Info writes to log with LevelInfo.
func (l *Logger) Info(args ...interface{}) {
	l.Write(LevelInfo, args...)
}

// Infof writes a formatted message to log with LevelInfo.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Writef(LevelInfo, format, args...)
}

// Warn writes to log with LevelWarn.
func (l *Logger) Warn(args ...interface{}) {
	l.Write(LevelWarn, args...)
}

// Warnf writes a formatted message to log with LevelWarn.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.Writef(LevelWarn, format, args...)
}

// Error writes to log with LevelError.
func (l *Logger) Error(args ...interface{}) {
	l.Write(LevelError, args...)
}

// Errorf writes a formatted message to log with LevelError.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Writef(LevelError, format, args...)
}

// Critical writes to log with LevelCritical.
func (l *Logger) Critical(args ...interface{}) {
	l.Write(LevelCritical, args...)
}

// Criticalf writes a formatted message to log with LevelCritical.
func (l *Logger) Criticalf(format string, args ...interface{}) {
	l.Writef(LevelCritical, format, args...)
}

// Write formats message using the default formats for its operands,
// prepends the prefix as necessary, and writes to log with the given level.
func (l *Logger) Write(logLevel Level, args ...interface{}) {
	if l.Level() > logLevel {
		return
	}
	l.print(logLevel, fmt.Sprint(args...))
}

// Writef formats message according to format specifier, prepends the prefix
// as necessary, and writes to log with the given level.
func (l *Logger) Writef(logLevel Level, format string, args ...interface{}) {
	if l.Level() > logLevel {
		return
	}
	l.print(logLevel, fmt.Sprintf(format, args...))
}

func (l *Logger) print(logLevel Level, message string) {
	if !l.backend.IsRunning() {
		return
	}

	buf := make([]byte, 0, normalLogSize)
	buf = l.appendHeader(buf, logLevel, time.Now())
	buf = append(buf, message...)
	if len(message) == 0 || message[len(message)-1] != '\n' {
		buf = append(buf, '\n')
	}

	l.writeChan <- logEntry{log: buf, level: logLevel}
}

func (l *Logger) appendHeader(buf []byte, logLevel Level, t time.Time) []byte {
	buf = append(buf, t.Format("2006-01-02 15:04:05.000")...)
	buf = append(buf, " ["...)
	buf = append(buf, logLevel.String()...)
	buf = append(buf, "] "...)
	buf = append(buf, l.tag...)

	if l.backend.flag&(LogFlagShortFile|LogFlagLongFile) != 0 {
		file, line := callsite(l.backend.flag)
		buf = append(buf, ' ')
		buf = append(buf, file...)
		buf = append(buf, ':')
		buf = append(buf, fmt.Sprint(line)...)
	}

	return append(buf, ": "...)
}

// callsite returns the file and line of the caller of the exported logging
// method.
func callsite(flag uint32) (string, int) {
	_, file, line, ok := runtime.Caller(5)
	if !ok {
		return "???", 0
	}
	if flag&LogFlagShortFile != 0 {
		if slash := strings.LastIndexByte(file, os.PathSeparator); slash >= 0 {
			file = file[slash+1:]
		}
	}
	return file, line
}

// Level returns the current logging level.
func (l *Logger) Level() Level {
	return Level(atomic.LoadUint32((*uint32)(&l.level)))
}

// SetLevel changes the logging level to the passed level.
func (l *Logger) SetLevel(level Level) {
	atomic.StoreUint32((*uint32)(&l.level), uint32(level))
}

// Backend returns the log backend.
func (l *Logger) Backend() *Backend {
	return l.backend
}
