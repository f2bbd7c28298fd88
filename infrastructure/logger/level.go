package logger

import "strings"

// Level is the level at which a logger is configured. Messages below the
// configured level are dropped.
type Level uint32

// Levels, from the most to the least verbose
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
	LevelOff
)

// levelTags are the tags written in front of every log line of a level
var levelTags = [...]string{"TRC", "DBG", "INF", "WRN", "ERR", "CRT", "OFF"}

var levelNames = map[string]Level{
	"trace":    LevelTrace,
	"debug":    LevelDebug,
	"info":     LevelInfo,
	"warn":     LevelWarn,
	"error":    LevelError,
	"critical": LevelCritical,
	"off":      LevelOff,
}

// LevelFromString parses a level from either its name ("debug") or its
// tag ("DBG"), ignoring case. It returns LevelInfo and false when s is
// neither.
func LevelFromString(s string) (Level, bool) {
	s = strings.ToLower(s)
	if level, ok := levelNames[s]; ok {
		return level, true
	}
	for level, tag := range levelTags {
		if strings.ToLower(tag) == s {
			return Level(level), true
		}
	}
	return LevelInfo, false
}

// String returns the tag of the level, or "OFF" for any level at or above
// LevelOff
func (l Level) String() string {
	if l >= LevelOff {
		return "OFF"
	}
	return levelTags[l]
}
