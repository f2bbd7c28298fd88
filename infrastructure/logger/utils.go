package logger

import (
	"time"
)

// LogAndMeasureExecutionTime writes a debug entry when name starts and
// returns a func that writes a second one with the elapsed time.
// It is used as:
//
//	onEnd := logger.LogAndMeasureExecutionTime(log, "walk")
//	defer onEnd()
func LogAndMeasureExecutionTime(log *Logger, name string) (onEnd func()) {
	start := time.Now()
	log.Debugf("%s start", name)
	return func() {
		log.Debugf("%s end. Took: %s", name, time.Since(start))
	}
}
