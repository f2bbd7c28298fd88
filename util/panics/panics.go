package panics

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/FranklinWaller/Rutile/infrastructure/logger"
)

// exitTimeout bounds how long Exit waits for the log to be flushed
const exitTimeout = 5 * time.Second

// HandlePanic is meant to be deferred. It recovers a panic, logs it along
// with the stack of the panicking goroutine and, if given, the stack of
// the code that spawned it, and exits the process.
func HandlePanic(log *logger.Logger, goroutineName string, spawnStackTrace []byte) {
	err := recover()
	if err == nil {
		return
	}
	exit(log, fmt.Sprintf("Fatal error in goroutine `%s`: %+v", goroutineName, err),
		debug.Stack(), spawnStackTrace)
}

// GoroutineWrapperFunc returns a spawn function for log. Goroutines started
// with it log their start and end, and a panic in them ends the process
// through HandlePanic.
func GoroutineWrapperFunc(log *logger.Logger) func(name string, spawnedFunction func()) {
	return func(name string, spawnedFunction func()) {
		spawnStackTrace := debug.Stack()
		go func() {
			log.Tracef("Started goroutine `%s`", name)
			defer log.Tracef("Ended goroutine `%s`", name)
			defer HandlePanic(log, name, spawnStackTrace)
			spawnedFunction()
		}()
	}
}

// Exit logs reason at critical level, flushes the log and exits with
// status 1
func Exit(log *logger.Logger, reason string) {
	exit(log, reason, nil, nil)
}

func exit(log *logger.Logger, reason string, stackTrace []byte, spawnStackTrace []byte) {
	flushed := make(chan struct{})
	go func() {
		defer close(flushed)
		log.Criticalf("Exiting: %s", reason)
		if spawnStackTrace != nil {
			log.Criticalf("Spawned from: %s", spawnStackTrace)
		}
		if stackTrace != nil {
			log.Criticalf("Stack trace: %s", stackTrace)
		}
		if log.Backend().IsRunning() {
			log.Backend().Close()
		}
	}()

	select {
	case <-flushed:
	case <-time.After(exitTimeout):
		fmt.Fprintln(os.Stderr, "Timed out flushing the log before exiting")
	}
	os.Exit(1)
}
