package logger

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// BackendLog is the logging backend used to create all subsystem loggers.
var BackendLog = NewBackend()

var (
	subsystemLoggers     = make(map[string]*Logger)
	subsystemLoggersLock sync.Mutex
)

// RegisterSubSystem returns the logger for the given subsystem tag, creating
// it on first use. Every package registers its own tag through its log.go.
func RegisterSubSystem(subsystem string) *Logger {
	subsystemLoggersLock.Lock()
	defer subsystemLoggersLock.Unlock()

	logger, exists := subsystemLoggers[subsystem]
	if !exists {
		logger = BackendLog.Logger(subsystem)
		subsystemLoggers[subsystem] = logger
	}
	return logger
}

// InitLog attaches log file and error log file to the backend log, mirrors
// info and above to stdout and starts the backend.
func InitLog(logFile, errLogFile string) {
	err := BackendLog.AddLogFile(logFile, LevelTrace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding log file %s as log rotator for level %s: %s", logFile, LevelTrace, err)
		os.Exit(1)
	}
	err = BackendLog.AddLogFile(errLogFile, LevelWarn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding log file %s as log rotator for level %s: %s", errLogFile, LevelWarn, err)
		os.Exit(1)
	}
	err = BackendLog.AddStdout(LevelInfo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding stdout to the logger for level %s: %s", LevelInfo, err)
		os.Exit(1)
	}
	err = BackendLog.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting the logger: %s ", err)
		os.Exit(1)
	}
}

// SetLogLevel sets the logging level for provided subsystem. Invalid
// subsystems are ignored.
func SetLogLevel(subsystemID string, logLevel string) {
	subsystemLoggersLock.Lock()
	defer subsystemLoggersLock.Unlock()

	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}
	level, _ := LevelFromString(logLevel)
	logger.SetLevel(level)
}

// SetLogLevels sets the log level for all subsystem loggers to the passed
// level.
func SetLogLevels(logLevel string) error {
	level, ok := LevelFromString(logLevel)
	if !ok {
		return errors.Errorf("invalid log level %s", logLevel)
	}

	subsystemLoggersLock.Lock()
	defer subsystemLoggersLock.Unlock()
	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}
	return nil
}

// SupportedSubsystems returns a sorted slice of the supported subsystems for
// logging purposes.
func SupportedSubsystems() []string {
	subsystemLoggersLock.Lock()
	defer subsystemLoggersLock.Unlock()

	subsystems := make([]string, 0, len(subsystemLoggers))
	for subsysID := range subsystemLoggers {
		subsystems = append(subsystems, subsysID)
	}
	sort.Strings(subsystems)
	return subsystems
}

// ParseAndSetLogLevels attempts to parse the specified debug level and set
// the levels accordingly. It accepts either a single global level
// ("debug") or a comma separated list of subsystem=level pairs
// ("CNSS=debug,MLST=trace").
func ParseAndSetLogLevels(logLevel string) error {
	if !strings.Contains(logLevel, ",") && !strings.Contains(logLevel, "=") {
		return SetLogLevels(logLevel)
	}

	for _, logLevelPair := range strings.Split(logLevel, ",") {
		if !strings.Contains(logLevelPair, "=") {
			return errors.Errorf("the specified debug level contains an invalid "+
				"subsystem/level pair [%s]", logLevelPair)
		}

		fields := strings.Split(logLevelPair, "=")
		subsysID, levelStr := fields[0], fields[1]

		subsystemLoggersLock.Lock()
		_, exists := subsystemLoggers[subsysID]
		subsystemLoggersLock.Unlock()
		if !exists {
			return errors.Errorf("the specified subsystem [%s] is invalid -- "+
				"supported subsystems %s", subsysID, strings.Join(SupportedSubsystems(), ", "))
		}

		if _, ok := LevelFromString(levelStr); !ok {
			return errors.Errorf("the specified debug level [%s] is invalid", levelStr)
		}

		SetLogLevel(subsysID, levelStr)
	}
	return nil
}
