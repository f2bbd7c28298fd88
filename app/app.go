package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/FranklinWaller/Rutile/infrastructure/config"
	"github.com/FranklinWaller/Rutile/infrastructure/db/database"
	"github.com/FranklinWaller/Rutile/infrastructure/db/database/ldb"
	"github.com/FranklinWaller/Rutile/infrastructure/logger"
	"github.com/FranklinWaller/Rutile/infrastructure/os/signal"
	"github.com/FranklinWaller/Rutile/util/panics"
	"github.com/FranklinWaller/Rutile/util/profiling"
	"github.com/FranklinWaller/Rutile/version"
	"github.com/pkg/errors"
)

const leveldbCacheSizeMiB = 256

const databaseDirName = "database"

type rutiledApp struct {
	cfg *config.Config
}

// StartApp starts the rutiled app, and blocks until it finishes running
func StartApp() error {
	// Load configuration and parse command line.
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", logger.SupportedSubsystems())
		return nil
	}

	// Initialize log rotation. After log rotation has been initialized, the
	// logger variables may be used.
	logger.InitLog(cfg.LogFile(), cfg.ErrLogFile())
	defer logger.BackendLog.Close()
	defer panics.HandlePanic(log, "MAIN", nil)

	err = logger.ParseAndSetLogLevels(cfg.DebugLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	// Get a channel that will be closed when a shutdown signal has been
	// triggered from an OS signal such as SIGINT (Ctrl+C).
	interrupt := signal.InterruptListener()

	app := &rutiledApp{cfg: cfg}
	return app.main(interrupt, nil)
}

// main runs the node until interrupt is closed. startedChan, if not nil, is
// signalled once all the services are running.
func (app *rutiledApp) main(interrupt <-chan struct{}, startedChan chan<- struct{}) error {
	defer log.Info("Shutdown complete")

	// Show version at startup.
	log.Infof("Version %s", version.Version())
	log.Infof("Running a %s node on %s", app.cfg.Role, app.cfg.NetParams().Name)

	// Enable http profiling server if requested.
	if app.cfg.Profile != "" {
		profiling.Start(app.cfg.Profile, log)
	}

	// Return now if an interrupt signal was triggered.
	if signal.InterruptRequested(interrupt) {
		return nil
	}

	// Open the database
	databaseContext, err := openDB(app.cfg)
	if err != nil {
		log.Errorf("Loading database failed: %+v", err)
		return err
	}

	defer func() {
		log.Infof("Gracefully shutting down the database...")
		err := databaseContext.Close()
		if err != nil {
			log.Errorf("Failed to close the database: %s", err)
		}
	}()

	// Return now if an interrupt signal was triggered.
	if signal.InterruptRequested(interrupt) {
		return nil
	}

	componentManager, err := NewComponentManager(app.cfg, databaseContext)
	if err != nil {
		log.Errorf("Unable to start rutiled: %+v", err)
		return err
	}

	defer func() {
		log.Infof("Gracefully shutting down rutiled...")

		shutdownDone := make(chan struct{})
		spawn("app.main-componentManager.Stop", func() {
			componentManager.Stop()
			shutdownDone <- struct{}{}
		})

		const shutdownTimeout = 2 * time.Minute
		select {
		case <-shutdownDone:
		case <-time.After(shutdownTimeout):
			log.Criticalf("Graceful shutdown timed out %s. Terminating...", shutdownTimeout)
		}
		log.Infof("Rutiled shutdown complete")
	}()

	err = componentManager.Start()
	if err != nil {
		panics.Exit(log, fmt.Sprintf("Error starting rutiled: %+v", err))
	}
	if startedChan != nil {
		startedChan <- struct{}{}
	}

	// Wait until the interrupt signal is received
	<-interrupt
	return nil
}

func databasePath(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, databaseDirName)
}

func openDB(cfg *config.Config) (database.Database, error) {
	dbPath := databasePath(cfg)

	err := os.MkdirAll(dbPath, 0700)
	if err != nil {
		return nil, errors.Wrapf(err, "error creating the database directory %s", dbPath)
	}
	isVersionFileExists, err := checkDatabaseVersion(dbPath)
	if err != nil {
		return nil, err
	}

	log.Infof("Loading database from '%s'", dbPath)
	db, err := ldb.NewLevelDB(dbPath, leveldbCacheSizeMiB)
	if err != nil {
		return nil, err
	}

	if !isVersionFileExists {
		err := createDatabaseVersionFile(dbPath)
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}
