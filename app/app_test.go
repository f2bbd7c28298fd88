package app

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/FranklinWaller/Rutile/infrastructure/config"
)

func prepareConfig(t *testing.T, testName string, dataDir string) *config.Config {
	cfg, err := config.LoadConfig([]string{
		"--configfile", filepath.Join(dataDir, "missing.conf"),
		"--datadir", dataDir,
		"--logdir", dataDir,
		"--devnet",
		"--role", "light",
		"--blockinterval", "50ms",
	})
	if err != nil {
		t.Fatalf("%s: LoadConfig: %s", testName, err)
	}
	return cfg
}

func runApp(t *testing.T, testName string, cfg *config.Config) {
	interrupt := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error)
	app := &rutiledApp{cfg: cfg}
	go func() {
		done <- app.main(interrupt, started)
	}()

	select {
	case <-started:
	case err := <-done:
		t.Fatalf("%s: the app stopped before it started: %v", testName, err)
	case <-time.After(30 * time.Second):
		t.Fatalf("%s: the app did not start", testName)
	}

	close(interrupt)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("%s: main: %s", testName, err)
		}
	case <-time.After(30 * time.Second):
		t.Fatalf("%s: the app did not shut down", testName)
	}
}

func TestAppRunsAndRestarts(t *testing.T) {
	dataDir, err := ioutil.TempDir("", "TestAppRunsAndRestarts")
	if err != nil {
		t.Fatalf("TestAppRunsAndRestarts: TempDir: %s", err)
	}
	defer os.RemoveAll(dataDir)

	cfg := prepareConfig(t, "TestAppRunsAndRestarts", dataDir)
	runApp(t, "TestAppRunsAndRestarts", cfg)

	exists, err := checkDatabaseVersion(databasePath(cfg))
	if err != nil || !exists {
		t.Fatalf("TestAppRunsAndRestarts: the database version file was not written: %t, %v", exists, err)
	}

	// The second run opens the database the first one created
	runApp(t, "TestAppRunsAndRestarts", cfg)
}

func TestDatabaseVersion(t *testing.T) {
	dbPath, err := ioutil.TempDir("", "TestDatabaseVersion")
	if err != nil {
		t.Fatalf("TestDatabaseVersion: TempDir: %s", err)
	}
	defer os.RemoveAll(dbPath)

	exists, err := checkDatabaseVersion(dbPath)
	if err != nil || exists {
		t.Fatalf("TestDatabaseVersion: a new database has a version file: %t, %v", exists, err)
	}

	err = createDatabaseVersionFile(dbPath)
	if err != nil {
		t.Fatalf("TestDatabaseVersion: createDatabaseVersionFile: %s", err)
	}
	exists, err = checkDatabaseVersion(dbPath)
	if err != nil || !exists {
		t.Fatalf("TestDatabaseVersion: checkDatabaseVersion: %t, %v", exists, err)
	}

	for _, content := range []string{"2", "not a number"} {
		err = ioutil.WriteFile(versionFilePath(dbPath), []byte(content), 0600)
		if err != nil {
			t.Fatalf("TestDatabaseVersion: WriteFile: %s", err)
		}
		_, err = checkDatabaseVersion(dbPath)
		if err == nil {
			t.Fatalf("TestDatabaseVersion: version file %q was accepted", content)
		}
	}
}
