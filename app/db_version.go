package app

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const currentDatabaseVersion = 1

// checkDatabaseVersion returns whether dbPath carries a version file, and an
// error if the version it records is not currentDatabaseVersion
func checkDatabaseVersion(dbPath string) (doesVersionFileExist bool, err error) {
	versionBytes, err := os.ReadFile(versionFilePath(dbPath))
	if err != nil {
		if os.IsNotExist(err) { // If version file doesn't exist, we assume that the database is new
			return false, nil
		}
		return false, errors.WithStack(err)
	}

	databaseVersion, err := strconv.Atoi(strings.TrimSpace(string(versionBytes)))
	if err != nil {
		return true, errors.Wrapf(err, "malformed database version file")
	}

	if databaseVersion != currentDatabaseVersion {
		return true, errors.Errorf("Invalid database version %d. Expected version: %d",
			databaseVersion, currentDatabaseVersion)
	}

	return true, nil
}

func createDatabaseVersionFile(dbPath string) error {
	versionString := strconv.Itoa(currentDatabaseVersion)
	return errors.WithStack(os.WriteFile(versionFilePath(dbPath), []byte(versionString), 0600))
}

func versionFilePath(dbPath string) string {
	return filepath.Join(dbPath, "version")
}
