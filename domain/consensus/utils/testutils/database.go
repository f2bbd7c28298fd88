package testutils

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/FranklinWaller/Rutile/domain/consensus/database"
	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/infrastructure/db/database/ldb"
)

// NewTestDatabase opens a leveldb database in a fresh temporary directory.
// The returned teardown closes the database and removes the directory.
func NewTestDatabase(t *testing.T, testName string) (dbManager model.DBManager, teardown func()) {
	path, err := ioutil.TempDir("", testName)
	if err != nil {
		t.Fatalf("%s: TempDir unexpectedly failed: %s", testName, err)
	}
	db, err := ldb.NewLevelDB(path, 8)
	if err != nil {
		t.Fatalf("%s: NewLevelDB unexpectedly failed: %s", testName, err)
	}

	teardown = func() {
		err := db.Close()
		if err != nil {
			t.Fatalf("%s: Close unexpectedly failed: %s", testName, err)
		}
		os.RemoveAll(path)
	}
	return database.New(db), teardown
}
