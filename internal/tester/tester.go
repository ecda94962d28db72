package tester

import (
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/emrgen/docrepo/internal/blob"
	"github.com/emrgen/docrepo/internal/model"
	"github.com/emrgen/docrepo/internal/search"
)

const (
	testPath = "../../.test/db/"
)

var (
	db *gorm.DB
)

// dbFile is named after the test binary so test packages running in
// parallel do not share a database file.
func dbFile() string {
	return testPath + filepath.Base(os.Args[0]) + ".db"
}

func Setup() {
	RemoveDBFile()

	_ = os.Setenv("ENV", "test")

	err := os.MkdirAll(testPath, os.ModePerm)
	if err != nil {
		panic(err)
	}

	db, err = gorm.Open(sqlite.Open(dbFile()), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	err = model.Migrate(db)
	if err != nil {
		panic(err)
	}
}

func TestDB() *gorm.DB {
	return db
}

func RemoveDBFile() {
	err := os.RemoveAll(dbFile())
	if err != nil {
		panic(err)
	}
}

func Blobs() *blob.MemoryStore {
	return blob.NewMemoryStore()
}

func Indexer() *search.MemoryIndexer {
	return search.NewMemoryIndexer()
}
