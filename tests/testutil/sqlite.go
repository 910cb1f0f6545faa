// Package testutil holds helpers shared by the package tests that run
// repositories and handlers against a real SQL schema.
package testutil

import (
	"fmt"
	"io/fs"
	"regexp"
	"sort"

	"github.com/erp/buildledger/migrations"
	"gorm.io/gorm"
)

// SQLiteDSN opens a private in-memory database with foreign keys enforced.
// Callers must cap the pool at one connection so every query sees the same
// database.
const SQLiteDSN = "file::memory:?_foreign_keys=on"

// the sqlite driver only decodes time columns declared as date, datetime or
// timestamp
var timestamptz = regexp.MustCompile(`(?i)\bTIMESTAMPTZ\b`)

// ApplyMigrations runs every embedded up migration, in version order, on a
// sqlite database. The schema is the one the server migrates postgres with;
// only the timestamp type is rewritten.
func ApplyMigrations(db *gorm.DB) error {
	files, err := fs.Glob(migrations.FS, "*.up.sql")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no up migrations embedded")
	}
	sort.Strings(files)
	for _, name := range files {
		body, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return err
		}
		if err := db.Exec(timestamptz.ReplaceAllString(string(body), "TIMESTAMP")).Error; err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}
	return nil
}
