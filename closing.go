package closing

import (
	"embed"
	"io/fs"
	"time"

	"github.com/juho05/log"
)

//go:embed migrations/sqlite
var sqliteMigrationsFS embed.FS

//go:embed migrations/postgres
var postgresMigrationsFS embed.FS

var (
	SQLiteMigrationsFS   fs.FS
	PostgresMigrationsFS fs.FS
)

var StartTime time.Time

func Initialize() {
	StartTime = time.Now()
	var err error
	SQLiteMigrationsFS, err = fs.Sub(sqliteMigrationsFS, "migrations/sqlite")
	if err != nil {
		log.Fatal(err)
	}
	PostgresMigrationsFS, err = fs.Sub(postgresMigrationsFS, "migrations/postgres")
	if err != nil {
		log.Fatal(err)
	}
}
