package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	migrate "github.com/rubenv/sql-migrate"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/juho05/log"

	"github.com/restoka/closing"
	"github.com/restoka/closing/config"
	"github.com/restoka/closing/repos"
)

type DB struct {
	db *sql.DB
}

func autoMigrate(db *sql.DB) error {
	migrations := &migrate.HttpFileSystemMigrationSource{
		FileSystem: http.FS(closing.SQLiteMigrationsFS),
	}
	log.Trace("Migrating database...")
	n, err := migrate.Exec(db, "sqlite3", migrations, migrate.Up)
	if err != nil {
		return err
	}
	log.Tracef("Applied %d migrations!", n)
	return nil
}

func Connect(connectionString string) (repos.DB, error) {
	db, err := sql.Open("sqlite", connectionString)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	_, err = db.Exec("PRAGMA foreign_keys = 1")
	if err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	_, err = db.Exec("PRAGMA busy_timeout = 3000")
	if err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if config.AutoMigrate() {
		err = autoMigrate(db)
		if err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}

	return &DB{
		db: db,
	}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func repoErr(format string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		err = repos.ErrNoRecord
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && (sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY) {
		err = repos.ErrExists
	}
	return fmt.Errorf(format, err)
}
