package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	migrate "github.com/rubenv/sql-migrate"

	"github.com/juho05/log"

	"github.com/restoka/closing"
	"github.com/restoka/closing/config"
	"github.com/restoka/closing/repos"
)

type DB struct {
	pool *pgxpool.Pool
}

func autoMigrate(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	defer db.Close()
	migrations := &migrate.HttpFileSystemMigrationSource{
		FileSystem: http.FS(closing.PostgresMigrationsFS),
	}
	log.Trace("Migrating database...")
	n, err := migrate.Exec(db, "postgres", migrations, migrate.Up)
	if err != nil {
		return err
	}
	log.Tracef("Applied %d migrations!", n)
	return nil
}

func Connect(dsn string) (repos.DB, error) {
	log.Trace("Connecting to Postgres database...")
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("connect DB: %w", err)
	}
	if config.AutoMigrate() {
		err = autoMigrate(dsn)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}
	return &DB{
		pool: pool,
	}, nil
}

func (d *DB) Close() error {
	d.pool.Close()
	return nil
}

func repoErr(format string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		err = repos.ErrNoRecord
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		err = repos.ErrExists
	}
	return fmt.Errorf(format, err)
}
