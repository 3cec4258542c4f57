package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/restoka/closing/repos"
)

type sessionRepository struct {
	db *sql.DB
}

func (db *DB) NewSessionRepository() repos.SessionRepository {
	return &sessionRepository{
		db: db.db,
	}
}

func (s *sessionRepository) Delete(token string) error {
	return s.DeleteCtx(context.Background(), token)
}

func (s *sessionRepository) Find(token string) ([]byte, bool, error) {
	return s.FindCtx(context.Background(), token)
}

func (s *sessionRepository) Commit(token string, b []byte, expiry time.Time) error {
	return s.CommitCtx(context.Background(), token, b, expiry)
}

func (s *sessionRepository) DeleteCtx(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token)
	return repoErr("delete session: %w", err)
}

func (s *sessionRepository) FindCtx(ctx context.Context, token string) ([]byte, bool, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM sessions WHERE token = ? AND expires > ?", token, time.Now().Unix()).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, repoErr("find session: %w", err)
	}
	return data, true, nil
}

func (s *sessionRepository) CommitCtx(ctx context.Context, token string, data []byte, expires time.Time) error {
	_, err := s.db.ExecContext(ctx, "REPLACE INTO sessions (token, data, expires) VALUES (?,?,?)", token, data, expires.Unix())
	return repoErr("commit session: %w", err)
}
