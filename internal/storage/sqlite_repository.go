package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	return &SQLiteRepository{db: db, now: time.Now}, nil
}

// OpenSQLite opens path, creating its directory, and applies migrations.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveSession(ctx context.Context, in Session) error {
	if in.Name == "" {
		in.Name = DefaultSessionName
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = r.now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (name, token, api_url, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			token = excluded.token,
			api_url = excluded.api_url,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at`,
		in.Name, in.Token, in.APIURL, mustTime(in.ExpiresAt), mustTime(in.CreatedAt),
	)
	return err
}

// LoadSession returns ErrNotFound for a missing or expired session. Expired
// rows are removed.
func (r *SQLiteRepository) LoadSession(ctx context.Context, name string) (Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT name, token, api_url, expires_at, created_at
		FROM sessions WHERE name = ?`, name)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	if s.Expired(r.now()) {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE name = ?`, name); err != nil {
			return Session{}, err
		}
		return Session{}, ErrNotFound
	}
	return s, nil
}

// DeleteSession is a no-op for a missing session.
func (r *SQLiteRepository) DeleteSession(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE name = ?`, name)
	return err
}

// GetSetting returns "" for an unset key.
func (r *SQLiteRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(s scanner) (Session, error) {
	var out Session
	var expires, created string
	if err := s.Scan(&out.Name, &out.Token, &out.APIURL, &expires, &created); err != nil {
		return Session{}, err
	}
	expiresAt, err := parseRequiredTime(expires)
	if err != nil {
		return Session{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Session{}, err
	}
	out.ExpiresAt = expiresAt
	out.CreatedAt = createdAt
	return out, nil
}
