package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

type Repository interface {
	SaveSession(ctx context.Context, in Session) error
	LoadSession(ctx context.Context, name string) (Session, error)
	DeleteSession(ctx context.Context, name string) error

	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}
