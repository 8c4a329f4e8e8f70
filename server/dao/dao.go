// Package dao provides data access objects for use in the lensd server.
package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrConstraintViolation = errors.New("a uniqueness constraint was violated")
	ErrNotFound            = errors.New("the requested resource was not found")
	ErrDecodingFailure     = errors.New("field could not be decoded from DB storage format to model format")
)

// Store holds the repositories lensd needs to persist its state.
type Store interface {
	Sessions() SessionRepository
	Close() error
}

// SessionRepository persists Sessions.
type SessionRepository interface {
	Create(ctx context.Context, sesh Session) (Session, error)
	GetByID(ctx context.Context, id uuid.UUID) (Session, error)
	GetAll(ctx context.Context) ([]Session, error)
	Update(ctx context.Context, id uuid.UUID, sesh Session) (Session, error)
	Delete(ctx context.Context, id uuid.UUID) (Session, error)
	Close() error
}

// Session is a saved lens session: which named lens it was opened against,
// the text it was last woven against, and the JSON encoding of the model a
// client is free to edit between a Get and the Put that follows it.
type Session struct {
	ID           uuid.UUID
	LensName     string
	OriginalText string
	ModelJSON    []byte
	Created      time.Time
	Updated      time.Time
}
