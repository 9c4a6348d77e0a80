package repository

import (
	"context"
	"database/sql"
	"time"

	"chamberctl/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// ReadingRepo persists telemetry samples collected by the poller.
type ReadingRepo interface {
	Append(ctx context.Context, r models.ChamberReading) error
	List(ctx context.Context, from, to time.Time, loop int) ([]models.ChamberReading, error)
}

// EventRepo is the append-only actuation/event log.
type EventRepo interface {
	Append(ctx context.Context, e models.ChamberEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.ChamberEvent, error)
}

type Repository struct {
	ReadingRepo ReadingRepo
	EventRepo   EventRepo
	Auth        Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		ReadingRepo: NewReadingSQLite(db),
		EventRepo:   NewEventSQLite(db),
		Auth:        NewUserRepository(db),
	}
}
