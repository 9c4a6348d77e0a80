package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"chamberctl/internal/models"

	"github.com/google/uuid"
)

type ReadingSQLite struct {
	db *sql.DB
}

func NewReadingSQLite(db *sql.DB) *ReadingSQLite { return &ReadingSQLite{db: db} }

// Ensure implementation of ReadingRepo interface at compile time.
var _ ReadingRepo = (*ReadingSQLite)(nil)

const (
	insertReadingSQL = `
		INSERT INTO chamber_readings (id, taken_at, loop, process_value, set_point, units)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	selectReadingsSQL = `SELECT id, taken_at, loop, process_value, set_point, units FROM chamber_readings`
)

// Append inserts a new reading. If ID or TakenAt are empty, they're set.
func (r *ReadingSQLite) Append(ctx context.Context, reading models.ChamberReading) error {
	if reading.ID == "" {
		reading.ID = uuid.NewString()
	}
	if reading.TakenAt.IsZero() {
		reading.TakenAt = time.Now().UTC()
	} else {
		reading.TakenAt = reading.TakenAt.UTC()
	}

	_, err := r.db.ExecContext(ctx, insertReadingSQL,
		reading.ID,
		reading.TakenAt.Format("2006-01-02 15:04:05"),
		reading.Loop,
		reading.ProcessValue,
		reading.SetPoint,
		reading.Units,
	)
	return err
}

// List returns readings filtered by [from, to] (inclusive) and/or loop,
// ordered ASC by sample time. loop <= 0 matches all loops.
func (r *ReadingSQLite) List(ctx context.Context, from, to time.Time, loop int) ([]models.ChamberReading, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "taken_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "taken_at <= ?")
		args = append(args, to.UTC())
	}
	if loop > 0 {
		conds = append(conds, "loop = ?")
		args = append(args, loop)
	}

	q := selectReadingsSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY taken_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ChamberReading, 0, 64)
	for rows.Next() {
		var rd models.ChamberReading
		if err := rows.Scan(&rd.ID, &rd.TakenAt, &rd.Loop, &rd.ProcessValue, &rd.SetPoint, &rd.Units); err != nil {
			return nil, err
		}
		rd.TakenAt = rd.TakenAt.UTC()
		out = append(out, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
