package service

import (
	"context"

	"chamberctl/internal/models"
	"chamberctl/internal/repository"
)

type ReadingsService struct {
	readingRepo repository.ReadingRepo
}

func NewReadingsService(readingRepo repository.ReadingRepo) *ReadingsService {
	return &ReadingsService{readingRepo: readingRepo}
}

// History lists persisted telemetry samples for the filter's time range and
// loop selection.
func (s *ReadingsService) History(ctx context.Context, f ReadingFilter) ([]models.ChamberReading, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, errInvalidTimeRange
	}
	return s.readingRepo.List(ctx, from, to, f.Loop)
}
