package service

import (
	"context"
	"fmt"
	"time"

	"chamberctl/internal/models"
	"chamberctl/internal/repository"

	"github.com/google/uuid"
)

// ProfilesService owns access to the device's profile registry cache.
type ProfilesService struct {
	dev       Device
	eventRepo repository.EventRepo
}

func NewProfilesService(dev Device, eventRepo repository.EventRepo) *ProfilesService {
	return &ProfilesService{dev: dev, eventRepo: eventRepo}
}

// Refresh walks the device's profile slots and rebuilds the registry. The
// walk settles between commands and can take tens of seconds on a full
// device; it runs only on explicit request, never behind the caller's back.
func (s *ProfilesService) Refresh(ctx context.Context) ([]models.ProfileEntry, error) {
	if err := s.dev.EnumerateProfiles(); err != nil {
		return nil, err
	}
	entries := s.List(ctx)
	_ = s.eventRepo.Append(ctx, models.ChamberEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        EventProfile,
		Description: fmt.Sprintf("Enumerated %d profiles", len(entries)),
		Metadata:    map[string]any{"count": len(entries)},
	})
	return entries, nil
}

// List returns the cached registry in discovery order.
func (s *ProfilesService) List(ctx context.Context) []models.ProfileEntry {
	src := s.dev.Profiles()
	out := make([]models.ProfileEntry, 0, len(src))
	for _, p := range src {
		out = append(out, models.ProfileEntry{Number: p.Number, Name: p.Name})
	}
	return out
}
