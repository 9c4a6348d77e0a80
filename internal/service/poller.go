package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"chamberctl/internal/logger"
	"chamberctl/internal/models"
	"chamberctl/internal/mqtt"
	"chamberctl/internal/repository"

	"github.com/google/uuid"
)

const defaultTelemetryTopic = "chamberctl/telemetry"

// PollerService samples the chamber in the background: each tick it reads PV
// and SP for every configured loop, persists the readings and publishes them
// over MQTT. A failed tick is logged and skipped; the next tick is a fresh
// attempt, which is the only retry policy anywhere in the system.
type PollerService struct {
	dev         Device
	readingRepo repository.ReadingRepo
	pub         mqtt.Publisher
	log         *logger.Logger
	loops       []int
	topic       string
}

func NewPollerService(dev Device, readingRepo repository.ReadingRepo, pub mqtt.Publisher, log *logger.Logger, loops []int, topic string) *PollerService {
	if topic == "" {
		topic = defaultTelemetryTopic
	}
	return &PollerService{
		dev:         dev,
		readingRepo: readingRepo,
		pub:         pub,
		log:         log,
		loops:       loops,
		topic:       topic,
	}
}

// Run ticks at the given interval until ctx is canceled.
func (s *PollerService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.sample(ctx, now.UTC())
		}
	}
}

// sample takes one reading per loop. Device and parse failures abandon the
// tick for that loop only.
func (s *PollerService) sample(ctx context.Context, now time.Time) {
	units := string(s.dev.Units())
	for _, loop := range s.loops {
		pvText, err := s.dev.ProcessValue(loop)
		if err != nil {
			s.warn("poll_pv_failed", "loop", loop, "err", err)
			continue
		}
		spText, err := s.dev.SetPointValue(loop)
		if err != nil {
			s.warn("poll_sp_failed", "loop", loop, "err", err)
			continue
		}
		pv, err := strconv.ParseFloat(pvText, 64)
		if err != nil {
			s.warn("poll_pv_not_numeric", "loop", loop, "raw", pvText)
			continue
		}
		sp, err := strconv.ParseFloat(spText, 64)
		if err != nil {
			s.warn("poll_sp_not_numeric", "loop", loop, "raw", spText)
			continue
		}

		reading := models.ChamberReading{
			ID:           uuid.NewString(),
			TakenAt:      now,
			Loop:         loop,
			ProcessValue: pv,
			SetPoint:     sp,
			Units:        units,
		}
		if err := s.readingRepo.Append(ctx, reading); err != nil {
			s.warn("poll_persist_failed", "loop", loop, "err", err)
		}
		if b, err := json.Marshal(reading); err == nil {
			if err := s.pub.Publish(s.topic, b); err != nil {
				s.warn("poll_publish_failed", "loop", loop, "err", err)
			}
		}
	}
}

func (s *PollerService) warn(msg string, kv ...any) {
	if s.log != nil {
		s.log.Warnw(msg, kv...)
	}
}
