package service

import (
	"context"
	"time"

	"chamberctl/internal/models"
)

type MonitoringService struct {
	dev    Device
	mirror *programMirror
	loops  []int
}

func NewMonitoringService(dev Device, mirror *programMirror, loops []int) *MonitoringService {
	return &MonitoringService{dev: dev, mirror: mirror, loops: loops}
}

// Snapshot queries PV and SP for every configured loop and combines them
// with the locally held units, selected profile and mirrored program state.
// Loop values stay raw response text; the service converts nothing.
func (s *MonitoringService) Snapshot(ctx context.Context) (models.ChamberStatus, error) {
	st := models.ChamberStatus{
		Units:           string(s.dev.Units()),
		SelectedProfile: s.dev.SelectedProfile(),
		ProgramState:    s.mirror.current(),
		UpdatedAt:       time.Now().UTC(),
	}
	for _, loop := range s.loops {
		pv, err := s.dev.ProcessValue(loop)
		if err != nil {
			return models.ChamberStatus{}, err
		}
		sp, err := s.dev.SetPointValue(loop)
		if err != nil {
			return models.ChamberStatus{}, err
		}
		st.Loops = append(st.Loops, models.LoopStatus{Loop: loop, ProcessValue: pv, SetPoint: sp})
	}
	return st, nil
}

// Units probes the device for its current temperature unit. The probe also
// refreshes the unit the snapshot reports.
func (s *MonitoringService) Units(ctx context.Context) (string, error) {
	u, err := s.dev.GetUnits()
	if err != nil {
		return "", err
	}
	return string(u), nil
}

// ProcessValue passes through a single loop's PV query.
func (s *MonitoringService) ProcessValue(ctx context.Context, loop int) (string, error) {
	return s.dev.ProcessValue(loop)
}

// SetPointValue passes through a single loop's SP query.
func (s *MonitoringService) SetPointValue(ctx context.Context, loop int) (string, error) {
	return s.dev.SetPointValue(loop)
}

// CascadeSetPoint reads a cascade pair's set point.
func (s *MonitoringService) CascadeSetPoint(ctx context.Context, cascade int) (string, error) {
	return s.dev.CascadeSetPoint(cascade)
}

// CascadeLoopValues reads PV and SP of one half of a cascade pair.
func (s *MonitoringService) CascadeLoopValues(ctx context.Context, cascade int, outer bool) (string, string, error) {
	pv, err := s.dev.CascadeLoopProcessValue(outer, cascade)
	if err != nil {
		return "", "", err
	}
	sp, err := s.dev.CascadeLoopSetPoint(outer, cascade)
	if err != nil {
		return "", "", err
	}
	return pv, sp, nil
}
