package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chamberctl/internal/f4t"
	"chamberctl/internal/logger"
	"chamberctl/internal/models"
	"chamberctl/internal/repository"

	"github.com/google/uuid"
)

// Event types recorded by the chamber service.
const (
	EventProgram  = "PROGRAM"
	EventProfile  = "PROFILE"
	EventSetPoint = "SETPOINT"
	EventUnits    = "UNITS"
	EventRamp     = "RAMP"
	EventOutput   = "OUTPUT"
)

// ChamberService drives the device and records every actuation in the event
// log. Device failures surface to the caller unmodified; no retries.
type ChamberService struct {
	dev       Device
	eventRepo repository.EventRepo
	mirror    *programMirror
	log       *logger.Logger
}

func NewChamberService(dev Device, eventRepo repository.EventRepo, mirror *programMirror, log *logger.Logger) *ChamberService {
	return &ChamberService{dev: dev, eventRepo: eventRepo, mirror: mirror, log: log}
}

// appendEvent records an actuation. Logging the event must not mask a
// successful actuation, so append failures are only logged.
func (s *ChamberService) appendEvent(ctx context.Context, typ, description string, meta map[string]any) {
	err := s.eventRepo.Append(ctx, models.ChamberEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        typ,
		Description: description,
		Metadata:    meta,
	})
	if err != nil && s.log != nil {
		s.log.Errorw("event_append_failed", "err", err, "type", typ)
	}
}

// Program forwards an execution-state token (start/stop/pause/resume) for
// the selected profile and advances the local mirror. The device decides
// whether the transition applies; the service does not second-guess it.
func (s *ChamberService) Program(ctx context.Context, mode string) error {
	m, err := f4t.ParseProgramMode(mode)
	if err != nil {
		return err
	}
	if err := s.dev.SetProgramMode(m); err != nil {
		return err
	}
	moved := s.mirror.apply(strings.ToLower(string(m)))
	s.appendEvent(ctx, EventProgram, "Program mode "+string(m), map[string]any{
		"mode":           string(m),
		"mirror_moved":   moved,
		"mirrored_state": s.mirror.current(),
	})
	return nil
}

// ProgramState reports the locally mirrored execution state.
func (s *ChamberService) ProgramState() string {
	return s.mirror.current()
}

// SelectProfile makes the given profile number current on the device.
func (s *ChamberService) SelectProfile(ctx context.Context, number int) error {
	if err := s.dev.SelectProfile(number); err != nil {
		return err
	}
	s.appendEvent(ctx, EventProfile, fmt.Sprintf("Selected profile %d", number), map[string]any{
		"number": number,
	})
	return nil
}

// SetSetPoint writes a loop's set point.
func (s *ChamberService) SetSetPoint(ctx context.Context, loop int, value float64) error {
	if err := s.dev.WriteSetPoint(value, loop); err != nil {
		return err
	}
	s.appendEvent(ctx, EventSetPoint, fmt.Sprintf("Set point %.2f on loop %d", value, loop), map[string]any{
		"loop":  loop,
		"value": value,
	})
	return nil
}

// SetCascadeSetPoint writes a cascade pair's set point.
func (s *ChamberService) SetCascadeSetPoint(ctx context.Context, cascade int, value float64) error {
	if err := s.dev.WriteCascadeSetPoint(value, cascade); err != nil {
		return err
	}
	s.appendEvent(ctx, EventSetPoint, fmt.Sprintf("Set point %.2f on cascade %d", value, cascade), map[string]any{
		"cascade": cascade,
		"value":   value,
	})
	return nil
}

// SetUnits applies a temperature unit.
func (s *ChamberService) SetUnits(ctx context.Context, units string) error {
	u, err := f4t.ParseTempUnit(units)
	if err != nil {
		// caller input, not a device reply
		return fmt.Errorf("%w: unknown temperature unit %q", f4t.ErrInvalidArgument, units)
	}
	if err := s.dev.SetUnits(u); err != nil {
		return err
	}
	s.appendEvent(ctx, EventUnits, "Units set to "+string(u), map[string]any{"units": string(u)})
	return nil
}

// SetRampScale sets the ramp time base for a loop. Unrecognized scales fail
// locally; nothing is transmitted.
func (s *ChamberService) SetRampScale(ctx context.Context, loop int, scale string) error {
	sc, err := f4t.ParseRampScale(scale)
	if err != nil {
		return err
	}
	if err := s.dev.SetRampScale(sc, loop); err != nil {
		return err
	}
	s.appendEvent(ctx, EventRamp, fmt.Sprintf("Ramp scale %s on loop %d", sc, loop), map[string]any{
		"loop":  loop,
		"scale": string(sc),
	})
	return nil
}

// SetRampAction selects which set-point transitions ramp on a loop.
func (s *ChamberService) SetRampAction(ctx context.Context, loop int, action string) error {
	a, err := f4t.ParseRampAction(action)
	if err != nil {
		return err
	}
	if err := s.dev.SetRampAction(a, loop); err != nil {
		return err
	}
	s.appendEvent(ctx, EventRamp, fmt.Sprintf("Ramp action %s on loop %d", a, loop), map[string]any{
		"loop":   loop,
		"action": string(a),
	})
	return nil
}

// RampValue reads a loop's ramp rate or time.
func (s *ChamberService) RampValue(ctx context.Context, loop int, param string) (string, error) {
	p, err := f4t.ParseRampParam(param)
	if err != nil {
		return "", err
	}
	return s.dev.Ramp(p, loop)
}

// SetRampValue writes a loop's ramp rate or time.
func (s *ChamberService) SetRampValue(ctx context.Context, loop int, param string, value float64) error {
	p, err := f4t.ParseRampParam(param)
	if err != nil {
		return err
	}
	if err := s.dev.SetRamp(p, value, loop); err != nil {
		return err
	}
	s.appendEvent(ctx, EventRamp, fmt.Sprintf("Ramp %s %.2f on loop %d", p, value, loop), map[string]any{
		"loop":  loop,
		"param": string(p),
		"value": value,
	})
	return nil
}

// ToggleOutput flips a time-signal output. The underlying read-modify-write
// is not atomic with respect to external agents; see the device client.
func (s *ChamberService) ToggleOutput(ctx context.Context, output int) error {
	if err := s.dev.ToggleOutput(output); err != nil {
		return err
	}
	s.appendEvent(ctx, EventOutput, fmt.Sprintf("Toggled output %d", output), map[string]any{
		"output": output,
	})
	return nil
}

// OutputState reads the raw state token of an output.
func (s *ChamberService) OutputState(ctx context.Context, output int) (string, error) {
	return s.dev.TimeSignal(output)
}

// OutputDone reports whether an output reads exactly ON.
func (s *ChamberService) OutputDone(ctx context.Context, output int) (bool, error) {
	return s.dev.IsDone(output)
}
