package service

import (
	"context"
	"time"

	"chamberctl/internal/f4t"
	"chamberctl/internal/logger"
	"chamberctl/internal/models"
	"chamberctl/internal/mqtt"
	"chamberctl/internal/repository"
)

// Device is the controller surface the services drive. *f4t.Controller
// satisfies it; tests substitute a fake.
type Device interface {
	GetUnits() (f4t.TempUnit, error)
	SetUnits(u f4t.TempUnit) error
	Units() f4t.TempUnit
	EnumerateProfiles() error
	Profiles() []f4t.ProfileEntry
	SelectProfile(number int) error
	SelectedProfile() int
	SetProgramMode(mode f4t.ProgramMode) error
	ProcessValue(loop int) (string, error)
	SetPointValue(loop int) (string, error)
	WriteSetPoint(value float64, loop int) error
	CascadeSetPoint(cascade int) (string, error)
	WriteCascadeSetPoint(value float64, cascade int) error
	CascadeLoopProcessValue(outer bool, cascade int) (string, error)
	CascadeLoopSetPoint(outer bool, cascade int) (string, error)
	IsDone(output int) (bool, error)
	TimeSignal(output int) (string, error)
	ToggleOutput(output int) error
	SetRampScale(scale f4t.RampScale, loop int) error
	SetRampAction(action f4t.RampAction, loop int) error
	Ramp(param f4t.RampParam, loop int) (string, error)
	SetRamp(param f4t.RampParam, value float64, loop int) error
}

var _ Device = (*f4t.Controller)(nil)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Chamber exposes actuation operations: program execution, profile
// selection, set points, units, ramping and digital outputs. Every
// successful actuation is recorded in the event log.
type Chamber interface {
	Program(ctx context.Context, mode string) error
	ProgramState() string
	SelectProfile(ctx context.Context, number int) error
	SetSetPoint(ctx context.Context, loop int, value float64) error
	SetCascadeSetPoint(ctx context.Context, cascade int, value float64) error
	SetUnits(ctx context.Context, units string) error
	SetRampScale(ctx context.Context, loop int, scale string) error
	SetRampAction(ctx context.Context, loop int, action string) error
	RampValue(ctx context.Context, loop int, param string) (string, error)
	SetRampValue(ctx context.Context, loop int, param string, value float64) error
	ToggleOutput(ctx context.Context, output int) error
	OutputState(ctx context.Context, output int) (string, error)
	OutputDone(ctx context.Context, output int) (bool, error)
}

// Monitoring exposes read-only device state.
type Monitoring interface {
	Snapshot(ctx context.Context) (models.ChamberStatus, error)
	Units(ctx context.Context) (string, error)
	ProcessValue(ctx context.Context, loop int) (string, error)
	SetPointValue(ctx context.Context, loop int) (string, error)
	CascadeSetPoint(ctx context.Context, cascade int) (string, error)
	CascadeLoopValues(ctx context.Context, cascade int, outer bool) (pv, sp string, err error)
}

// Profiles exposes the profile registry: an explicit device walk to refresh,
// and the local cache for listing.
type Profiles interface {
	Refresh(ctx context.Context) ([]models.ProfileEntry, error)
	List(ctx context.Context) []models.ProfileEntry
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.ChamberEvent, error)
}

// Readings exposes persisted telemetry history.
type Readings interface {
	History(ctx context.Context, f ReadingFilter) ([]models.ChamberReading, error)
}

// Poller runs the background loop that samples the chamber and persists and
// publishes readings. Stop via context cancellation in main() for graceful
// shutdown.
type Poller interface {
	Run(ctx context.Context, tick time.Duration)
}

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "PROGRAM", "PROFILE", "SETPOINT", "UNITS", "RAMP", "OUTPUT", "ERROR", "TELEMETRY"
}

// ReadingFilter supports telemetry history filtering.
type ReadingFilter struct {
	From time.Time
	To   time.Time
	Loop int // <= 0 means all loops
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Chamber
	Monitoring
	Profiles
	EventLog
	Readings
	Poller
	Authorization
}

// Config tunes the composed services.
type Config struct {
	Loops          []int  // loops sampled by monitoring and the poller; defaults to 1, 2
	TelemetryTopic string // MQTT topic readings are published to
	SigningKey     string // JWT signing secret
}

// NewService wires the device client, repositories and telemetry publisher
// into concrete services.
func NewService(repos *repository.Repository, dev Device, pub mqtt.Publisher, log *logger.Logger, cfg Config) *Service {
	if len(cfg.Loops) == 0 {
		cfg.Loops = []int{1, 2}
	}
	if pub == nil {
		pub = mqtt.Noop{}
	}
	mirror := newProgramMirror()
	chamber := NewChamberService(dev, repos.EventRepo, mirror, log)
	return &Service{
		Chamber:       chamber,
		Monitoring:    NewMonitoringService(dev, mirror, cfg.Loops),
		Profiles:      NewProfilesService(dev, repos.EventRepo),
		EventLog:      NewEventLogService(repos.EventRepo),
		Readings:      NewReadingsService(repos.ReadingRepo),
		Poller:        NewPollerService(dev, repos.ReadingRepo, pub, log, cfg.Loops, cfg.TelemetryTopic),
		Authorization: NewAuthService(repos.Auth, cfg.SigningKey),
	}
}
