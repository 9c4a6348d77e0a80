package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"chamberctl/internal/f4t"
	"chamberctl/internal/models"
)

var errTestDown = errors.New("down")

// fakeDevice satisfies Device with canned values and call recording.
type fakeDevice struct {
	mu sync.Mutex

	units    f4t.TempUnit
	profile  int
	profiles []f4t.ProfileEntry

	pv   map[int]string
	sp   map[int]string
	ramp string

	outputState string
	done        bool

	err error // when set, every device call fails with it

	calls []string // method names in call order

	lastMode    f4t.ProgramMode
	lastSP      float64
	lastScale   f4t.RampScale
	lastAction  f4t.RampAction
	lastParam   f4t.RampParam
	lastValue   float64
	lastLoop    int
	lastCascade int
	lastOutput  int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		units:   f4t.UnitCelsius,
		profile: 1,
		pv:      map[int]string{1: "23.4", 2: "48.0"},
		sp:      map[int]string{1: "25.0", 2: "50.0"},
	}
}

func (d *fakeDevice) record(name string) {
	d.mu.Lock()
	d.calls = append(d.calls, name)
	d.mu.Unlock()
}

func (d *fakeDevice) GetUnits() (f4t.TempUnit, error) {
	d.record("GetUnits")
	return d.units, d.err
}
func (d *fakeDevice) SetUnits(u f4t.TempUnit) error {
	d.record("SetUnits")
	if d.err == nil {
		d.units = u
	}
	return d.err
}
func (d *fakeDevice) Units() f4t.TempUnit { return d.units }
func (d *fakeDevice) EnumerateProfiles() error {
	d.record("EnumerateProfiles")
	return d.err
}
func (d *fakeDevice) Profiles() []f4t.ProfileEntry { return d.profiles }
func (d *fakeDevice) SelectProfile(number int) error {
	d.record("SelectProfile")
	if d.err == nil {
		d.profile = number
	}
	return d.err
}
func (d *fakeDevice) SelectedProfile() int { return d.profile }
func (d *fakeDevice) SetProgramMode(mode f4t.ProgramMode) error {
	d.record("SetProgramMode")
	d.lastMode = mode
	return d.err
}
func (d *fakeDevice) ProcessValue(loop int) (string, error) {
	d.record("ProcessValue")
	d.lastLoop = loop
	return d.pv[loop], d.err
}
func (d *fakeDevice) SetPointValue(loop int) (string, error) {
	d.record("SetPointValue")
	d.lastLoop = loop
	return d.sp[loop], d.err
}
func (d *fakeDevice) WriteSetPoint(value float64, loop int) error {
	d.record("WriteSetPoint")
	d.lastSP, d.lastLoop = value, loop
	return d.err
}
func (d *fakeDevice) CascadeSetPoint(cascade int) (string, error) {
	d.record("CascadeSetPoint")
	d.lastCascade = cascade
	return "60.0", d.err
}
func (d *fakeDevice) WriteCascadeSetPoint(value float64, cascade int) error {
	d.record("WriteCascadeSetPoint")
	d.lastValue, d.lastCascade = value, cascade
	return d.err
}
func (d *fakeDevice) CascadeLoopProcessValue(outer bool, cascade int) (string, error) {
	d.record("CascadeLoopProcessValue")
	d.lastCascade = cascade
	return "58.2", d.err
}
func (d *fakeDevice) CascadeLoopSetPoint(outer bool, cascade int) (string, error) {
	d.record("CascadeLoopSetPoint")
	d.lastCascade = cascade
	return "60.0", d.err
}
func (d *fakeDevice) IsDone(output int) (bool, error) {
	d.record("IsDone")
	d.lastOutput = output
	return d.done, d.err
}
func (d *fakeDevice) TimeSignal(output int) (string, error) {
	d.record("TimeSignal")
	d.lastOutput = output
	return d.outputState, d.err
}
func (d *fakeDevice) ToggleOutput(output int) error {
	d.record("ToggleOutput")
	d.lastOutput = output
	return d.err
}
func (d *fakeDevice) SetRampScale(scale f4t.RampScale, loop int) error {
	d.record("SetRampScale")
	d.lastScale, d.lastLoop = scale, loop
	return d.err
}
func (d *fakeDevice) SetRampAction(action f4t.RampAction, loop int) error {
	d.record("SetRampAction")
	d.lastAction, d.lastLoop = action, loop
	return d.err
}
func (d *fakeDevice) Ramp(param f4t.RampParam, loop int) (string, error) {
	d.record("Ramp")
	d.lastParam, d.lastLoop = param, loop
	return d.ramp, d.err
}
func (d *fakeDevice) SetRamp(param f4t.RampParam, value float64, loop int) error {
	d.record("SetRamp")
	d.lastParam, d.lastValue, d.lastLoop = param, value, loop
	return d.err
}

var _ Device = (*fakeDevice)(nil)

// fakeEventRepo collects appended events in memory.
type fakeEventRepo struct {
	mu        sync.Mutex
	events    []models.ChamberEvent
	appendErr error
	listResp  []models.ChamberEvent
	listErr   error
	lastFrom  time.Time
	lastTo    time.Time
	lastType  string
}

func (r *fakeEventRepo) Append(ctx context.Context, e models.ChamberEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	r.events = append(r.events, e)
	return nil
}

func (r *fakeEventRepo) List(ctx context.Context, from, to time.Time, typ string) ([]models.ChamberEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFrom, r.lastTo, r.lastType = from, to, typ
	return r.listResp, r.listErr
}

func (r *fakeEventRepo) all() []models.ChamberEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ChamberEvent, len(r.events))
	copy(out, r.events)
	return out
}

// fakeReadingRepo collects appended readings in memory.
type fakeReadingRepo struct {
	mu        sync.Mutex
	readings  []models.ChamberReading
	appendErr error
	listResp  []models.ChamberReading
	listErr   error
	lastLoop  int
}

func (r *fakeReadingRepo) Append(ctx context.Context, reading models.ChamberReading) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	r.readings = append(r.readings, reading)
	return nil
}

func (r *fakeReadingRepo) List(ctx context.Context, from, to time.Time, loop int) ([]models.ChamberReading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLoop = loop
	return r.listResp, r.listErr
}

func (r *fakeReadingRepo) all() []models.ChamberReading {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ChamberReading, len(r.readings))
	copy(out, r.readings)
	return out
}

// fakePublisher records published payloads per topic.
type fakePublisher struct {
	mu       sync.Mutex
	payloads map[string][][]byte
	err      error
}

func (p *fakePublisher) Publish(topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if p.payloads == nil {
		p.payloads = make(map[string][][]byte)
	}
	p.payloads[topic] = append(p.payloads[topic], payload)
	return nil
}

func (p *fakePublisher) published(topic string) [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.payloads[topic]
}
