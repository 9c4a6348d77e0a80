// Package f4t implements the command/response client for the Watlow F4T
// environmental test-chamber controller. It maps domain operations (read a
// process value, select a profile, toggle an output, configure ramping) onto
// the controller's colon-delimited textual command protocol and interprets
// the single-line ASCII responses back into typed values.
//
// The package never opens sockets itself; it drives an injected
// CommandChannel. Exchanges are strictly request/response: at most one
// command in flight, optionally followed by exactly one blocking read.
package f4t

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"chamberctl/internal/logger"
)

// Fixed pauses between a write and the subsequent read, modeling device-side
// processing latency. Blocking waits, never polls: exactly one read follows
// each delay.
const (
	profileSettle = 500 * time.Millisecond
	outputSettle  = 200 * time.Millisecond
)

// maxProfiles is the highest profile slot the controller exposes.
const maxProfiles = 40

// ProfileEntry is one discovered profile slot on the device.
type ProfileEntry struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// Config carries construction-time defaults for a Controller.
type Config struct {
	SetPoint float64       // initial convenience set point
	Units    TempUnit      // initial temperature unit
	Profile  int           // initially selected profile number
	Timeout  time.Duration // channel timeout override; zero keeps the channel's own
}

// Controller is the typed interface to one F4T device. It owns the profile
// registry and the units/set-point/selected-profile convenience state.
//
// All operations serialize on an internal mutex so that two exchanges never
// overlap on the channel. Multiple goroutines may share one Controller, but
// read-modify-write sequences such as ToggleOutput still span two exchanges
// and are not atomic with respect to external agents changing device state.
type Controller struct {
	mu  sync.Mutex
	ch  CommandChannel
	log *logger.Logger

	setPoint float64
	units    TempUnit
	profile  int

	profileOrder []int
	profileNames map[int]string

	sleep func(time.Duration) // injectable for tests
}

// New builds a Controller over ch. If cfg leaves a field zero, the reference
// defaults apply: set point 22.0, Celsius, profile 1. The channel timeout is
// forced to DefaultTimeout when neither cfg nor the channel configure one.
func New(ch CommandChannel, log *logger.Logger, cfg Config) *Controller {
	if cfg.SetPoint == 0 {
		cfg.SetPoint = 22.0
	}
	if cfg.Units == "" {
		cfg.Units = UnitCelsius
	}
	if cfg.Profile == 0 {
		cfg.Profile = 1
	}
	if cfg.Timeout > 0 {
		ch.SetTimeout(cfg.Timeout)
	} else if ch.Timeout() == 0 {
		ch.SetTimeout(DefaultTimeout)
	}
	return &Controller{
		ch:           ch,
		log:          log,
		setPoint:     cfg.SetPoint,
		units:        cfg.Units,
		profile:      cfg.Profile,
		profileNames: make(map[int]string),
		sleep:        time.Sleep,
	}
}

// query sends a command and reads one response line. Callers hold c.mu.
func (c *Controller) query(cmd string) (string, error) {
	if err := c.ch.SendCommand(cmd); err != nil {
		return "", err
	}
	return c.ch.ReadResponse()
}

// GetUnits probes the controller for its current temperature unit and stores
// the confirmed value.
func (c *Controller) GetUnits() (TempUnit, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ch.ClearBuffer(); err != nil {
		return "", err
	}
	rsp, err := c.query(":UNIT:TEMPERATURE?")
	if err != nil {
		return "", err
	}
	u, err := ParseTempUnit(rsp)
	if err != nil {
		return "", err
	}
	c.units = u
	return u, nil
}

// SetUnits applies a new temperature unit. A zero value writes the stored
// unit, re-asserting the last known setting.
func (c *Controller) SetUnits(u TempUnit) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if u == "" {
		u = c.units
	}
	if _, err := ParseTempUnit(string(u)); err != nil {
		return invalidArgf("unknown temperature unit %q", u)
	}
	if err := c.ch.SendCommand(fmt.Sprintf(":UNITS:TEMPERATURE %s", u)); err != nil {
		return err
	}
	c.units = u
	return nil
}

// Units reports the last unit confirmed by the device or explicitly requested.
func (c *Controller) Units() TempUnit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.units
}

// EnumerateProfiles walks profile slots 1..40, selecting each and querying
// its name. Enumeration halts at the first slot whose name is empty after
// quote-stripping; the registry then holds exactly the slots before it, in
// ascending order. Any previous registry contents are discarded: there is no
// incremental merge.
func (c *Controller) EnumerateProfiles() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ch.ClearBuffer(); err != nil {
		return err
	}
	c.profileOrder = nil
	c.profileNames = make(map[int]string)

	for i := 1; i <= maxProfiles; i++ {
		if err := c.ch.SendCommand(fmt.Sprintf(":PROGRAM:NUMBER %d", i)); err != nil {
			return err
		}
		c.sleep(profileSettle)
		if err := c.ch.SendCommand(":PROGRAM:NAME?"); err != nil {
			return err
		}
		c.sleep(profileSettle)
		rsp, err := c.ch.ReadResponse()
		if err != nil {
			return err
		}
		name := strings.TrimSpace(strings.ReplaceAll(rsp, `"`, ""))
		if name == "" {
			break
		}
		c.profileOrder = append(c.profileOrder, i)
		c.profileNames[i] = name
	}
	if c.log != nil {
		c.log.Infow("profiles enumerated", "count", len(c.profileOrder))
	}
	return nil
}

// Profiles returns a copy of the registry in discovery order. It reflects
// only explicit enumeration; the cache is never refreshed behind the
// caller's back.
func (c *Controller) Profiles() []ProfileEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ProfileEntry, 0, len(c.profileOrder))
	for _, n := range c.profileOrder {
		out = append(out, ProfileEntry{Number: n, Name: c.profileNames[n]})
	}
	return out
}

// SelectProfile makes profile number the device's selected profile. Callers
// are expected to stay within 1..40, but out-of-range numbers are forwarded
// uninterpreted: the device is authoritative and rejects what it cannot use.
func (c *Controller) SelectProfile(number int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ch.SendCommand(fmt.Sprintf(":PROGRAM:NUMBER %d", number)); err != nil {
		return err
	}
	c.profile = number
	return nil
}

// SelectedProfile reports the most recently requested profile number.
func (c *Controller) SelectedProfile() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile
}

// SetProgramMode writes an execution-state token for the selected profile.
// Invalid transition requests (e.g. RESUME while stopped) are deliberately
// not rejected here: the token is forwarded and the device decides.
func (c *Controller) SetProgramMode(mode ProgramMode) error {
	if _, err := ParseProgramMode(string(mode)); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ch.SendCommand(fmt.Sprintf(":PROGRAM:SELECTED:STATE %s", mode))
}

// ProcessValue reads the process value of a control loop (1 = temperature,
// 2 = humidity by convention). The textual response is returned unmodified;
// no unit conversion happens here.
func (c *Controller) ProcessValue(loop int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query(fmt.Sprintf(":SOURCE:CLOOP%d:PVALUE?", loop))
}

// SetPointValue reads the set point of a control loop.
func (c *Controller) SetPointValue(loop int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query(fmt.Sprintf(":SOURCE:CLOOP%d:SPOINT?", loop))
}

// WriteSetPoint writes a loop's set point and records it as the convenience
// set point.
func (c *Controller) WriteSetPoint(value float64, loop int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ch.SendCommand(fmt.Sprintf("SOURCE:CLOOP%d:SPOINT %v", loop, value)); err != nil {
		return err
	}
	c.setPoint = value
	return nil
}

// SetPoint reports the last set point written through this controller.
func (c *Controller) SetPoint() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setPoint
}

// CascadeSetPoint reads cascade pair n's set point.
func (c *Controller) CascadeSetPoint(cascade int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query(fmt.Sprintf(":SOURCE:CASCADE%d:SPOINT?", cascade))
}

// WriteCascadeSetPoint writes cascade pair n's set point.
func (c *Controller) WriteCascadeSetPoint(value float64, cascade int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ch.SendCommand(fmt.Sprintf(":SOURCE:CASCADE%d:SPOINT %v", cascade, value))
}

// cascadeHalf maps the outer-loop flag onto the device's OUTER/INNER tokens.
func cascadeHalf(outer bool) string {
	if outer {
		return "OUTER"
	}
	return "INNER"
}

// CascadeLoopProcessValue reads the process value of one half of cascade
// pair n, selected by the outer flag.
func (c *Controller) CascadeLoopProcessValue(outer bool, cascade int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query(fmt.Sprintf(":SOURCE:CASCADE%d:%s:PVALUE?", cascade, cascadeHalf(outer)))
}

// CascadeLoopSetPoint reads the set point of one half of cascade pair n.
func (c *Controller) CascadeLoopSetPoint(outer bool, cascade int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query(fmt.Sprintf(":SOURCE:CASCADE%d:%s:SPOINT?", cascade, cascadeHalf(outer)))
}

// IsDone reports whether time-signal output n currently reads ON. Exactly
// the token "ON" is true; every other reply, malformed or empty included,
// is false. Unknown deliberately defaults to negative -- no separate
// "unknown" state is surfaced.
func (c *Controller) IsDone(output int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rsp, err := c.queryOutputState(output)
	if err != nil {
		return false, err
	}
	return rsp == "ON", nil
}

// TimeSignal reads the raw state token of time-signal output n. Read-only,
// informational.
func (c *Controller) TimeSignal(output int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rsp, err := c.queryOutputState(output)
	if err != nil {
		return "", err
	}
	if c.log != nil {
		c.log.Infow("time signal state", "output", output, "state", rsp)
	}
	return rsp, nil
}

// ToggleOutput reads output n's state and writes back the inverse token
// (ON<->OFF). The sequence spans two exchanges with settle delays between
// them and is not transactional: an external change to the output between
// the read and the write goes undetected, and whichever value was observed
// determines the outcome. Callers needing atomicity must lock around the
// device themselves.
func (c *Controller) ToggleOutput(output int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	rsp, err := c.queryOutputState(output)
	if err != nil {
		return err
	}
	next := "OFF"
	if rsp == "OFF" {
		next = "ON"
	}
	c.sleep(outputSettle)
	return c.ch.SendCommand(fmt.Sprintf(":OUTPUT%d:STATE %s", output, next))
}

// queryOutputState issues the output-state query with its settle delay.
// Callers hold c.mu.
func (c *Controller) queryOutputState(output int) (string, error) {
	if err := c.ch.SendCommand(fmt.Sprintf(":OUTPUT%d:STATE?", output)); err != nil {
		return "", err
	}
	c.sleep(outputSettle)
	return c.ch.ReadResponse()
}

// SetRampScale sets the time base for a loop's ramp rate. The scale is
// validated first; an unrecognized value fails with ErrInvalidArgument and
// nothing is transmitted.
func (c *Controller) SetRampScale(scale RampScale, loop int) error {
	if _, err := ParseRampScale(string(scale)); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ch.SendCommand(fmt.Sprintf(":SOURCE:CLOOP%d:RSCALE %s", loop, scale))
}

// SetRampAction selects which set-point transitions ramp on a loop.
func (c *Controller) SetRampAction(action RampAction, loop int) error {
	if _, err := ParseRampAction(string(action)); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ch.SendCommand(fmt.Sprintf(":SOURCE:CLOOP%d:RACTION %s", loop, action))
}

// Ramp reads a loop's ramp rate or ramp time, selected by param.
func (c *Controller) Ramp(param RampParam, loop int) (string, error) {
	if param != RampRate && param != RampTime {
		return "", invalidArgf("unknown ramp parameter %q", param)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query(fmt.Sprintf(":SOURCE:CLOOP%d:%s?", loop, param))
}

// SetRamp writes a loop's ramp rate or ramp time. The write form carries no
// query marker; it is intentionally distinct from the query form built by
// Ramp rather than derived from it.
func (c *Controller) SetRamp(param RampParam, value float64, loop int) error {
	if param != RampRate && param != RampTime {
		return invalidArgf("unknown ramp parameter %q", param)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ch.SendCommand(fmt.Sprintf(":SOURCE:CLOOP%d:%s %v", loop, param, value))
}
