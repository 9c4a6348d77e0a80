package f4t

import "strings"

// TempUnit is a temperature unit token as transmitted by the controller.
type TempUnit string

const (
	UnitCelsius    TempUnit = "C"
	UnitFahrenheit TempUnit = "F"
	UnitKelvin     TempUnit = "K"
)

// ParseTempUnit maps a response token onto the TempUnit set.
func ParseTempUnit(s string) (TempUnit, error) {
	switch TempUnit(strings.ToUpper(strings.TrimSpace(s))) {
	case UnitCelsius:
		return UnitCelsius, nil
	case UnitFahrenheit:
		return UnitFahrenheit, nil
	case UnitKelvin:
		return UnitKelvin, nil
	}
	return "", unexpectedf("unknown temperature unit token %q", s)
}

// RampScale selects the time base a ramp rate is expressed in.
type RampScale string

const (
	RampScaleHours   RampScale = "HOURS"
	RampScaleMinutes RampScale = "MINUTES"
)

// ParseRampScale validates a ramp-scale token. Unrecognized values fail with
// ErrInvalidArgument so a malformed write is never transmitted.
func ParseRampScale(s string) (RampScale, error) {
	switch RampScale(strings.ToUpper(strings.TrimSpace(s))) {
	case RampScaleHours:
		return RampScaleHours, nil
	case RampScaleMinutes:
		return RampScaleMinutes, nil
	}
	return "", invalidArgf("unknown ramp scale %q", s)
}

// ProgramMode is an execution-state token for the selected profile.
// Transitions are requested, not verified: the device is the single source of
// truth for execution state and may reject or ignore a token that does not
// apply to its current state.
type ProgramMode string

const (
	ProgramStart  ProgramMode = "START"
	ProgramStop   ProgramMode = "STOP"
	ProgramPause  ProgramMode = "PAUSE"
	ProgramResume ProgramMode = "RESUME"
)

// ParseProgramMode validates a program-mode token.
func ParseProgramMode(s string) (ProgramMode, error) {
	switch ProgramMode(strings.ToUpper(strings.TrimSpace(s))) {
	case ProgramStart:
		return ProgramStart, nil
	case ProgramStop:
		return ProgramStop, nil
	case ProgramPause:
		return ProgramPause, nil
	case ProgramResume:
		return ProgramResume, nil
	}
	return "", invalidArgf("unknown program mode %q", s)
}

// RampAction selects which set-point transitions ramp. OFF disables ramping
// entirely, applying new set points instantly.
type RampAction string

const (
	RampActionOff      RampAction = "OFF"
	RampActionStartup  RampAction = "STARTUP"
	RampActionSetPoint RampAction = "SETPOINT"
	RampActionBoth     RampAction = "BOTH"
)

// ParseRampAction validates a ramp-action token.
func ParseRampAction(s string) (RampAction, error) {
	switch RampAction(strings.ToUpper(strings.TrimSpace(s))) {
	case RampActionOff:
		return RampActionOff, nil
	case RampActionStartup:
		return RampActionStartup, nil
	case RampActionSetPoint:
		return RampActionSetPoint, nil
	case RampActionBoth:
		return RampActionBoth, nil
	}
	return "", invalidArgf("unknown ramp action %q", s)
}

// RampParam selects the ramp sub-parameter addressed by ramp queries/writes.
type RampParam string

const (
	RampRate RampParam = "RRATE"
	RampTime RampParam = "RTIME"
)

// ParseRampParam maps the caller-facing names "rate"/"time" onto the device
// tokens RRATE/RTIME.
func ParseRampParam(s string) (RampParam, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rate":
		return RampRate, nil
	case "time":
		return RampTime, nil
	}
	return "", invalidArgf("unknown ramp parameter %q (want rate or time)", s)
}
