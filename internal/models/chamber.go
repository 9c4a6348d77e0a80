package models

import "time"

// LoopStatus is one control loop's live values. Process value and set point
// are kept as the raw response text from the controller; no unit conversion
// is performed on this path.
type LoopStatus struct {
	Loop         int    `json:"loop"` // 1 = temperature, 2 = humidity
	ProcessValue string `json:"process_value"`
	SetPoint     string `json:"set_point"`
}

// ChamberStatus is a point-in-time snapshot of the chamber.
type ChamberStatus struct {
	Units           string       `json:"units"` // C | F | K
	SelectedProfile int          `json:"selected_profile"`
	ProgramState    string       `json:"program_state"` // stopped | running | paused
	Loops           []LoopStatus `json:"loops"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// ProfileEntry is one named profile slot discovered on the device.
type ProfileEntry struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// ChamberReading is one persisted telemetry sample for a loop.
type ChamberReading struct {
	ID           string    `json:"id"`
	TakenAt      time.Time `json:"taken_at"`
	Loop         int       `json:"loop"`
	ProcessValue float64   `json:"process_value"`
	SetPoint     float64   `json:"set_point"`
	Units        string    `json:"units"`
}

// ChamberEvent is a single log entry.
type ChamberEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // PROGRAM | SETPOINT | UNITS | PROFILE | RAMP | OUTPUT | ERROR | TELEMETRY
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
