package service

import (
	"sync"

	"github.com/anggasct/fluo"
)

// Program execution states mirrored locally. The device remains the single
// source of truth: the mirror records what was requested, it never rejects a
// request the device might accept.
const (
	ProgramStopped = "stopped"
	ProgramRunning = "running"
	ProgramPaused  = "paused"
)

// Transition events, matching the command tokens sent to the device.
const (
	eventStart  = "start"
	eventStop   = "stop"
	eventPause  = "pause"
	eventResume = "resume"
)

// programMirror tracks the requested execution state of the selected profile
// as a small state machine: Stopped -start-> Running, Running -stop-> Stopped,
// Running -pause-> Paused, Paused -resume-> Running (stop is honored from
// Paused as well). Transitions the machine cannot take are dropped silently,
// mirroring the device's freedom to reject or ignore a forwarded token.
type programMirror struct {
	mu sync.Mutex
	m  fluo.Machine
}

func newProgramMirror() *programMirror {
	def := fluo.NewMachine().
		State(ProgramStopped).Initial().
		To(ProgramRunning).On(eventStart).
		State(ProgramRunning).
		To(ProgramPaused).On(eventPause).
		To(ProgramStopped).On(eventStop).
		State(ProgramPaused).
		To(ProgramRunning).On(eventResume).
		To(ProgramStopped).On(eventStop).
		Build()

	m := def.CreateInstance()
	_ = m.Start()
	return &programMirror{m: m}
}

// apply records a requested transition. Returns whether the mirror moved.
func (p *programMirror) apply(event string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	res := p.m.HandleEvent(event, nil)
	return res != nil && res.StateChanged
}

// current reports the mirror's view of the program state.
func (p *programMirror) current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.m.CurrentState()
}
