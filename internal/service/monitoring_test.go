package service

import (
	"context"
	"errors"
	"testing"
)

func TestMonitoringSnapshot(t *testing.T) {
	dev := newFakeDevice()
	dev.profile = 3
	mirror := newProgramMirror()
	mirror.apply("start")
	s := NewMonitoringService(dev, mirror, []int{1, 2})

	st, err := s.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if st.Units != "C" || st.SelectedProfile != 3 || st.ProgramState != ProgramRunning {
		t.Fatalf("unexpected snapshot: %+v", st)
	}
	if len(st.Loops) != 2 {
		t.Fatalf("expected 2 loops, got %d", len(st.Loops))
	}
	if st.Loops[0].Loop != 1 || st.Loops[0].ProcessValue != "23.4" || st.Loops[0].SetPoint != "25.0" {
		t.Fatalf("unexpected loop 1: %+v", st.Loops[0])
	}
	if st.Loops[1].Loop != 2 || st.Loops[1].ProcessValue != "48.0" {
		t.Fatalf("unexpected loop 2: %+v", st.Loops[1])
	}
	if st.UpdatedAt.IsZero() {
		t.Fatalf("UpdatedAt not set")
	}
}

func TestMonitoringSnapshot_DeviceErrorPropagates(t *testing.T) {
	dev := newFakeDevice()
	dev.err = errors.New("f4t: response timeout")
	s := NewMonitoringService(dev, newProgramMirror(), []int{1})

	if _, err := s.Snapshot(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestMonitoringUnits_Probes(t *testing.T) {
	dev := newFakeDevice()
	s := NewMonitoringService(dev, newProgramMirror(), []int{1})

	u, err := s.Units(context.Background())
	if err != nil || u != "C" {
		t.Fatalf("Units: %q %v", u, err)
	}
	// probe, not a cache read
	if len(dev.calls) != 1 || dev.calls[0] != "GetUnits" {
		t.Fatalf("expected a GetUnits probe, got %v", dev.calls)
	}
}

func TestMonitoringCascadeLoopValues(t *testing.T) {
	dev := newFakeDevice()
	s := NewMonitoringService(dev, newProgramMirror(), []int{1})

	pv, sp, err := s.CascadeLoopValues(context.Background(), 1, true)
	if err != nil {
		t.Fatalf("CascadeLoopValues: %v", err)
	}
	if pv != "58.2" || sp != "60.0" {
		t.Fatalf("got pv=%q sp=%q", pv, sp)
	}
}
