package service

import (
	"context"
	"errors"
	"testing"

	"chamberctl/internal/f4t"
)

func TestProfilesRefresh_WalksDeviceAndRecords(t *testing.T) {
	dev := newFakeDevice()
	dev.profiles = []f4t.ProfileEntry{
		{Number: 1, Name: "THERMAL CYCLE"},
		{Number: 2, Name: "HUMIDITY SOAK"},
	}
	repo := &fakeEventRepo{}
	s := NewProfilesService(dev, repo)

	got, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(got) != 2 || got[0].Name != "THERMAL CYCLE" || got[1].Number != 2 {
		t.Fatalf("unexpected entries: %+v", got)
	}
	if len(dev.calls) != 1 || dev.calls[0] != "EnumerateProfiles" {
		t.Fatalf("expected one enumeration, got %v", dev.calls)
	}
	events := repo.all()
	if len(events) != 1 || events[0].Type != EventProfile {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestProfilesRefresh_DeviceFailure(t *testing.T) {
	dev := newFakeDevice()
	dev.err = errors.New("f4t: response timeout")
	s := NewProfilesService(dev, &fakeEventRepo{})

	if _, err := s.Refresh(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestProfilesList_CacheOnly(t *testing.T) {
	dev := newFakeDevice()
	dev.profiles = []f4t.ProfileEntry{{Number: 5, Name: "BURN IN"}}
	s := NewProfilesService(dev, &fakeEventRepo{})

	got := s.List(context.Background())
	if len(got) != 1 || got[0].Number != 5 {
		t.Fatalf("unexpected entries: %+v", got)
	}
	// listing must never walk the device
	for _, c := range dev.calls {
		if c == "EnumerateProfiles" {
			t.Fatalf("List triggered enumeration")
		}
	}
}
