package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"chamberctl/internal/f4t"
	"chamberctl/internal/models"
	"chamberctl/internal/service"
)

func doJSON(t *testing.T, r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var buf *bytes.Buffer
	if body != "" {
		buf = bytes.NewBufferString(body)
	} else {
		buf = &bytes.Buffer{}
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer valid")
	r.ServeHTTP(w, req)
	return w
}

func TestChamberHandlers_GetState(t *testing.T) {
	mon := &mockMonitoring{status: models.ChamberStatus{
		Units:        "C",
		ProgramState: "stopped",
		Loops:        []models.LoopStatus{{Loop: 1, ProcessValue: "21.5", SetPoint: "22.0"}},
	}}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, Monitoring: mon}
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodGet, "/api/v1/chamber/state", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var st models.ChamberStatus
	_ = json.Unmarshal(w.Body.Bytes(), &st)
	if st.Units != "C" || len(st.Loops) != 1 {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestChamberHandlers_SetUnits(t *testing.T) {
	ch := &mockChamber{}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, Chamber: ch}
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodPut, "/api/v1/chamber/units", `{"units":"F"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if ch.lastUnits != "F" {
		t.Fatalf("expected units F forwarded, got %q", ch.lastUnits)
	}

	// Missing body field → 400, service never called
	before := ch.lastUnits
	w = doJSON(t, r, http.MethodPut, "/api/v1/chamber/units", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if ch.lastUnits != before {
		t.Fatalf("service called on invalid body")
	}
}

func TestChamberHandlers_SetSetPoint(t *testing.T) {
	ch := &mockChamber{}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, Chamber: ch}
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodPut, "/api/v1/chamber/setpoint", `{"loop":2,"value":55.5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if ch.lastLoop != 2 || ch.lastValue != 55.5 {
		t.Fatalf("unexpected forwarding: loop=%d value=%v", ch.lastLoop, ch.lastValue)
	}

	// Zero value must still be accepted as an explicit set point
	w = doJSON(t, r, http.MethodPut, "/api/v1/chamber/setpoint", `{"loop":1,"value":0}`)
	if w.Code != http.StatusOK {
		t.Fatalf("zero set point rejected: status=%d body=%s", w.Code, w.Body.String())
	}
	if ch.lastValue != 0 {
		t.Fatalf("expected value 0 forwarded, got %v", ch.lastValue)
	}
}

func TestChamberHandlers_DeviceErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid_argument", fmt.Errorf("bad scale: %w", f4t.ErrInvalidArgument), http.StatusBadRequest},
		{"timeout", fmt.Errorf("read: %w", f4t.ErrTimeout), http.StatusGatewayTimeout},
		{"transport", fmt.Errorf("write: %w", f4t.ErrTransport), http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ch := &mockChamber{err: tc.err}
			s := &service.Service{Authorization: &mockAuth{parseID: 1}, Chamber: ch}
			r := newTestRouter(s)

			w := doJSON(t, r, http.MethodPut, "/api/v1/chamber/ramp/scale", `{"loop":1,"scale":"HOURS"}`)
			if w.Code != tc.want {
				t.Fatalf("status: got %d, want %d (body=%s)", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestChamberHandlers_ProgramMode(t *testing.T) {
	ch := &mockChamber{state: "running"}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, Chamber: ch}
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodPost, "/api/v1/chamber/program/start", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if ch.lastMode != "start" || ch.programCalls != 1 {
		t.Fatalf("unexpected forwarding: mode=%q calls=%d", ch.lastMode, ch.programCalls)
	}
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out["program_state"] != "running" {
		t.Fatalf("expected program_state running, got %v", out["program_state"])
	}
}

func TestChamberHandlers_Ramp(t *testing.T) {
	ch := &mockChamber{rampValue: "6.0"}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, Chamber: ch}
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodGet, "/api/v1/chamber/ramp?loop=2&param=rate", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if ch.lastLoop != 2 || ch.lastParam != "rate" {
		t.Fatalf("unexpected forwarding: loop=%d param=%q", ch.lastLoop, ch.lastParam)
	}

	w = doJSON(t, r, http.MethodPut, "/api/v1/chamber/ramp", `{"loop":1,"param":"time","value":30}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if ch.lastParam != "time" || ch.lastValue != 30 {
		t.Fatalf("unexpected forwarding: param=%q value=%v", ch.lastParam, ch.lastValue)
	}
}

func TestChamberHandlers_Outputs(t *testing.T) {
	ch := &mockChamber{outputState: "ON"}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, Chamber: ch}
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodGet, "/api/v1/chamber/outputs/3", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out["state"] != "ON" || out["done"] != true {
		t.Fatalf("unexpected output response: %v", out)
	}
	if ch.lastOutput != 3 {
		t.Fatalf("expected output 3, got %d", ch.lastOutput)
	}

	// A non-ON token must read as not done
	ch.outputState = "OFF"
	w = doJSON(t, r, http.MethodGet, "/api/v1/chamber/outputs/3", "")
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out["done"] != false {
		t.Fatalf("expected done=false for OFF, got %v", out["done"])
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/chamber/outputs/4/toggle", "")
	if w.Code != http.StatusOK {
		t.Fatalf("toggle status=%d body=%s", w.Code, w.Body.String())
	}
	if ch.toggleCalls != 1 || ch.lastOutput != 4 {
		t.Fatalf("unexpected toggle forwarding: calls=%d output=%d", ch.toggleCalls, ch.lastOutput)
	}

	// Non-numeric output → 400
	w = doJSON(t, r, http.MethodGet, "/api/v1/chamber/outputs/x", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad output, got %d", w.Code)
	}
}

func TestChamberHandlers_Profiles(t *testing.T) {
	entries := []models.ProfileEntry{
		{Number: 1, Name: "THERMAL CYCLE"},
		{Number: 2, Name: "HUMIDITY SOAK"},
	}
	profiles := &mockProfiles{entries: entries}
	ch := &mockChamber{}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, Chamber: ch, Profiles: profiles}
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodGet, "/api/v1/chamber/profiles", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count    int                   `json:"count"`
		Profiles []models.ProfileEntry `json:"profiles"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 2 || out.Profiles[0].Name != "THERMAL CYCLE" {
		t.Fatalf("unexpected profiles: %+v", out)
	}
	if profiles.refreshCalls != 0 {
		t.Fatalf("list must not walk the device")
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/chamber/profiles/refresh", "")
	if w.Code != http.StatusOK {
		t.Fatalf("refresh status=%d body=%s", w.Code, w.Body.String())
	}
	if profiles.refreshCalls != 1 {
		t.Fatalf("expected one refresh, got %d", profiles.refreshCalls)
	}

	w = doJSON(t, r, http.MethodPut, "/api/v1/chamber/profile", `{"number":5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("select status=%d body=%s", w.Code, w.Body.String())
	}
	if ch.lastProfile != 5 {
		t.Fatalf("expected profile 5, got %d", ch.lastProfile)
	}
}

func TestChamberHandlers_Cascade(t *testing.T) {
	mon := &mockMonitoring{pv: "48.2", sp: "50.0"}
	ch := &mockChamber{}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, Chamber: ch, Monitoring: mon}
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodGet, "/api/v1/chamber/cascade/1/setpoint", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if mon.lastCascade != 1 {
		t.Fatalf("expected cascade 1, got %d", mon.lastCascade)
	}

	w = doJSON(t, r, http.MethodPut, "/api/v1/chamber/cascade/1/setpoint", `{"value":60}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if ch.lastCascade != 1 || ch.lastValue != 60 {
		t.Fatalf("unexpected forwarding: cascade=%d value=%v", ch.lastCascade, ch.lastValue)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/chamber/cascade/1/loops/outer", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !mon.lastOuter {
		t.Fatalf("expected outer half")
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/chamber/cascade/1/loops/sideways", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad half, got %d", w.Code)
	}
}
