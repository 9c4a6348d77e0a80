package handlers

import (
	"context"
	"net/http"
	"time"

	"chamberctl/internal/models"
	"chamberctl/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

// mockChamber records the last actuation and returns canned results.
type mockChamber struct {
	err   error
	state string

	rampValue string

	lastMode    string
	lastProfile int
	lastLoop    int
	lastCascade int
	lastValue   float64
	lastUnits   string
	lastScale   string
	lastAction  string
	lastParam   string
	lastOutput  int

	outputState string
	outputDone  bool

	programCalls int
	toggleCalls  int
}

func (m *mockChamber) Program(ctx context.Context, mode string) error {
	m.programCalls++
	m.lastMode = mode
	return m.err
}
func (m *mockChamber) ProgramState() string { return m.state }
func (m *mockChamber) SelectProfile(ctx context.Context, number int) error {
	m.lastProfile = number
	return m.err
}
func (m *mockChamber) SetSetPoint(ctx context.Context, loop int, value float64) error {
	m.lastLoop, m.lastValue = loop, value
	return m.err
}
func (m *mockChamber) SetCascadeSetPoint(ctx context.Context, cascade int, value float64) error {
	m.lastCascade, m.lastValue = cascade, value
	return m.err
}
func (m *mockChamber) SetUnits(ctx context.Context, units string) error {
	m.lastUnits = units
	return m.err
}
func (m *mockChamber) SetRampScale(ctx context.Context, loop int, scale string) error {
	m.lastLoop, m.lastScale = loop, scale
	return m.err
}
func (m *mockChamber) SetRampAction(ctx context.Context, loop int, action string) error {
	m.lastLoop, m.lastAction = loop, action
	return m.err
}
func (m *mockChamber) RampValue(ctx context.Context, loop int, param string) (string, error) {
	m.lastLoop, m.lastParam = loop, param
	return m.rampValue, m.err
}
func (m *mockChamber) SetRampValue(ctx context.Context, loop int, param string, value float64) error {
	m.lastLoop, m.lastParam, m.lastValue = loop, param, value
	return m.err
}
func (m *mockChamber) ToggleOutput(ctx context.Context, output int) error {
	m.toggleCalls++
	m.lastOutput = output
	return m.err
}
func (m *mockChamber) OutputState(ctx context.Context, output int) (string, error) {
	m.lastOutput = output
	return m.outputState, m.err
}
func (m *mockChamber) OutputDone(ctx context.Context, output int) (bool, error) {
	m.lastOutput = output
	return m.outputDone, m.err
}

type mockMonitoring struct {
	status models.ChamberStatus
	units  string
	pv     string
	sp     string
	err    error

	lastLoop    int
	lastCascade int
	lastOuter   bool
}

func (m *mockMonitoring) Snapshot(ctx context.Context) (models.ChamberStatus, error) {
	return m.status, m.err
}
func (m *mockMonitoring) Units(ctx context.Context) (string, error) {
	return m.units, m.err
}
func (m *mockMonitoring) ProcessValue(ctx context.Context, loop int) (string, error) {
	m.lastLoop = loop
	return m.pv, m.err
}
func (m *mockMonitoring) SetPointValue(ctx context.Context, loop int) (string, error) {
	m.lastLoop = loop
	return m.sp, m.err
}
func (m *mockMonitoring) CascadeSetPoint(ctx context.Context, cascade int) (string, error) {
	m.lastCascade = cascade
	return m.sp, m.err
}
func (m *mockMonitoring) CascadeLoopValues(ctx context.Context, cascade int, outer bool) (string, string, error) {
	m.lastCascade, m.lastOuter = cascade, outer
	return m.pv, m.sp, m.err
}

type mockProfiles struct {
	entries      []models.ProfileEntry
	err          error
	refreshCalls int
}

func (m *mockProfiles) Refresh(ctx context.Context) ([]models.ProfileEntry, error) {
	m.refreshCalls++
	return m.entries, m.err
}
func (m *mockProfiles) List(ctx context.Context) []models.ProfileEntry {
	return m.entries
}

type mockEventLog struct {
	resp     []models.ChamberEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.ChamberEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

type mockReadings struct {
	resp     []models.ChamberReading
	err      error
	lastLoop int
}

func (m *mockReadings) History(ctx context.Context, f service.ReadingFilter) ([]models.ChamberReading, error) {
	m.lastLoop = f.Loop
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
