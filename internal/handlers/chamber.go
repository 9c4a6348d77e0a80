package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"chamberctl/internal/f4t"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK       = "ok"
	statusApplied  = "applied"
	statusToggled  = "toggled"
	statusSelected = "selected"

	errInvalidBodyPref = "invalid body: "
	errInvalidLoop     = "invalid loop number"
	errInvalidCascade  = "invalid cascade number"
	errInvalidOutput   = "invalid output number"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// deviceErrorStatus maps core error kinds onto HTTP codes: locally rejected
// input is the caller's fault, everything else is an upstream failure.
func deviceErrorStatus(err error) int {
	switch {
	case errors.Is(err, f4t.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, f4t.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// respondDeviceError writes an error response for a failed device operation.
func (h *Handler) respondDeviceError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	if h.log != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(deviceErrorStatus(err), gin.H{"error": err.Error()})
}

// intParam parses a positive integer path parameter.
func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Chamber state snapshot
// @Tags         chamber
// @Produce      json
// @Success      200  {object}  models.ChamberStatus
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/chamber/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := h.services.Monitoring.Snapshot(ctx)
	if err != nil {
		h.respondDeviceError(c, "chamber_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Probe temperature units
// @Tags         chamber
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/chamber/units [get]
// @Security     BearerAuth
func (h *Handler) getUnits(c *gin.Context) {
	units, err := h.services.Monitoring.Units(c.Request.Context())
	if err != nil {
		h.respondDeviceError(c, "chamber_get_units_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"units": units})
}

// Request DTO for setting units.
type unitsRequest struct {
	Units string `json:"units" binding:"required"` // C | F | K
}

// @Summary      Set temperature units
// @Tags         chamber
// @Accept       json
// @Produce      json
// @Param        body  body   unitsRequest  true  "Units payload"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/chamber/units [put]
// @Security     BearerAuth
func (h *Handler) setUnits(c *gin.Context) {
	var req unitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Chamber.SetUnits(c.Request.Context(), req.Units); err != nil {
		h.respondDeviceError(c, "chamber_set_units_failed", err, "units", req.Units)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusApplied, "units": strings.ToUpper(req.Units)})
}

// Request DTO for writing a set point.
type setPointRequest struct {
	Loop  int      `json:"loop" binding:"required"` // 1 = temperature, 2 = humidity
	Value *float64 `json:"value" binding:"required"`
}

// @Summary      Write loop set point
// @Tags         chamber
// @Accept       json
// @Produce      json
// @Param        body  body   setPointRequest  true  "Set point payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/chamber/setpoint [put]
// @Security     BearerAuth
func (h *Handler) setSetPoint(c *gin.Context) {
	var req setPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Chamber.SetSetPoint(c.Request.Context(), req.Loop, *req.Value); err != nil {
		h.respondDeviceError(c, "chamber_set_setpoint_failed", err, "loop", req.Loop)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusApplied, "loop": req.Loop, "value": *req.Value})
}

// @Summary      Read loop process value
// @Tags         chamber
// @Produce      json
// @Param        loop  path   int  true  "Loop number (1=temperature, 2=humidity)"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/chamber/loops/{loop}/pv [get]
// @Security     BearerAuth
func (h *Handler) getProcessValue(c *gin.Context) {
	loop, ok := intParam(c, "loop")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidLoop})
		return
	}
	pv, err := h.services.Monitoring.ProcessValue(c.Request.Context(), loop)
	if err != nil {
		h.respondDeviceError(c, "chamber_get_pv_failed", err, "loop", loop)
		return
	}
	c.JSON(http.StatusOK, gin.H{"loop": loop, "process_value": pv})
}

// @Summary      Read loop set point
// @Tags         chamber
// @Produce      json
// @Param        loop  path   int  true  "Loop number"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/chamber/loops/{loop}/sp [get]
// @Security     BearerAuth
func (h *Handler) getSetPoint(c *gin.Context) {
	loop, ok := intParam(c, "loop")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidLoop})
		return
	}
	sp, err := h.services.Monitoring.SetPointValue(c.Request.Context(), loop)
	if err != nil {
		h.respondDeviceError(c, "chamber_get_sp_failed", err, "loop", loop)
		return
	}
	c.JSON(http.StatusOK, gin.H{"loop": loop, "set_point": sp})
}

// @Summary      Read cascade set point
// @Tags         cascade
// @Produce      json
// @Param        cascade  path  int  true  "Cascade number"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/chamber/cascade/{cascade}/setpoint [get]
// @Security     BearerAuth
func (h *Handler) getCascadeSetPoint(c *gin.Context) {
	cascade, ok := intParam(c, "cascade")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidCascade})
		return
	}
	sp, err := h.services.Monitoring.CascadeSetPoint(c.Request.Context(), cascade)
	if err != nil {
		h.respondDeviceError(c, "cascade_get_sp_failed", err, "cascade", cascade)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cascade": cascade, "set_point": sp})
}

type cascadeSetPointRequest struct {
	Value *float64 `json:"value" binding:"required"`
}

// @Summary      Write cascade set point
// @Tags         cascade
// @Accept       json
// @Produce      json
// @Param        cascade  path  int                     true  "Cascade number"
// @Param        body     body  cascadeSetPointRequest  true  "Set point payload"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/chamber/cascade/{cascade}/setpoint [put]
// @Security     BearerAuth
func (h *Handler) setCascadeSetPoint(c *gin.Context) {
	cascade, ok := intParam(c, "cascade")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidCascade})
		return
	}
	var req cascadeSetPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Chamber.SetCascadeSetPoint(c.Request.Context(), cascade, *req.Value); err != nil {
		h.respondDeviceError(c, "cascade_set_sp_failed", err, "cascade", cascade)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusApplied, "cascade": cascade, "value": *req.Value})
}

// @Summary      Read cascade loop values
// @Description  Reads PV and SP of the outer or inner half of a cascade pair.
// @Tags         cascade
// @Produce      json
// @Param        cascade  path  int     true  "Cascade number"
// @Param        half     path  string  true  "Loop half"  Enums(outer,inner)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/chamber/cascade/{cascade}/loops/{half} [get]
// @Security     BearerAuth
func (h *Handler) getCascadeLoop(c *gin.Context) {
	cascade, ok := intParam(c, "cascade")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidCascade})
		return
	}
	half := strings.ToLower(c.Param("half"))
	if half != "outer" && half != "inner" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "loop half must be outer or inner"})
		return
	}
	pv, sp, err := h.services.Monitoring.CascadeLoopValues(c.Request.Context(), cascade, half == "outer")
	if err != nil {
		h.respondDeviceError(c, "cascade_get_loop_failed", err, "cascade", cascade, "half", half)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cascade": cascade, "half": half, "process_value": pv, "set_point": sp})
}

// @Summary      List cached profiles
// @Tags         profiles
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, profiles"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/chamber/profiles [get]
// @Security     BearerAuth
func (h *Handler) listProfiles(c *gin.Context) {
	profiles := h.services.Profiles.List(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"count": len(profiles), "profiles": profiles})
}

// @Summary      Re-enumerate device profiles
// @Description  Walks profile slots 1..40 on the device and rebuilds the cache. Slow: settles between commands.
// @Tags         profiles
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, profiles"
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/chamber/profiles/refresh [post]
// @Security     BearerAuth
func (h *Handler) refreshProfiles(c *gin.Context) {
	profiles, err := h.services.Profiles.Refresh(c.Request.Context())
	if err != nil {
		h.respondDeviceError(c, "profiles_refresh_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(profiles), "profiles": profiles})
}

type selectProfileRequest struct {
	Number int `json:"number" binding:"required"` // 1..40
}

// @Summary      Select profile
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        body  body   selectProfileRequest  true  "Profile payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/chamber/profile [put]
// @Security     BearerAuth
func (h *Handler) selectProfile(c *gin.Context) {
	var req selectProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Chamber.SelectProfile(c.Request.Context(), req.Number); err != nil {
		h.respondDeviceError(c, "profile_select_failed", err, "number", req.Number)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusSelected, "number": req.Number})
}

// @Summary      Set program execution mode
// @Description  Forwards start/stop/pause/resume to the selected profile. The device is authoritative for the resulting state.
// @Tags         program
// @Produce      json
// @Param        mode  path  string  true  "Execution mode"  Enums(start,stop,pause,resume)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/chamber/program/{mode} [post]
// @Security     BearerAuth
func (h *Handler) setProgramMode(c *gin.Context) {
	mode := c.Param("mode")
	if err := h.services.Chamber.Program(c.Request.Context(), mode); err != nil {
		h.respondDeviceError(c, "program_mode_failed", err, "mode", mode)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        statusApplied,
		"mode":          strings.ToUpper(mode),
		"program_state": h.services.Chamber.ProgramState(),
	})
}

// @Summary      Read ramp rate or time
// @Tags         ramp
// @Produce      json
// @Param        loop   query  int     true  "Loop number"
// @Param        param  query  string  true  "Ramp parameter"  Enums(rate,time)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/chamber/ramp [get]
// @Security     BearerAuth
func (h *Handler) getRamp(c *gin.Context) {
	loop, err := strconv.Atoi(c.DefaultQuery("loop", "1"))
	if err != nil || loop <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidLoop})
		return
	}
	param := c.Query("param")
	value, err := h.services.Chamber.RampValue(c.Request.Context(), loop, param)
	if err != nil {
		h.respondDeviceError(c, "ramp_get_failed", err, "loop", loop, "param", param)
		return
	}
	c.JSON(http.StatusOK, gin.H{"loop": loop, "param": param, "value": value})
}

type rampValueRequest struct {
	Loop  int      `json:"loop" binding:"required"`
	Param string   `json:"param" binding:"required"` // rate | time
	Value *float64 `json:"value" binding:"required"`
}

// @Summary      Write ramp rate or time
// @Tags         ramp
// @Accept       json
// @Produce      json
// @Param        body  body   rampValueRequest  true  "Ramp payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/chamber/ramp [put]
// @Security     BearerAuth
func (h *Handler) setRamp(c *gin.Context) {
	var req rampValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Chamber.SetRampValue(c.Request.Context(), req.Loop, req.Param, *req.Value); err != nil {
		h.respondDeviceError(c, "ramp_set_failed", err, "loop", req.Loop, "param", req.Param)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusApplied, "loop": req.Loop, "param": req.Param, "value": *req.Value})
}

type rampScaleRequest struct {
	Loop  int    `json:"loop" binding:"required"`
	Scale string `json:"scale" binding:"required"` // HOURS | MINUTES
}

// @Summary      Set ramp scale
// @Description  Unrecognized scales are rejected locally; no command reaches the device.
// @Tags         ramp
// @Accept       json
// @Produce      json
// @Param        body  body   rampScaleRequest  true  "Scale payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/chamber/ramp/scale [put]
// @Security     BearerAuth
func (h *Handler) setRampScale(c *gin.Context) {
	var req rampScaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Chamber.SetRampScale(c.Request.Context(), req.Loop, req.Scale); err != nil {
		h.respondDeviceError(c, "ramp_scale_failed", err, "loop", req.Loop, "scale", req.Scale)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusApplied, "loop": req.Loop, "scale": strings.ToUpper(req.Scale)})
}

type rampActionRequest struct {
	Loop   int    `json:"loop" binding:"required"`
	Action string `json:"action" binding:"required"` // OFF | STARTUP | SETPOINT | BOTH
}

// @Summary      Set ramp action
// @Tags         ramp
// @Accept       json
// @Produce      json
// @Param        body  body   rampActionRequest  true  "Action payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/chamber/ramp/action [put]
// @Security     BearerAuth
func (h *Handler) setRampAction(c *gin.Context) {
	var req rampActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Chamber.SetRampAction(c.Request.Context(), req.Loop, req.Action); err != nil {
		h.respondDeviceError(c, "ramp_action_failed", err, "loop", req.Loop, "action", req.Action)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusApplied, "loop": req.Loop, "action": strings.ToUpper(req.Action)})
}

// @Summary      Read output state
// @Description  done is true only when the device reports exactly ON; any other token reads as false.
// @Tags         outputs
// @Produce      json
// @Param        output  path  int  true  "Output number"
// @Success      200  {object}  map[string]interface{}  "output, state, done"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/chamber/outputs/{output} [get]
// @Security     BearerAuth
func (h *Handler) getOutput(c *gin.Context) {
	output, ok := intParam(c, "output")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidOutput})
		return
	}
	state, err := h.services.Chamber.OutputState(c.Request.Context(), output)
	if err != nil {
		h.respondDeviceError(c, "output_get_failed", err, "output", output)
		return
	}
	c.JSON(http.StatusOK, gin.H{"output": output, "state": state, "done": state == "ON"})
}

// @Summary      Toggle output
// @Description  Reads the output state and writes the inverse. Not atomic: a concurrent external change between read and write wins or loses silently.
// @Tags         outputs
// @Produce      json
// @Param        output  path  int  true  "Output number"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/chamber/outputs/{output}/toggle [post]
// @Security     BearerAuth
func (h *Handler) toggleOutput(c *gin.Context) {
	output, ok := intParam(c, "output")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidOutput})
		return
	}
	if err := h.services.Chamber.ToggleOutput(c.Request.Context(), output); err != nil {
		h.respondDeviceError(c, "output_toggle_failed", err, "output", output)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusToggled, "output": output})
}
