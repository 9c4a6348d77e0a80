package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"chamberctl/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// parseTimeRange reads optional from/to query params, treating a date-only
// 'to' as end-of-day inclusive, and validates ordering.
func parseTimeRange(c *gin.Context) (from, to time.Time, ok bool) {
	var err error
	if qs := c.Query("from"); qs != "" {
		from, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return from, to, false
		}
	}
	if qs := c.Query("to"); qs != "" {
		to, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return from, to, false
		}
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
		return from, to, false
	}
	return from, to, true
}

// @Summary      List event log
// @Description  Filter events by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). If 'to' is date-only, it is treated as end-of-day inclusive.
// @Tags         logs
// @Produce      json
// @Param        from  query   string  false  "Start of range"  example(2026-08-01)
// @Param        to    query   string  false  "End of range. Date-only treated as end of day."  example(2026-08-31)
// @Param        type  query   string  false  "Event type"  Enums(PROGRAM,PROFILE,SETPOINT,UNITS,RAMP,OUTPUT,ERROR,TELEMETRY)
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     BearerAuth
func (h *Handler) getLogs(c *gin.Context) {
	from, to, ok := parseTimeRange(c)
	if !ok {
		return
	}
	eventType := strings.ToUpper(strings.TrimSpace(c.Query("type")))
	events, err := h.services.EventLog.List(c.Request.Context(), service.LogFilter{
		From: from,
		To:   to,
		Type: eventType,
	})
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load logs", "logs_list_failed", err,
			"from", from, "to", to, "type", eventType)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// @Summary      List telemetry readings
// @Description  Persisted process-value and set-point samples collected by the background poller.
// @Tags         readings
// @Produce      json
// @Param        from  query   string  false  "Start of range"  example(2026-08-01)
// @Param        to    query   string  false  "End of range. Date-only treated as end of day."  example(2026-08-31)
// @Param        loop  query   int     false  "Loop number; omit for all loops"
// @Success      200   {object}  map[string]interface{}  "count, readings"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/readings [get]
// @Security     BearerAuth
func (h *Handler) getReadings(c *gin.Context) {
	from, to, ok := parseTimeRange(c)
	if !ok {
		return
	}
	var loop int
	if qs := c.Query("loop"); qs != "" {
		v, err := strconv.Atoi(qs)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidLoop})
			return
		}
		loop = v
	}
	readings, err := h.services.Readings.History(c.Request.Context(), service.ReadingFilter{
		From: from,
		To:   to,
		Loop: loop,
	})
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load readings", "readings_list_failed", err,
			"from", from, "to", to, "loop", loop)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(readings),
		"readings": readings,
	})
}

func parseQueryTime(s string) (time.Time, error) {
	// Try multiple accepted formats, normalizing to UTC.
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2026-08-27T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}
