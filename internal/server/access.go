package server

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"gym-service/internal/domain"

	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"
)

// decisionStatus maps a denial code to its HTTP status: caller faults are
// 400, throttles 429, geofence rejection 403.
func decisionStatus(code string) int {
	switch code {
	case domain.CodeLocationRequired, domain.CodeInvalidLocation:
		return http.StatusBadRequest
	case domain.CodeRateLimited, domain.CodeRecentAccess:
		return http.StatusTooManyRequests
	case domain.CodeTooFar:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func decisionBody(decision *domain.AccessDecision) map[string]interface{} {
	body := map[string]interface{}{
		"message": decision.Message,
		"code":    decision.Code,
	}
	switch decision.Code {
	case domain.CodeRateLimited, domain.CodeRecentAccess:
		body["waitTime"] = decision.WaitTime
	case domain.CodeTooFar:
		body["distance"] = decision.Distance
		body["maxDistance"] = decision.MaxDistance
		body["locationAddress"] = decision.Location.Address
	}
	return body
}

func (s *Server) CheckAccess(c echo.Context) error {
	var req domain.CheckAccessRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "invalid request body",
		})
	}

	userID := currentUserID(c)
	ctx := c.Request().Context()

	decision, err := s.accessService.CheckAccess(ctx, userID, req.LocationID, req.UserLocation)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Door access check failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "Server error while checking door access",
		})
	}

	if !decision.Authorized {
		return c.JSON(decisionStatus(decision.Code), decisionBody(decision))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"message":  decision.Message,
		"location": decision.Location,
		"distance": decision.Distance,
	})
}

func (s *Server) LogAccess(c echo.Context) error {
	var req domain.LogAccessRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "invalid request body",
		})
	}

	userID := currentUserID(c)
	ctx := c.Request().Context()

	event, err := s.accessService.RecordAccess(ctx, userID, req.Location, req.UserLocation, req.Status, req.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrLocationInfoMissing) || errors.Is(err, domain.ErrInvalidAccessStatus) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"message": err.Error(),
			})
		}
		log.WithError(err).WithField("user_id", userID).Error("Failed to log door access")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "Server error while logging door access",
		})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":    "Door access logged successfully",
		"accessId":   event.ID,
		"accessTime": event.AccessTime,
	})
}

// Unlock is the composed edge flow: check, act, then log the outcome.
// Check and log stay separate service operations; the handler is the one
// place that strings them together.
func (s *Server) Unlock(c echo.Context) error {
	var req domain.LogAccessRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "invalid request body",
		})
	}

	userID := currentUserID(c)
	ctx := c.Request().Context()

	decision, err := s.accessService.CheckAccess(ctx, userID, req.Location.ID, req.UserLocation)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Door unlock check failed")
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Door unlock failed",
		})
	}

	if !decision.Authorized {
		// Policy rejections are audit-worthy; caller input faults are not.
		if decision.Code != domain.CodeLocationRequired && decision.Code != domain.CodeInvalidLocation {
			if _, logErr := s.accessService.RecordAccess(ctx, userID, req.Location, req.UserLocation, domain.AccessStatusDenied, req.SessionID); logErr != nil {
				log.WithError(logErr).WithField("user_id", userID).Error("Failed to log denied unlock")
			}
		}
		return c.JSON(decisionStatus(decision.Code), decisionBody(decision))
	}

	event, err := s.accessService.RecordAccess(ctx, userID, req.Location, req.UserLocation, domain.AccessStatusSuccess, req.SessionID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to log door unlock")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "Server error while logging door access",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"message":  "Door unlocked successfully!",
		"location": decision.Location,
		"distance": decision.Distance,
		"accessId": event.ID,
	})
}

func (s *Server) AccessStats(c echo.Context) error {
	locationID := c.QueryParam("locationId")

	hours := 1
	if h := c.QueryParam("hours"); h != "" {
		if parsed, err := strconv.Atoi(h); err == nil && parsed > 0 {
			hours = parsed
		}
	}

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	userID := currentUserID(c)
	ctx := c.Request().Context()

	stats, recent, err := s.statsService.StatsSince(ctx, since, userID, locationID)
	if err != nil {
		log.WithError(err).Error("Failed to fetch door access stats")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "Server error while fetching door access stats",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"timeRange": map[string]interface{}{
			"hours": hours,
			"since": since,
		},
		"stats":          stats,
		"recentAccesses": recent,
	})
}

func (s *Server) MyAccessHistory(c echo.Context) error {
	limit := 20
	page := 1
	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if p := c.QueryParam("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}

	userID := currentUserID(c)
	ctx := c.Request().Context()

	events, total, err := s.accessService.History(ctx, userID, limit, page)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to fetch access history")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "Server error while fetching access history",
		})
	}

	accesses := make([]map[string]interface{}, 0, len(events))
	for _, ev := range events {
		accesses = append(accesses, map[string]interface{}{
			"id":         ev.ID,
			"location":   ev.Location,
			"accessTime": ev.AccessTime,
			"status":     ev.Status,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"accesses": accesses,
		"pagination": map[string]interface{}{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

func (s *Server) LocationStats(c echo.Context) error {
	locationID := c.Param("locationId")
	if locationID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "location ID is required",
		})
	}

	days := 7
	if d := c.QueryParam("days"); d != "" {
		if parsed, err := strconv.Atoi(d); err == nil && parsed > 0 {
			days = parsed
		}
	}

	since := time.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	ctx := c.Request().Context()

	breakdown, err := s.statsService.DailyBreakdown(ctx, locationID, since)
	if err != nil {
		log.WithError(err).WithField("location_id", locationID).Error("Failed to fetch location stats")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "Server error while fetching location stats",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"locationId": locationID,
		"timeRange": map[string]interface{}{
			"days":  days,
			"since": since,
		},
		"dailyBreakdown": breakdown,
	})
}
