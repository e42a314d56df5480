package server

import (
	"errors"
	"net/http"
	"strconv"

	"gym-service/internal/domain"

	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"
)

func (s *Server) CurrentPass(c echo.Context) error {
	userID := currentUserID(c)
	ctx := c.Request().Context()

	pass, err := s.passService.CurrentPass(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to fetch current pass")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to fetch pass status",
		})
	}

	// pass is null when the user has no active pass; clients rely on that.
	return c.JSON(http.StatusOK, map[string]interface{}{
		"pass": pass,
	})
}

func (s *Server) ActivatePass(c echo.Context) error {
	var req domain.ActivatePassRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	userID := currentUserID(c)
	ctx := c.Request().Context()

	pass, err := s.passService.ActivatePass(ctx, userID, req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPassType) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error":   "Invalid pass type",
				"message": `Pass type must be either "day", "week", "month", or "year"`,
			})
		}
		log.WithError(err).WithField("user_id", userID).Error("Failed to activate pass")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to activate pass",
		})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Pass activated successfully",
		"pass":    pass,
	})
}

func (s *Server) PassHistory(c echo.Context) error {
	limit := 20
	offset := 0
	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if o := c.QueryParam("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	userID := currentUserID(c)
	ctx := c.Request().Context()

	passes, err := s.passService.History(ctx, userID, limit, offset)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to fetch pass history")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to fetch pass history",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"passes": passes,
	})
}
