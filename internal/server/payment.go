package server

import (
	"errors"
	"net/http"

	"gym-service/internal/domain"

	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"
)

type createIntentRequest struct {
	PassType string `json:"passType"`
}

func (s *Server) CreatePaymentIntent(c echo.Context) error {
	var req createIntentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	userID := currentUserID(c)
	ctx := c.Request().Context()

	intent, err := s.paymentService.CreatePassIntent(ctx, userID, req.PassType)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPassType) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error":   "Invalid pass type",
				"message": `Pass type must be either "day", "week", "month", or "year"`,
			})
		}
		log.WithError(err).WithField("user_id", userID).Error("Failed to create payment intent")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to create payment intent",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"paymentIntentId": intent.ID,
		"clientSecret":    intent.ClientSecret,
		"amount":          intent.AmountCents,
		"currency":        intent.Currency,
	})
}
