package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// userIDHeader carries the verified caller identity. Token verification
// happens at the authenticating gateway in front of this service; by the
// time a request arrives here, the gateway has already resolved the token
// to a user id.
const userIDHeader = "X-User-ID"

const userIDContextKey = "userID"

// RequireUser rejects requests that arrive without a verified identity.
func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := c.Request().Header.Get(userIDHeader)
		if userID == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"message": "No verified user identity provided",
			})
		}
		c.Set(userIDContextKey, userID)
		return next(c)
	}
}

func currentUserID(c echo.Context) string {
	userID, _ := c.Get(userIDContextKey).(string)
	return userID
}
