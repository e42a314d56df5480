package server

import (
	"errors"
	"net/http"

	"gym-service/internal/domain"

	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"
)

func (s *Server) CreateGuild(c echo.Context) error {
	var req domain.CreateGuildRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	userID := currentUserID(c)
	ctx := c.Request().Context()

	guild, err := s.guildService.CreateGuild(ctx, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidGuildName):
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Guild name required",
			})
		case errors.Is(err, domain.ErrGuildNameExists):
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Guild name already exists",
			})
		}
		log.WithError(err).Error("Failed to create guild")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}

	return c.JSON(http.StatusCreated, guild)
}

func (s *Server) JoinGuild(c echo.Context) error {
	guildID := c.Param("id")
	userID := currentUserID(c)
	ctx := c.Request().Context()

	guild, err := s.guildService.JoinGuild(ctx, guildID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrGuildNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Guild not found",
			})
		case errors.Is(err, domain.ErrAlreadyGuildMember):
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Already a member",
			})
		}
		log.WithError(err).WithField("guild_id", guildID).Error("Failed to join guild")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}

	return c.JSON(http.StatusOK, guild)
}

func (s *Server) InviteToGuild(c echo.Context) error {
	guildID := c.Param("id")

	var req domain.InviteGuildRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	ctx := c.Request().Context()
	if err := s.guildService.InviteToGuild(ctx, guildID, req.UserID); err != nil {
		switch {
		case errors.Is(err, domain.ErrGuildNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Guild not found",
			})
		case errors.Is(err, domain.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "User not found",
			})
		case errors.Is(err, domain.ErrAlreadyInvited):
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "User already invited or member",
			})
		}
		log.WithError(err).WithField("guild_id", guildID).Error("Failed to invite to guild")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "User invited",
	})
}

func (s *Server) LeaveGuild(c echo.Context) error {
	guildID := c.Param("id")
	userID := currentUserID(c)
	ctx := c.Request().Context()

	if err := s.guildService.LeaveGuild(ctx, guildID, userID); err != nil {
		switch {
		case errors.Is(err, domain.ErrGuildNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Guild not found",
			})
		case errors.Is(err, domain.ErrNotGuildMember):
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Not a guild member",
			})
		}
		log.WithError(err).WithField("guild_id", guildID).Error("Failed to leave guild")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Left guild",
	})
}

func (s *Server) GetGuild(c echo.Context) error {
	guildID := c.Param("id")
	ctx := c.Request().Context()

	guild, err := s.guildService.GetGuild(ctx, guildID)
	if err != nil {
		if errors.Is(err, domain.ErrGuildNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Guild not found",
			})
		}
		log.WithError(err).WithField("guild_id", guildID).Error("Failed to get guild")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}

	return c.JSON(http.StatusOK, guild)
}

func (s *Server) ListGuilds(c echo.Context) error {
	ctx := c.Request().Context()

	guilds, err := s.guildService.ListGuilds(ctx, c.QueryParam("q"))
	if err != nil {
		log.WithError(err).Error("Failed to list guilds")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}

	return c.JSON(http.StatusOK, guilds)
}
