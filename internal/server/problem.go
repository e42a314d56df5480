package server

import (
	"errors"
	"net/http"
	"strconv"

	"gym-service/internal/domain"

	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"
)

func (s *Server) CreateProblem(c echo.Context) error {
	var req domain.CreateProblemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	userID := currentUserID(c)
	ctx := c.Request().Context()

	problem, err := s.problemService.CreateProblem(ctx, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidProblemName):
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Problem name required",
			})
		case errors.Is(err, domain.ErrInvalidGrade):
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Grade must be between V0 and V12",
			})
		case errors.Is(err, domain.ErrInvalidStyle):
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Invalid problem style",
			})
		case errors.Is(err, domain.ErrImageRequired):
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Problem and wall images are required",
			})
		}
		log.WithError(err).Error("Failed to create problem")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}

	return c.JSON(http.StatusCreated, problem)
}

func (s *Server) GetProblem(c echo.Context) error {
	problemID := c.Param("id")
	ctx := c.Request().Context()

	problem, err := s.problemService.GetProblem(ctx, problemID)
	if err != nil {
		if errors.Is(err, domain.ErrProblemNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Problem not found",
			})
		}
		log.WithError(err).WithField("problem_id", problemID).Error("Failed to get problem")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}

	return c.JSON(http.StatusOK, problem)
}

func (s *Server) ListProblems(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	ctx := c.Request().Context()

	problems, err := s.problemService.ListProblems(ctx, limit, offset)
	if err != nil {
		log.WithError(err).Error("Failed to list problems")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}

	return c.JSON(http.StatusOK, problems)
}
