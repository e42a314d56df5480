package server

import (
	"database/sql"
	"net/http"

	"gym-service/internal/service"

	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"
)

type Server struct {
	userService    *service.UserService
	accessService  *service.AccessService
	statsService   *service.StatsService
	passService    *service.PassService
	guildService   *service.GuildService
	problemService *service.ProblemService
	paymentService *service.PaymentService
	db             *sql.DB
}

type Dependencies struct {
	UserService    *service.UserService
	AccessService  *service.AccessService
	StatsService   *service.StatsService
	PassService    *service.PassService
	GuildService   *service.GuildService
	ProblemService *service.ProblemService
	PaymentService *service.PaymentService
	DB             *sql.DB
}

func NewServer(d Dependencies) *Server {
	return &Server{
		userService:    d.UserService,
		accessService:  d.AccessService,
		statsService:   d.StatsService,
		passService:    d.PassService,
		guildService:   d.GuildService,
		problemService: d.ProblemService,
		paymentService: d.PaymentService,
		db:             d.DB,
	}
}

func (s *Server) HealthCheck(c echo.Context) error {
	if err := s.db.Ping(); err != nil {
		log.WithField("error", err).Error("Health check failed: database is down")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  "database connection error",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
