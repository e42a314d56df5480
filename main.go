package main

import (
	"database/sql"
	"net/http"
	"os"
	"time"

	"gym-service/internal/config"
	"gym-service/internal/geofence"
	"gym-service/internal/payment"
	"gym-service/internal/publisher"
	"gym-service/internal/repository"
	"gym-service/internal/server"
	"gym-service/internal/service"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"
)

func main() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	log.SetOutput(os.Stdout)
	log.SetLevel(log.DebugLevel)

	if err := godotenv.Load(); err != nil {
		log.Warn("Could not load .env file.")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithField("error", err).Fatal("Could not load configuration")
	}

	log.Info("Starting database migration...")
	m, err := migrate.New(cfg.DB.MigrationsPath, cfg.DB.URL)
	if err != nil {
		log.WithField("error", err).Fatal("Could not create migrate instance")
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.WithField("error", err).Fatal("Could not apply migration")
	}
	log.Info("Database migration finished successfully.")

	db, err := sql.Open("postgres", cfg.DB.URL)
	if err != nil {
		log.WithField("error", err).Fatal("Could not connect to the database")
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.DB.ConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		log.WithField("error", err).Fatal("Could not ping the database")
	}
	log.Info("Successfully connected to the PostgreSQL database.")

	catalog, err := geofence.Load(cfg.Gym.GeofencePath)
	if err != nil {
		log.WithField("error", err).Fatal("Could not load geofence locations")
	}
	log.WithField("locations", catalog.Len()).Info("Geofence catalog loaded")

	gymTZ, err := time.LoadLocation(cfg.Gym.Timezone)
	if err != nil {
		log.WithFields(log.Fields{
			"error":    err,
			"timezone": cfg.Gym.Timezone,
		}).Fatal("Could not load gym timezone")
	}

	// Audit publishing is optional: without brokers the audit service
	// runs with a nil publisher and drops events.
	var auditPublisher service.AuditPublisher
	if cfg.Kafka.Brokers != "" {
		kafkaPublisher, err := publisher.NewAuditPublisher(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			log.WithField("error", err).Fatal("Could not create audit publisher")
		}
		defer kafkaPublisher.Close()
		auditPublisher = kafkaPublisher
		log.WithField("topic", cfg.Kafka.AuditTopic).Info("Audit publishing enabled")
	} else {
		log.Warn("AUDIT_KAFKA_BROKERS is not set, audit publishing is disabled.")
	}

	var paymentProvider service.PaymentProvider
	if cfg.Stripe.SecretKey != "" {
		paymentProvider = payment.NewStripeProvider(cfg.Stripe.SecretKey)
		log.Info("Stripe payment provider configured")
	} else {
		log.Warn("STRIPE_SECRET_KEY is not set, pass payments fall back to list prices.")
	}

	// Create repositories
	userRepository := repository.NewPostgresUserRepository(db)
	accessRepository := repository.NewPostgresAccessEventRepository(db)
	passRepository := repository.NewPostgresPassRepository(db)
	guildRepository := repository.NewPostgresGuildRepository(db)
	problemRepository := repository.NewPostgresProblemRepository(db)

	// Create services
	auditService := service.NewAuditService(auditPublisher)
	pricing := service.NewPassPricing(gymTZ)
	userService := service.NewUserService(userRepository, auditService)
	accessService := service.NewAccessService(accessRepository, catalog, auditService)
	statsService := service.NewStatsService(accessRepository, userRepository, gymTZ)
	passService := service.NewPassService(passRepository, paymentProvider, pricing, auditService)
	guildService := service.NewGuildService(guildRepository, userRepository)
	problemService := service.NewProblemService(problemRepository)
	paymentService := service.NewPaymentService(paymentProvider, pricing, userRepository)

	// Create server
	srv := server.NewServer(server.Dependencies{
		UserService:    userService,
		AccessService:  accessService,
		StatsService:   statsService,
		PassService:    passService,
		GuildService:   guildService,
		ProblemService: problemService,
		PaymentService: paymentService,
		DB:             db,
	})

	// Setup Echo
	e := echo.New()

	// Health check
	e.GET("/health", srv.HealthCheck)

	api := e.Group("/api")

	// Registration is open; everything else needs a verified identity.
	users := api.Group("/users")
	users.POST("", srv.RegisterUser)
	users.GET("/me", srv.GetProfile, server.RequireUser)
	users.PUT("/me", srv.UpdateProfile, server.RequireUser)
	users.GET("/:id", srv.GetUser, server.RequireUser)
	users.GET("", srv.ListUsers, server.RequireUser)

	doorAccess := api.Group("/door-access", server.RequireUser)
	doorAccess.POST("/check-access", srv.CheckAccess)
	doorAccess.POST("/log-access", srv.LogAccess)
	doorAccess.GET("/stats", srv.AccessStats)
	doorAccess.GET("/my-history", srv.MyAccessHistory)
	doorAccess.GET("/location-stats/:locationId", srv.LocationStats)

	api.POST("/door/unlock", srv.Unlock, server.RequireUser)

	passes := api.Group("/passes", server.RequireUser)
	passes.GET("/current", srv.CurrentPass)
	passes.POST("/activate", srv.ActivatePass)
	passes.GET("/history", srv.PassHistory)

	guilds := api.Group("/guilds", server.RequireUser)
	guilds.POST("", srv.CreateGuild)
	guilds.GET("", srv.ListGuilds)
	guilds.GET("/:id", srv.GetGuild)
	guilds.POST("/:id/join", srv.JoinGuild)
	guilds.POST("/:id/invite", srv.InviteToGuild)
	guilds.POST("/:id/leave", srv.LeaveGuild)

	problems := api.Group("/problems", server.RequireUser)
	problems.POST("", srv.CreateProblem)
	problems.GET("", srv.ListProblems)
	problems.GET("/:id", srv.GetProblem)

	payments := api.Group("/payments", server.RequireUser)
	payments.POST("/intent", srv.CreatePaymentIntent)

	log.WithField("port", cfg.HTTP.Port).Info("Gym service is starting with Echo")

	if err := e.Start(":" + cfg.HTTP.Port); err != nil && err != http.ErrServerClosed {
		log.WithField("error", err).Fatal("Echo server failed to start")
	}
}
