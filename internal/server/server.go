// Package server
//
// @title Lessond API
// @version 1.0
// @description Curriculum lesson service API
// @host localhost:8080
// @BasePath /
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lessond-dev/lessond/internal/auth"
	"github.com/lessond-dev/lessond/internal/config"
	"github.com/lessond-dev/lessond/internal/lessons"
	"github.com/lessond-dev/lessond/internal/models"
)

// Server represents the HTTP server
type Server struct {
	router         *gin.Engine
	db             *gorm.DB
	config         *config.Config
	logger         zerolog.Logger
	validator      *validator.Validate
	asynqClient    *asynq.Client
	lessonsService *lessons.Service
	version        string
	startedAt      time.Time
}

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	// Initialize database with production settings
	db, err := initDatabase(cfg, zlog)
	if err != nil {
		return nil, err
	}

	// Run database migrations
	if err := models.AutoMigrate(db); err != nil {
		return nil, err
	}

	// Initialize JWT authentication
	// Load JWT secret from database (auto-generated during first setup)
	var appConfig models.Config
	if err := db.First(&appConfig).Error; err == nil {
		// Config exists, use persisted JWT secret
		auth.InitializeJWT(appConfig.JWTSecret)
		zlog.Debug().Msg("Loaded JWT secret from database")
	} else {
		// No config yet - first setup hasn't happened
		// JWT will be initialized during setupFirstAdmin
		zlog.Info().Msg("No config found - JWT will be initialized during first setup")
	}

	// Register the slug validator on gin's binding engine so request
	// structs can use binding:"slug". Slugs become URL path segments and
	// content file names, so the charset is strict.
	validate, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil, fmt.Errorf("unexpected gin binding validator engine")
	}
	if err := validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRe.MatchString(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("failed to register slug validator: %w", err)
	}

	// Initialize Asynq client for enqueueing lint and import tasks
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr: cfg.Redis.Address,
	})

	// Initialize lessons service
	lessonsService := lessons.NewService(db, cfg, zlog)

	// Create server
	server := &Server{
		db:             db,
		config:         cfg,
		logger:         zlog,
		validator:      validate,
		asynqClient:    asynqClient,
		lessonsService: lessonsService,
		version:        version,
		startedAt:      time.Now().UTC(),
	}

	// Setup router
	server.setupRouter()

	return server, nil
}

// initDatabase initializes the database connection with production settings
func initDatabase(cfg *config.Config, zlog zerolog.Logger) (*gorm.DB, error) {
	const (
		maxOpenConns      = 8         // Reduced for SQLite efficiency
		maxIdleConns      = 4         // Reduced proportionally
		connMaxLifetime   = 300       // 5 minutes
		busyTimeout       = 5000      // 5 seconds
		cacheSize         = 10000     // 10MB
		mmapSize          = 134217728 // 128MB
		walAutocheckpoint = 1000      // WAL auto-checkpoint pages
	)

	// Open database connection
	db, err := gorm.Open(sqlite.Open(cfg.Database.URL), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Get underlying sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool settings
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Second)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Apply SQLite pragmas directly (connection string pragmas may not work with all drivers)
	// WAL mode must be set first for optimal concurrency
	pragmas := []string{
		"PRAGMA journal_mode=WAL", // Enable WAL mode for better concurrency
		"PRAGMA synchronous=NORMAL", // Faster than FULL, still safe with WAL
		fmt.Sprintf("PRAGMA wal_autocheckpoint=%d", walAutocheckpoint),
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout),
		fmt.Sprintf("PRAGMA cache_size=-%d", cacheSize),
		"PRAGMA foreign_keys=1",
		"PRAGMA temp_store=2",
		fmt.Sprintf("PRAGMA mmap_size=%d", mmapSize),
	}

	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			zlog.Warn().Str("pragma", pragma).Err(err).Msg("Failed to apply pragma")
		}
	}

	return db, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	// Set Gin mode based on environment
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	// CORS middleware
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint (outside /api, never guarded)
	s.router.GET("/health", s.healthCheck)

	// Open-access endpoints: the guard skips these, matched per method so
	// the authoring verbs on the same patterns stay protected. Everything
	// else under /api requires a session user.
	openAccess := []string{
		"POST /api/setup",
		"POST /api/auth/login",
		"GET /api/tracks",
		"GET /api/lessons",
		"GET /api/lessons/:track/:slug",
		"GET /api/lessons/:track/:slug/html",
	}

	// One shared pre-request hook for the whole API surface
	api := s.router.Group("/api")
	api.Use(SessionGuard(s.db, s.logger, openAccess...))
	{
		// First-run setup and auth
		api.POST("/setup", s.setupFirstAdmin)
		api.POST("/auth/login", s.login)
		api.DELETE("/auth/logout", s.logout)
		api.GET("/auth/me", s.getCurrentUser)

		// Public curriculum reads (open access; members-only lessons still
		// require a session, checked in the handler)
		api.GET("/tracks", s.listTracks)
		api.GET("/lessons", s.listLessons)
		api.GET("/lessons/:track/:slug", s.getLesson)
		api.GET("/lessons/:track/:slug/html", s.getLessonHTML)

		// Lesson authoring (session required)
		api.POST("/lessons", s.createLesson)
		api.PUT("/lessons/:track/:slug", s.updateLesson)
		api.DELETE("/lessons/:track/:slug", s.deleteLesson)

		// Lint / QA
		api.POST("/lint", s.triggerCurriculumLint)
		api.GET("/lint/reports", s.listLintReports)
		api.POST("/lessons/:track/:slug/lint", s.triggerLessonLint)
		api.GET("/lessons/:track/:slug/lint", s.getLessonLintReport)

		// Content import
		api.POST("/content/import", s.importContent)

		// System information
		api.GET("/system/info", s.getSystemInfo)

		// User management (admin only)
		userRoutes := api.Group("/users")
		userRoutes.Use(AdminOnlyMiddleware(s.logger))
		{
			userRoutes.GET("", s.listUsers)
			userRoutes.POST("", s.createUser)
			userRoutes.DELETE("/:id", s.deleteUser)
		}

		// Site configuration (admin only)
		configRoutes := api.Group("/config")
		configRoutes.Use(AdminOnlyMiddleware(s.logger))
		{
			configRoutes.GET("", s.getConfig)
			configRoutes.PATCH("", s.updateConfig)
		}
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// @Router /health [get]
// @Success 200 {object} map[string]interface{}
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "lessond-api",
	})
}

// GetDB returns the database connection for use by workers
func (s *Server) GetDB() *gorm.DB {
	return s.db
}

// Router returns the configured gin engine, used by handler tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	port := ":8080"

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Create HTTP server with production timeouts
	srv := &http.Server{
		Addr:              port,
		Handler:           s.router,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       300 * time.Second, // 5 minutes
	}

	// Start server in goroutine
	go func() {
		s.logger.Info().Str("port", port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	// Close Asynq client
	if err := s.asynqClient.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Error closing Asynq client")
	}
	s.logger.Info().Msg("Asynq client closed successfully")

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	s.logger.Info().Msg("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")

	// Close database connection to flush WAL writes
	if sqlDB, err := s.db.DB(); err == nil {
		s.logger.Info().Msg("Closing database connection...")
		if err := sqlDB.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Error closing database")
		} else {
			s.logger.Info().Msg("Database closed successfully")
		}
	}

	return nil
}
