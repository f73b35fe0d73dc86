package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	api "github.com/filevault/backend/internal/api/http"
	"github.com/filevault/backend/internal/api/middleware"
	"github.com/filevault/backend/internal/domain/session"
	"github.com/filevault/backend/internal/domain/user"
	"github.com/filevault/backend/internal/infrastructure/config"
	"github.com/filevault/backend/internal/infrastructure/logging"
	"github.com/filevault/backend/internal/infrastructure/monitoring"
	"github.com/filevault/backend/internal/store"
)

// Server wraps the HTTP server and dependencies.
type Server struct {
	router   *gin.Engine
	store    *store.Store
	users    *user.Manager
	sessions *session.Manager
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewServer creates a new server instance.
func NewServer(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing file server",
		zap.String("port", cfg.Server.Port),
		zap.String("store_root", cfg.Store.Root),
	)

	metrics := monitoring.NewMetrics()

	fileStore, err := store.New(store.Config{
		Root:            cfg.Store.Root,
		ExtraExtensions: cfg.Store.ExtraExtensions,
		WarnBytes:       cfg.Store.WarnBytes,
		CapacityBytes:   cfg.Store.CapacityBytes,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}

	users := user.NewManager(cfg.Store.StateDir, logger)
	sessions := session.NewManager(cfg.Session.TTL, cfg.Store.StateDir, logger)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := api.NewHandlers(fileStore, users, sessions, metrics, logger)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth
	auth := router.Group("/api/auth")
	auth.POST("/register", handlers.Register)
	auth.POST("/login", handlers.Login)
	auth.POST("/logout", handlers.Logout)
	auth.GET("/status", handlers.AuthStatus)

	// File operations, gated on a valid session
	files := router.Group("/api/files", middleware.RequireSession(sessions))
	files.POST("/upload", handlers.UploadFile)
	files.GET("/list", handlers.ListFiles)
	files.GET("/download", handlers.DownloadFile)
	files.POST("/move", handlers.MoveFile)
	files.POST("/copy", handlers.CopyFile)
	files.POST("/delete", handlers.DeleteFile)

	// Folder operations
	folders := router.Group("/api/folders", middleware.RequireSession(sessions))
	folders.POST("/create", handlers.CreateFolder)
	folders.GET("/list", handlers.ListFolders)

	// Server status
	router.GET("/api/server/status", handlers.ServerStatus)

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		store:    fileStore,
		users:    users,
		sessions: sessions,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close flushes pending log output.
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")
	s.logger.Sync()
	return nil
}
