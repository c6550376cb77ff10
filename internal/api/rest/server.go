package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/KevinKickass/OpenLaundryCore/internal/api/websocket"
	"github.com/KevinKickass/OpenLaundryCore/internal/auth"
	"github.com/KevinKickass/OpenLaundryCore/internal/config"
	"github.com/KevinKickass/OpenLaundryCore/internal/interfaces"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	router      *gin.Engine
	lm          interfaces.LifecycleManager
	logger      *zap.Logger
	server      *http.Server
	wsHub       *websocket.Hub
	authService *auth.AuthService
	gatherer    prometheus.Gatherer
}

func NewServer(cfg *config.Config, lm interfaces.LifecycleManager, logger *zap.Logger, wsHub *websocket.Hub, authService *auth.AuthService) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:      gin.New(),
		lm:          lm,
		logger:      logger,
		wsHub:       wsHub,
		authService: authService,
		gatherer:    prometheus.DefaultGatherer,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Minute, // long programs block the wash request
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("REST server failed", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down REST API server")
	return s.server.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery())
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(CORSMiddleware())

	// Public routes (no auth required)
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	v1 := s.router.Group("/api/v1")
	{
		authPublic := v1.Group("/auth")
		{
			authPublic.POST("/login", s.login)
		}

		authProtected := v1.Group("/auth")
		authProtected.Use(s.authService.AuthMiddleware())
		{
			authProtected.GET("/me", s.getCurrentUser)
		}

		// Programs catalog: Viewer+
		v1.GET("/programs", s.authService.AuthMiddleware(), auth.RequirePermission(auth.PermViewer), s.listPrograms)

		// Wash cycles: Operator+
		washes := v1.Group("/washes")
		washes.Use(s.authService.AuthMiddleware())
		washes.Use(auth.RequirePermission(auth.PermOperator))
		{
			washes.POST("", s.startWash)
		}

		machine := v1.Group("/machine")
		machine.Use(s.authService.AuthMiddleware())
		machine.Use(auth.RequirePermission(auth.PermViewer))
		{
			machine.GET("/status", s.getMachineStatus)
		}

		devices := v1.Group("/devices")
		devices.Use(s.authService.AuthMiddleware())
		{
			devices.GET("/profiles", auth.RequirePermission(auth.PermOperator), s.listProfiles)
			devices.GET("/profile", auth.RequirePermission(auth.PermOperator), s.getActiveProfile)
			devices.GET("/journal", auth.RequirePermission(auth.PermOperator), s.getJournal)
			devices.POST("/profile", auth.RequirePermission(auth.PermAdmin), s.switchProfile)
		}

		system := v1.Group("/system")
		system.Use(s.authService.AuthMiddleware())
		{
			system.GET("/status", auth.RequirePermission(auth.PermOperator), s.getSystemStatus)
			system.POST("/shutdown", auth.RequirePermission(auth.PermAdmin), s.shutdown)
		}

		// WebSocket (auth via first message)
		ws := v1.Group("/ws")
		{
			ws.GET("/live", s.wsLiveConnection)
		}
	}
}

func (s *Server) wsLiveConnection(c *gin.Context) {
	websocket.ServeWs(s.wsHub, c.Writer, c.Request)
}

// Health check (public)
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}
