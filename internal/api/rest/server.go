package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openhauscore/kc868/internal/api/websocket"
	"github.com/openhauscore/kc868/internal/board"
	"github.com/openhauscore/kc868/internal/config"
	"github.com/openhauscore/kc868/internal/types"
	"go.uber.org/zap"
)

// SystemController is the slice of the lifecycle manager the REST
// layer needs for the system endpoints.
type SystemController interface {
	GetCurrentStatus() types.SystemStatus
	Shutdown(ctx context.Context) error
}

type Server struct {
	router  *gin.Engine
	board   *board.Board
	profile *board.Profile
	logger  *zap.Logger
	server  *http.Server
	wsHub   *websocket.Hub
	lm      SystemController
}

func NewServer(cfg *config.Config, b *board.Board, profile *board.Profile, logger *zap.Logger, wsHub *websocket.Hub, lm SystemController) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:  gin.New(),
		board:   b,
		profile: profile,
		logger:  logger,
		wsHub:   wsHub,
		lm:      lm,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
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

// setupRoutes registers the closed route set of the controller. The
// board speaks the original KC868 URL scheme: the index page doubles
// as the control endpoint via ?relay=&state= query parameters.
func (s *Server) setupRoutes() {
	// Middleware
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(gin.Recovery())
	s.router.Use(CORSMiddleware())

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/", s.index)

	api := s.router.Group("/api")
	{
		api.GET("/state", s.getState)
		api.GET("/board", s.getBoard)
		api.GET("/control", s.control)
		api.GET("/system/status", s.getSystemStatus)
		api.POST("/system/shutdown", s.shutdown)
	}

	s.router.GET("/ws", s.wsLiveConnection)
}

// WebSocket handler
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
