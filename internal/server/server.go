package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kapu/aion2-character-go/internal/constants"
	"github.com/kapu/aion2-character-go/internal/domain"
	"github.com/kapu/aion2-character-go/internal/service/aion2"
	"github.com/kapu/aion2-character-go/internal/util"
)

// CharacterService is what the HTTP layer needs from the lookup service.
type CharacterService interface {
	Lookup(ctx context.Context, server, name, classHint string, forceRefresh bool) (*domain.CharacterRecord, error)
	LookupByURL(ctx context.Context, detailURL, server, name string) (*domain.CharacterRecord, error)
	CollectAbyssTargets(ctx context.Context, q aion2.AbyssQuery) ([]domain.RankingTarget, error)
	SyncAbyss(ctx context.Context, q aion2.AbyssQuery) ([]*domain.CharacterRecord, error)
	StreamAbyss(ctx context.Context, q aion2.AbyssQuery, handle aion2.RecordHandler) error
	BreakerStatus() *util.CircuitBreakerStatus
}

// Server wraps the gin router and its listener.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	characters CharacterService
	logger     *zap.Logger
}

func New(addr string, characters CharacterService, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		router:     router,
		characters: characters,
		logger:     logger,
	}

	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/characters/:server/:name", s.getCharacter)
	router.POST("/characters/by-url", s.getCharacterByURL)

	router.GET("/rankings/abyss", s.listAbyssTargets)
	router.POST("/rankings/abyss/sync", s.syncAbyss)
	router.GET("/ws/rankings/abyss", s.streamAbyss)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: constants.HTTPConfig.ReadHeaderTimeout,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
