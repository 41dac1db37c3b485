// Package server exposes the HTTP API: price resolution, backtests and
// the agent ensemble.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tradecouncil/internal/agent"
	"tradecouncil/internal/backtest"
	"tradecouncil/internal/config"
	"tradecouncil/internal/logger"
	"tradecouncil/internal/source"
)

// Server 提供对外 HTTP API。
type Server struct {
	addr     string
	resolver *source.Resolver
	engine   *backtest.Engine
	ensemble *agent.Ensemble
	registry *agent.Registry
	defaults config.BacktestConfig
	router   *gin.Engine
}

// Config 描述 Server 的依赖。
type Config struct {
	Addr     string
	Resolver *source.Resolver
	Engine   *backtest.Engine
	Ensemble *agent.Ensemble
	Registry *agent.Registry
	Backtest config.BacktestConfig
}

func New(cfg Config) (*Server, error) {
	if cfg.Resolver == nil {
		return nil, errors.New("resolver 不能为空")
	}
	if cfg.Engine == nil {
		cfg.Engine = backtest.NewEngine()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestID())

	s := &Server{
		addr:     cfg.Addr,
		resolver: cfg.Resolver,
		engine:   cfg.Engine,
		ensemble: cfg.Ensemble,
		registry: cfg.Registry,
		defaults: cfg.Backtest,
		router:   router,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/health")
	})
	s.router.GET("/health", s.handleHealth)

	market := s.router.Group("/api/market")
	market.GET("/prices", s.handlePrices)

	bt := s.router.Group("/api/backtest")
	bt.POST("/run", s.handleBacktestRun)
	bt.GET("/chart", s.handleBacktestChart)

	agents := s.router.Group("/api/agents")
	agents.POST("/signal", s.handleSignal)
	agents.GET("/ping", s.handleAgentsPing)
}

// requestID 给每个请求发一个短 ID,串起同一请求的日志。
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()[:8]
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		start := time.Now()
		c.Next()
		logger.Debugf("[http] %s %s %s %d %s", id, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"sources": s.resolver.SourceNames(),
	})
}

// Start 启动 HTTP 服务，阻塞直到 ctx 取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Infof("[http] listening on %s", s.addr)

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Handler 暴露底层路由，测试用。
func (s *Server) Handler() http.Handler { return s.router }
