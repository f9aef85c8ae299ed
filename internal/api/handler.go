package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trading-gate/internal/events"
	"trading-gate/internal/governance"
	"trading-gate/internal/killswitch"
	"trading-gate/internal/ledger"
	"trading-gate/internal/monitor"
	"trading-gate/internal/pipeline"
	"trading-gate/pkg/db"
)

// Server wires the HTTP/WS operator surface around the gate. Mutating
// routes sit behind JWT auth; the stream and health checks do not.
type Server struct {
	Router     *gin.Engine
	Bus        *events.Bus
	DB         *db.Database
	Pipe       *pipeline.Pipeline
	Switch     *killswitch.Manager
	Governance *governance.Registry
	Books      *ledger.Memory
	Metrics    *monitor.GateMetrics
	JWTSecret  string
	Meta       SystemMeta
}

// SystemMeta describes runtime status exposed to operators.
type SystemMeta struct {
	Version       string   `json:"version"`
	Environments  []string `json:"environments"`
	Symbols       []string `json:"symbols"`
	SyntheticFeed bool     `json:"synthetic_feed"`
}

func NewServer(bus *events.Bus, database *db.Database, pipe *pipeline.Pipeline, sw *killswitch.Manager, gov *governance.Registry, books *ledger.Memory, metrics *monitor.GateMetrics, meta SystemMeta, jwtSecret string) *Server {
	r := gin.New()

	// Middleware stack (order matters!)
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(RequestLogger(metrics))
	r.Use(RateLimitMiddleware())
	r.Use(TimeoutMiddleware(30 * time.Second))
	r.Use(CORSMiddleware())

	s := &Server{
		Router:     r,
		Bus:        bus,
		DB:         database,
		Pipe:       pipe,
		Switch:     sw,
		Governance: gov,
		Books:      books,
		Metrics:    metrics,
		JWTSecret:  jwtSecret,
		Meta:       meta,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.GET("/health", s.health)
	s.Router.GET("/ws", s.websocket)

	api := s.Router.Group("/api")
	{
		api.GET("/system/status", s.getSystemStatus)

		// Auth endpoints (no auth required)
		auth := api.Group("/auth")
		{
			auth.POST("/register", s.registerUser)
			auth.POST("/login", s.loginUser)
		}

		// Protected API
		protected := api.Group("")
		protected.Use(AuthMiddleware(s.JWTSecret))
		{
			protected.POST("/orders", s.submitOrder)
			protected.GET("/executions", s.getExecutions)
			protected.GET("/executions/:run_id", s.getExecution)

			protected.GET("/killswitch", s.getKillSwitch)
			protected.POST("/killswitch/trigger", s.triggerKillSwitch)
			protected.POST("/killswitch/recover", s.recoverKillSwitch)
			protected.POST("/killswitch/complete-recovery", s.completeRecovery)
			protected.GET("/killswitch/history", s.getKillSwitchHistory)

			protected.GET("/governance", s.getGovernance)
			protected.POST("/risk/preview", s.previewRisk)
			protected.GET("/metrics", s.getMetrics)
		}
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Start(addr string) error {
	return s.Router.Run(addr)
}
