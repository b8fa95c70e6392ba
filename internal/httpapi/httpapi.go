// Package httpapi is the daemon's HTTP surface: liveness/metrics for
// operators, a JWT session-login endpoint, and a read-only WebSocket event
// feed. It deliberately renders nothing — no dashboard, no templates — so
// it stays on the right side of spec.md's "rendering any web UI" Non-goal;
// everything here is status/telemetry plumbing the way the teacher's
// internal/api router wires gin, cors, and prometheus together.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/sugarbeard/sugarbeardd/internal/authseam"
	"github.com/sugarbeard/sugarbeardd/internal/battery"
	"github.com/sugarbeard/sugarbeardd/internal/eventbus"
	"github.com/sugarbeard/sugarbeardd/internal/orchestrator"
	"github.com/sugarbeard/sugarbeardd/pkg/utils"
)

// Credentials is the subset of Orchestrator the session-login handler
// needs, kept narrow so this package doesn't import the full orchestrator
// command surface.
type Credentials interface {
	Credentials() (username, password string, sessionTimeout time.Duration)
	Snapshot() orchestrator.Snapshot
}

// Router builds the gin engine wiring /healthz, /metrics, the JWT session
// endpoint, and the read-only WebSocket event feed.
type Router struct {
	Engine *gin.Engine
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NewRouter wires the HTTP surface. bus is subscribed once at startup to
// keep metrics gauges current; each /ws client gets its own subscription
// per spec.md §3's "shared by value" event-channel ownership rule.
func NewRouter(core Credentials, bus *eventbus.Bus, seam *authseam.Seam, metrics *Metrics, log *logrus.Logger) *Router {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	go watchBusForMetrics(bus, metrics)

	r.GET("/healthz", func(c *gin.Context) {
		utils.SendSuccess(c, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/status", func(c *gin.Context) {
		utils.SendSuccess(c, core.Snapshot())
	})

	r.POST("/api/v1/session", func(c *gin.Context) {
		handleSession(c, core, seam)
	})

	r.GET("/ws", func(c *gin.Context) {
		handleWebSocket(c, bus, log)
	})

	return &Router{Engine: r}
}

func corsMiddleware() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowCredentials = false
	cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	return cors.New(cfg)
}

type sessionRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func handleSession(c *gin.Context, core Credentials, seam *authseam.Seam) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, err.Error())
		return
	}
	user, pass, timeout := core.Credentials()
	if req.Username != user || req.Password != pass {
		utils.SendError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, expiresAt, err := seam.Issue(req.Username, timeout)
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError, err.Error())
		return
	}
	utils.SendSuccess(c, gin.H{"token": token, "expires_at": expiresAt})
}

// AuthRequired returns middleware gating a route behind a Bearer session
// token, used by daemon deployments that mount additional mutating routes.
func AuthRequired(seam *authseam.Seam) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			utils.SendError(c, http.StatusUnauthorized, "missing bearer token")
			c.Abort()
			return
		}
		if _, err := seam.Verify(header[len(prefix):]); err != nil {
			utils.SendError(c, http.StatusUnauthorized, err.Error())
			c.Abort()
			return
		}
		c.Next()
	}
}

func handleWebSocket(c *gin.Context, bus *eventbus.Bus, log *logrus.Logger) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Debug("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ch, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	for ev := range ch {
		if err := conn.WriteJSON(ev); err != nil {
			log.WithError(err).Debug("websocket write failed")
			return
		}
	}
}

// watchBusForMetrics subscribes once for the lifetime of the process and
// keeps the Prometheus gauges/counter current off of every published tick.
func watchBusForMetrics(bus *eventbus.Bus, metrics *Metrics) {
	ch, _ := bus.Subscribe()
	for ev := range ch {
		switch v := ev.(type) {
		case orchestrator.Snapshot:
			metrics.observeSnapshot(v)
		case battery.TapEvent:
			metrics.observeTap(v)
		}
	}
}
