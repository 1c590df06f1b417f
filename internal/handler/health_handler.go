package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/survey-seeder/internal/response"
)

// HealthHandler reports liveness and dependency reachability.
type HealthHandler struct {
	pool      *pgxpool.Pool
	rdb       *redis.Client
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler. Either dependency may be nil.
func NewHealthHandler(pool *pgxpool.Pool, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{pool: pool, rdb: rdb, startTime: time.Now()}
}

type healthStatus struct {
	Status     string            `json:"status"`
	Uptime     string            `json:"uptime"`
	Goroutines int               `json:"goroutines"`
	Checks     map[string]string `json:"checks"`
}

// Health godoc
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := healthStatus{
		Status:     "ok",
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		Checks:     map[string]string{},
	}

	if h.pool != nil {
		status.Checks["postgres"] = check(h.pool.Ping(ctx))
	}
	if h.rdb != nil {
		status.Checks["redis"] = check(h.rdb.Ping(ctx).Err())
	}

	code := http.StatusOK
	for _, v := range status.Checks {
		if v != "ok" {
			status.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	response.Success(c, code, status)
}

func check(err error) string {
	if err != nil {
		return err.Error()
	}
	return "ok"
}
