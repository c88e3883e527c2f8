package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const probeTimeout = 3 * time.Second

// HealthHandler serves the liveness probe. It answers 200 as long as the
// process can run a handler at all.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// HealthDependenciesHandler serves the readiness probe. MongoDB is the
// system of record, so a Mongo outage makes the service not ready. Redis
// only backs the login throttle, which fails open, so a Redis outage is
// reported but does not fail readiness.
type HealthDependenciesHandler struct {
	mongo *mongo.Database
	redis *redis.Client
}

func NewHealthDependenciesHandler(db *mongo.Database, rdb *redis.Client) *HealthDependenciesHandler {
	return &HealthDependenciesHandler{mongo: db, redis: rdb}
}

type probeResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                 `json:"status"`
	Dependencies map[string]probeResult `json:"dependencies"`
}

func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), probeTimeout)
	defer cancel()

	resp := readinessResponse{
		Status:       "ok",
		Dependencies: make(map[string]probeResult),
	}
	code := http.StatusOK

	if err := h.mongo.Client().Ping(ctx, nil); err != nil {
		resp.Dependencies["mongodb"] = probeResult{Status: "unhealthy", Error: err.Error()}
		resp.Status = "not ready"
		code = http.StatusServiceUnavailable
	} else {
		resp.Dependencies["mongodb"] = probeResult{Status: "ok"}
	}

	if err := h.redis.Ping(ctx).Err(); err != nil {
		resp.Dependencies["redis"] = probeResult{Status: "unhealthy", Error: err.Error()}
		if resp.Status == "ok" {
			resp.Status = "degraded"
		}
	} else {
		resp.Dependencies["redis"] = probeResult{Status: "ok"}
	}

	return c.JSON(code, resp)
}
