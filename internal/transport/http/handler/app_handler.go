package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"go-auth-api/internal/core/cache"
	resp "go-auth-api/internal/transport/http/response"
)

const helloCacheTTL = time.Minute

// AppHandler serves the unauthenticated info/health/hello endpoints.
type AppHandler struct {
	Name    string
	Version string
	Env     string
	DB      *gorm.DB
	Cache   *cache.Cache
}

type appInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Env       string `json:"env"`
	GoVersion string `json:"goVersion"`
}

func (h *AppHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, resp.OK(appInfo{
		Name:      h.Name,
		Version:   h.Version,
		Env:       h.Env,
		GoVersion: runtime.Version(),
	}))
}

type healthCheck struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health pings the database and redis with a short deadline per probe.
func (h *AppHandler) Health(c *gin.Context) {
	checks := map[string]string{}
	healthy := true

	ctx, cancel := context.WithTimeout(c.Request.Context(), 300*time.Millisecond)
	defer cancel()

	checks["database"] = "up"
	if sqlDB, err := h.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "down"
		healthy = false
	}

	checks["redis"] = "up"
	if h.Cache == nil || h.Cache.Ping(ctx) != nil {
		checks["redis"] = "down"
		healthy = false
	}

	status := http.StatusOK
	out := healthCheck{Status: "ok", Checks: checks}
	if !healthy {
		status = http.StatusServiceUnavailable
		out.Status = "error"
	}
	c.JSON(status, resp.New(resp.CodeOK, out.Status, out))
}

type helloOut struct {
	Message     string `json:"message"`
	GeneratedAt string `json:"generatedAt"`
}

func (h *AppHandler) Hello(c *gin.Context) {
	out, err := cache.GetOrLoadJSON[helloOut](h.Cache, c.Request.Context(), "app:hello", helloCacheTTL,
		func(ctx context.Context) (*helloOut, error) {
			return &helloOut{
				Message:     "Hello from " + h.Name,
				GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			}, nil
		})
	if err != nil {
		status, body := resp.FromErr(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, resp.OK(out))
}
