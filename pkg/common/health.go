package common

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Health states reported by the health endpoints
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

var startedAt = time.Now()

// HealthResponse represents health check response
type HealthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version string            `json:"version"`
	Uptime  string            `json:"uptime"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// HealthCheck returns a liveness handler that always reports healthy
func HealthCheck(serviceName, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, newHealthResponse(serviceName, version, StatusHealthy, nil))
	}
}

// HealthCheckWithDeps returns a readiness handler. Checks run concurrently and
// any failure turns the response into a 503.
func HealthCheckWithDeps(serviceName, version string, checks map[string]func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		results := RunChecks(c.Request.Context(), checks)

		status := StatusHealthy
		for _, result := range results {
			if result != StatusHealthy {
				status = StatusUnhealthy
				break
			}
		}

		code := http.StatusOK
		if status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, newHealthResponse(serviceName, version, status, results))
	}
}

// RunChecks runs every check concurrently and returns "healthy" or
// "unhealthy: <reason>" per name. Checks still running when ctx ends are
// reported as timed out.
func RunChecks(ctx context.Context, checks map[string]func() error) map[string]string {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]string, len(checks))
	)

	for name, check := range checks {
		wg.Add(1)
		go func(name string, check func() error) {
			defer wg.Done()
			result := StatusHealthy
			if err := check(); err != nil {
				result = StatusUnhealthy + ": " + err.Error()
			}
			mu.Lock()
			results[name] = result
			mu.Unlock()
		}(name, check)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		mu.Lock()
		for name := range checks {
			if _, ok := results[name]; !ok {
				results[name] = StatusUnhealthy + ": check timed out"
			}
		}
		snapshot := make(map[string]string, len(results))
		for k, v := range results {
			snapshot[k] = v
		}
		mu.Unlock()
		return snapshot
	}

	return results
}

func newHealthResponse(serviceName, version, status string, checks map[string]string) HealthResponse {
	return HealthResponse{
		Status:  status,
		Service: serviceName,
		Version: version,
		Uptime:  time.Since(startedAt).Round(time.Second).String(),
		Checks:  checks,
	}
}
