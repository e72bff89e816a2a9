package db

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats is a point-in-time snapshot of the connection pool, reported by
// the database health endpoint.
type PoolStats struct {
	Total       int32  `json:"total_conns"`
	Idle        int32  `json:"idle_conns"`
	InUse       int32  `json:"in_use_conns"`
	Max         int32  `json:"max_conns"`
	Acquires    int64  `json:"acquire_count"`
	AcquireWait string `json:"acquire_wait"`
}

type healthReport struct {
	Status string     `json:"status"`
	Error  string     `json:"error,omitempty"`
	Pool   *PoolStats `json:"pool"`
}

// Stats snapshots pool counters.
func Stats(pool *pgxpool.Pool) *PoolStats {
	s := pool.Stat()
	return &PoolStats{
		Total:       s.TotalConns(),
		Idle:        s.IdleConns(),
		InUse:       s.AcquiredConns(),
		Max:         s.MaxConns(),
		Acquires:    s.AcquireCount(),
		AcquireWait: s.AcquireDuration().String(),
	}
}

// HealthHandler serves the database health endpoint: a bounded ping plus
// the pool snapshot. 503 when the database does not answer.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
		defer cancel()

		report := healthReport{Status: "healthy", Pool: Stats(pool)}
		if err := pool.Ping(ctx); err != nil {
			report.Status = "unhealthy"
			report.Error = err.Error()
			return c.JSON(http.StatusServiceUnavailable, report)
		}
		return c.JSON(http.StatusOK, report)
	}
}
