package db

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats is a snapshot of connection pool health for the /health/db
// endpoint.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
	Healthy         bool   `json:"healthy"`
}

// GetPoolStats snapshots the pool and pings the database to confirm it is
// reachable.
func GetPoolStats(pool *pgxpool.Pool, c echo.Context) *PoolStats {
	stat := pool.Stat()
	out := &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
	}
	out.Healthy = pool.Ping(c.Request().Context()) == nil
	return out
}

// HealthHandler serves database health: 200 with pool stats when the
// database answers a ping, 503 otherwise.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		stats := GetPoolStats(pool, c)
		code := http.StatusOK
		if !stats.Healthy {
			code = http.StatusServiceUnavailable
		}
		return c.JSON(code, stats)
	}
}
