package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health answers "ok" while the service, and the database when one is
// given, are reachable. Load balancers poll it.
func Health(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable").SetInternal(err)
			}
		}
		return c.String(http.StatusOK, "ok")
	}
}
