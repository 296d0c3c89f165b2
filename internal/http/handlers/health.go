package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"
)

// HandleHealthz returns a simple health check response.
func (h *Handlers) HandleHealthz(c *echo.Context) error {
	if h.Ready != nil && !h.Ready() {
		return c.String(http.StatusServiceUnavailable, "updater not running")
	}
	return c.String(http.StatusOK, "ok")
}
