// Package handlers contains the HTTP handlers for telemetry ingestion and card preview.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/pingcard/pingcard/internal/card"
	"github.com/pingcard/pingcard/internal/telemetry"
)

const (
	// ContextKeyRequestID stores the request id (X-Request-ID) for logging and client error references.
	ContextKeyRequestID = "request_id"

	// InternalErrorCode is a stable error code safe to return to clients.
	InternalErrorCode = "INTERNAL_ERROR"

	maxTelemetryBodySize = 1 << 20 // 1 MiB
)

// SnapshotReader exposes the snapshot the card is currently rendered from.
type SnapshotReader interface {
	Current() *telemetry.Snapshot
}

// Handlers groups all HTTP handlers and shared dependencies.
type Handlers struct {
	Sink      telemetry.Sink
	Snapshots SnapshotReader
	Renderer  *card.Renderer
	// Ready reports whether the card updater is active; nil means always ready.
	Ready func() bool
}

// RenderError returns a plain text error response.
func (h *Handlers) RenderError(c *echo.Context, err error) error {
	requestID, _ := c.Get(ContextKeyRequestID).(string)
	path := ""
	if req := c.Request(); req != nil && req.URL != nil {
		path = req.URL.Path
	}
	method := ""
	if req := c.Request(); req != nil {
		method = req.Method
	}
	c.Logger().Error("http error",
		"request_id", requestID,
		"method", method,
		"path", path,
		"ip", c.RealIP(),
		"error", err,
	)

	msg := "Internal server error."
	if requestID != "" {
		msg = fmt.Sprintf("%s Reference: %s.", msg, requestID)
	}
	msg = fmt.Sprintf("%s Code: %s.", msg, InternalErrorCode)
	return c.String(http.StatusInternalServerError, msg)
}

// RenderNotFound returns a 404 response.
func RenderNotFound(c *echo.Context) error {
	return c.String(http.StatusNotFound, "404 page not found")
}

type errorResponse struct {
	Error string `json:"error"`
}

func badRequest(c *echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}
