package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/pingcard/pingcard/internal/metrics"
	"github.com/pingcard/pingcard/internal/telemetry"
)

const telemetrySourceHTTP = "http"

type telemetryAccepted struct {
	Status string `json:"status"`
	Fields int    `json:"fields"`
}

// HandleTelemetryIngest accepts one telemetry update event and forwards it to the hub.
func (h *Handlers) HandleTelemetryIngest(c *echo.Context) error {
	if h.Sink == nil {
		return h.RenderError(c, errors.New("telemetry sink is not configured"))
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxTelemetryBodySize+1))
	if err != nil {
		return h.RenderError(c, err)
	}
	if len(body) > maxTelemetryBodySize {
		metrics.TelemetryRejectedTotal.WithLabelValues(telemetrySourceHTTP).Inc()
		return c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: "telemetry payload too large"})
	}

	snap, err := telemetry.DecodeBytes(body)
	if err != nil {
		metrics.TelemetryRejectedTotal.WithLabelValues(telemetrySourceHTTP).Inc()
		if errors.Is(err, telemetry.ErrNotObject) {
			return badRequest(c, "telemetry payload must be a JSON object")
		}
		return badRequest(c, "telemetry payload is not valid JSON")
	}

	h.Sink.Publish(snap)
	metrics.TelemetryUpdatesTotal.WithLabelValues(telemetrySourceHTTP).Inc()
	return c.JSON(http.StatusAccepted, telemetryAccepted{Status: "accepted", Fields: snap.Len()})
}
