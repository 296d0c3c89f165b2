package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/pingcard/pingcard/internal/card"
	"github.com/pingcard/pingcard/internal/metrics"
)

type cardPreview struct {
	Title       string              `json:"title"`
	Body        string              `json:"body"`
	Footer      string              `json:"footer"`
	Description string              `json:"description"`
	Color       string              `json:"color"`
	Regions     []card.RankedRegion `json:"regions"`
}

// HandleCardPreview renders the card from the held snapshot without publishing it.
// It answers 204 while no telemetry has been received.
func (h *Handlers) HandleCardPreview(c *echo.Context) error {
	if h.Snapshots == nil || h.Renderer == nil {
		return h.RenderError(c, errors.New("card preview is not configured"))
	}

	snap := h.Snapshots.Current()
	rendered, ok := h.Renderer.Render(snap)
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	metrics.CardRendersTotal.WithLabelValues(metrics.TriggerPreview).Inc()

	regions := h.Renderer.Regions
	if regions == nil {
		regions = card.KnownRegions()
	}
	return c.JSON(http.StatusOK, cardPreview{
		Title:       rendered.Title,
		Body:        rendered.Body,
		Footer:      rendered.Footer,
		Description: rendered.Description(),
		Color:       rendered.Color.Hex(),
		Regions:     card.RankRegions(snap, regions),
	})
}
