package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"example.com/onestop-outings/backend/internal/notifications"
)

type NotificationHandler struct {
	Hub     *notifications.Hub
	Outings OutingPlanner
}

// NewNotificationHandler создает SSE-обработчик событий прогулки.
func NewNotificationHandler(hub *notifications.Hub, outings OutingPlanner) *NotificationHandler {
	return &NotificationHandler{Hub: hub, Outings: outings}
}

// Stream открывает SSE-поток событий для прогулки.
func (h *NotificationHandler) Stream(c echo.Context) error {
	outingID := strings.TrimSpace(c.Param("outingId"))
	if outingID == "" {
		return badRequest(c, "outing id is required")
	}

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return serverError(c, "streaming unsupported")
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	ch, unsubscribe := h.Hub.Subscribe(outingID)
	defer unsubscribe()

	_ = writeSSE(c, notifications.Event{Type: notifications.EventConnected, Data: map[string]interface{}{
		"outing_id": outingID,
		"remaining": h.Outings.RemainingRegenerations(outingID),
	}})
	flusher.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if err := writeSSE(c, event); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

func writeSSE(c echo.Context, event notifications.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := c.Response().Write([]byte("event: " + event.Type + "\n")); err != nil {
		return err
	}
	if _, err := c.Response().Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
		return err
	}

	return nil
}
