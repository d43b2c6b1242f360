package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/onestop-outings/backend/internal/cache"
	"example.com/onestop-outings/backend/internal/models"
	"example.com/onestop-outings/backend/internal/notifications"
	"example.com/onestop-outings/backend/internal/planner"
)

const welcomeMessage = "Welcome to the OneStopOutings API"

type OutingPlanner interface {
	CreatePlan(ctx context.Context, prefs models.UserPreferences) (models.OutingPlan, error)
	RegenerateEvent(ctx context.Context, req models.RegenerateRequest) (models.OutingPlan, error)
	RemainingRegenerations(outingID string) int
}

type OutingHandler struct {
	Planner  OutingPlanner
	Notifier *notifications.Hub
	Logger   *slog.Logger
}

// NewOutingHandler создает обработчик планов прогулок.
func NewOutingHandler(outings OutingPlanner, notifier *notifications.Hub, logger *slog.Logger) *OutingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OutingHandler{Planner: outings, Notifier: notifier, Logger: logger}
}

// Root возвращает приветствие API.
func (h *OutingHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": welcomeMessage})
}

// Plan создает план прогулки по предпочтениям пользователя.
func (h *OutingHandler) Plan(c echo.Context) error {
	var prefs models.UserPreferences
	if err := c.Bind(&prefs); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&prefs); err != nil {
		return badRequest(c, "validation failed")
	}

	plan, err := h.Planner.CreatePlan(c.Request().Context(), prefs)
	if err != nil {
		h.Logger.Error("create plan failed", slog.Any("error", err))
		return serverError(c, "Failed to generate plan from any source.")
	}

	return c.JSON(http.StatusOK, plan)
}

// RegenerateEvent заменяет одно событие плана.
func (h *OutingHandler) RegenerateEvent(c echo.Context) error {
	var req models.RegenerateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	plan, err := h.Planner.RegenerateEvent(c.Request().Context(), req)
	switch {
	case err == nil:
	case errors.Is(err, planner.ErrInvalidIndex):
		return badRequest(c, "event_index_to_replace is out of range")
	case errors.Is(err, planner.ErrQuotaExceeded):
		h.publish(req.OutingID, notifications.EventLimitReached, map[string]interface{}{
			"limit": cache.MaxRegenerations,
		})
		return forbidden(c, fmt.Sprintf("Regeneration limit of %d reached for this outing.", cache.MaxRegenerations))
	default:
		h.Logger.Error("regenerate event failed",
			slog.String("outing_id", req.OutingID), slog.Any("error", err))
		return serverError(c, "Could not find a suitable replacement from any source.")
	}

	h.publish(req.OutingID, notifications.EventRegenerated, map[string]interface{}{
		"index":     req.EventIndexToReplace,
		"name":      plan.Plan[req.EventIndexToReplace].Name,
		"remaining": h.Planner.RemainingRegenerations(req.OutingID),
	})

	return c.JSON(http.StatusOK, plan)
}

func (h *OutingHandler) publish(outingID, eventType string, data map[string]interface{}) {
	if h.Notifier == nil {
		return
	}

	h.Notifier.Publish(outingID, notifications.Event{Type: eventType, Data: data})
}
