package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/onestop-outings/backend/internal/planner"
)

type StatsSource interface {
	Stats() planner.Stats
}

type StatsHandler struct {
	Source StatsSource
}

// NewStatsHandler создает обработчик статистики.
func NewStatsHandler(source StatsSource) *StatsHandler {
	return &StatsHandler{Source: source}
}

// Overview возвращает размер каталога, кеша и число отслеживаемых прогулок.
func (h *StatsHandler) Overview(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Source.Stats())
}
