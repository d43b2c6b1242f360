package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// errorBody дублирует сообщение в "detail", которое читает фронтенд.
func errorBody(message string) map[string]string {
	return map[string]string{"error": message, "detail": message}
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, errorBody(message))
}

func forbidden(c echo.Context, message string) error {
	return c.JSON(http.StatusForbidden, errorBody(message))
}

func serverError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, errorBody(message))
}
