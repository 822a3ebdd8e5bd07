// Package response writes the JSON envelopes returned by every endpoint.
package response

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// DefaultMessage accompanies successes that do not name their own.
const DefaultMessage = "Operation completed successfully"

const timestampLayout = "2006-01-02T15:04:05.000Z"

// Envelope is the success shape.
type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ErrorBody is the failure shape.
type ErrorBody struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
}

// paginated is implemented by model.Page; pages are written as is.
type paginated interface{ Paginated() }

// JSON writes data with the given status, wrapped in an Envelope unless it
// is a page.
func JSON(c echo.Context, status int, data any, message string) error {
	if _, ok := data.(paginated); ok {
		return c.JSON(status, data)
	}
	if message == "" {
		message = DefaultMessage
	}
	return c.JSON(status, Envelope{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UTC().Format(timestampLayout),
	})
}

// OK writes a 200 success.
func OK(c echo.Context, data any) error { return JSON(c, http.StatusOK, data, "") }

// Created writes a 201 success.
func Created(c echo.Context, data any, message string) error {
	return JSON(c, http.StatusCreated, data, message)
}

// NoContent writes an empty 204.
func NoContent(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
