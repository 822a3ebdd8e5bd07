package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/contact-book/internal/errs"
)

// ErrorHandler maps errors returned by handlers and middleware into the
// failure envelope. Envelopes from errs keep their status and message;
// echo.HTTPError keeps its status; everything else becomes a 500 with a
// generic message. Server-side failures are logged with their cause.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, message := resolve(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Error(err),
			)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, ErrorBody{Success: false, Error: message, StatusCode: status})
		}
		if werr != nil {
			log.Warn("write error response", zap.Error(werr))
		}
	}
}

func resolve(err error) (int, string) {
	if rich, ok := errs.As(err); ok {
		status := errs.StatusOf(err)
		if status >= http.StatusInternalServerError {
			return status, errs.MsgInternal
		}
		return status, rich.Message
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			return he.Code, errs.MsgInternal
		}
		if msg, ok := he.Message.(string); ok {
			return he.Code, msg
		}
		if he.Message != nil {
			return he.Code, fmt.Sprint(he.Message)
		}
		return he.Code, http.StatusText(he.Code)
	}
	return http.StatusInternalServerError, errs.MsgInternal
}
