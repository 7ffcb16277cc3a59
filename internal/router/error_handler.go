package router

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"roomrental/internal/errors"
)

var statusCodes = map[int]string{
	http.StatusBadRequest:            "BAD_REQUEST",
	http.StatusUnauthorized:          "UNAUTHORIZED",
	http.StatusForbidden:             "FORBIDDEN",
	http.StatusNotFound:              "NOT_FOUND",
	http.StatusMethodNotAllowed:      "METHOD_NOT_ALLOWED",
	http.StatusRequestEntityTooLarge: "PAYLOAD_TOO_LARGE",
	http.StatusTooManyRequests:       "RATE_LIMITED",
	http.StatusServiceUnavailable:    "SERVICE_UNAVAILABLE",
}

// JSONErrorHandler renders every error as an errors.ErrorResponse body.
func JSONErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		body := errors.ErrorResponse{Error: "internal server error", Code: "INTERNAL_ERROR"}

		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
			switch msg := he.Message.(type) {
			case errors.ErrorResponse:
				body = msg
			case string:
				body = errors.ErrorResponse{Error: msg, Code: codeFor(status)}
			default:
				body = errors.ErrorResponse{Error: http.StatusText(status), Code: codeFor(status)}
			}
		} else {
			e.Logger.Error(err)
			log.Printf("unhandled error on %s %s: %v", c.Request().Method, c.Path(), err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			e.Logger.Error(err)
		}
	}
}

func codeFor(status int) string {
	if code, ok := statusCodes[status]; ok {
		return code
	}
	if status >= http.StatusInternalServerError {
		return "INTERNAL_ERROR"
	}
	return "REQUEST_FAILED"
}
