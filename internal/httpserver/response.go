package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/greenhaven/internal/logging"
	"github.com/Skotchmaster/greenhaven/internal/service"
)

type failure struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, failure{Message: msg})
}

// failErr is fail for the routes whose clients read the "error" key.
func failErr(c echo.Context, status int, msg string) error {
	return c.JSON(status, failure{Error: msg})
}

func ok(c echo.Context, status int, body echo.Map) error {
	if body == nil {
		body = echo.Map{}
	}
	body["success"] = true
	return c.JSON(status, body)
}

// validationMessage strips the sentinel prefix from a validation error.
func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, service.ErrValidation.Error()+": "); i >= 0 {
		msg = msg[i+len(service.ErrValidation.Error())+2:]
	}
	return msg
}

// ErrorHandler renders every unhandled error as {success:false, message}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := http.StatusText(status)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, isStr := he.Message.(string); isStr {
			msg = m
		} else {
			msg = http.StatusText(status)
		}
	} else {
		logging.FromContext(c.Request().Context()).Error("unhandled_error", "error", err)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = fail(c, status, msg)
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("write_error_response", "error", werr)
	}
}
