package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
)

var (
	errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
func newAppHTTPErrorHandler(s *server, logger core.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message string

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == errUnauthorized {
				if !ctx.Response().Committed {
					if rErr := ctx.Redirect(http.StatusSeeOther, "/login"); rErr != nil {
						ctx.Echo().Logger.Error(rErr)
					}
				}
				return
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			if m, ok := origErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		case *core.ValidationError:
			code = http.StatusBadRequest
			message = origErr.Error()
		default: // any other error is a server error
			code = http.StatusInternalServerError
			message = http.StatusText(http.StatusInternalServerError)

			logger.Error(message, errors.Wrap(err, message), map[string]interface{}{
				"method":    ctx.Request().Method,
				"path":      ctx.Request().URL.Path,
				"requestID": ctx.Response().Header().Get(echo.HeaderXRequestID),
			}, identityFrom(ctx))
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = s.render(ctx, code, "error", &page{
					Title: http.StatusText(code),
					Data:  errorView{Code: code, Message: message},
				})
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

type errorView struct {
	Code    int
	Message string
}

// formErrors extracts the form-level message & field errors carried by a core.ValidationError.
func formErrors(err error) (string, map[string]string, bool) {
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		return "", nil, false
	}
	if len(vErr.Fields) == 0 {
		return vErr.Error(), nil, true
	}
	return "", vErr.FieldMap(), true
}
