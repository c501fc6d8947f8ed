package contentsync

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

type errorBody struct {
	Error string `json:"error"`
}

// apiError writes the JSON error envelope used by every /api/ endpoint.
func apiError(c echo.Context, code int, msg string) error {
	return c.JSON(code, errorBody{Error: msg})
}

// internalError logs the cause and hides it from the client.
func internalError(c echo.Context, err error) error {
	c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	return apiError(c, http.StatusInternalServerError, "Internal server error")
}
