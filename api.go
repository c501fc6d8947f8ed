package contentsync

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/contentsync/contentsync/repurpose"
)

func handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// storeError maps store and validation errors onto API responses.
func storeError(c echo.Context, err error, notFound string) error {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return apiError(c, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, ErrNotFound):
		return apiError(c, http.StatusNotFound, notFound)
	}
	return internalError(c, err)
}

type analyzeRequest struct {
	URL string `json:"url"`
}

func (a *App) handleAPIAnalyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid request body")
	}
	return c.JSON(http.StatusOK, a.classify(req.URL))
}

func (a *App) handleAPIPlatforms(c echo.Context) error {
	platforms, err := a.Store.ListPlatforms(CurrentUserID(c))
	if err != nil {
		return internalError(c, err)
	}
	if platforms == nil {
		platforms = []Platform{}
	}
	return c.JSON(http.StatusOK, platforms)
}

func (a *App) handleAPICreatePlatform(c echo.Context) error {
	var in platformInput
	if err := c.Bind(&in); err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid request body")
	}
	p, err := a.createPlatform(CurrentUserID(c), in)
	if err != nil {
		return storeError(c, err, "Platform not found")
	}
	return c.JSON(http.StatusCreated, p)
}

func (a *App) handleAPIUpdatePlatform(c echo.Context) error {
	var in platformInput
	if err := c.Bind(&in); err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid request body")
	}
	p, err := a.updatePlatform(CurrentUserID(c), c.Param("id"), in)
	if err != nil {
		return storeError(c, err, "Platform not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (a *App) handleAPIDeletePlatform(c echo.Context) error {
	if err := a.deletePlatform(CurrentUserID(c), c.Param("id")); err != nil {
		return storeError(c, err, "Platform not found")
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (a *App) handleAPIStats(c echo.Context) error {
	stats, err := a.Stats.Stats(CurrentUserID(c))
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (a *App) handleAPIContentGaps(c echo.Context) error {
	gaps, err := a.contentGaps(CurrentUserID(c))
	if err != nil {
		return internalError(c, err)
	}
	if gaps == nil {
		gaps = []ContentGap{}
	}
	return c.JSON(http.StatusOK, gaps)
}

type repurposeResponse struct {
	Content           string            `json:"content"`
	RepurposedContent RepurposedContent `json:"repurposedContent"`
	ProcessingTime    int64             `json:"processingTime"`
}

func (a *App) handleAPIRepurpose(c echo.Context) error {
	var in RepurposeForm
	if err := c.Bind(&in); err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid request body")
	}
	rc, out, err := a.generate(c.Request().Context(), CurrentUserID(c), in)
	if err != nil {
		if code, msg, ok := generationError(err); ok {
			return apiError(c, code, msg)
		}
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, repurposeResponse{
		Content:           out.Text,
		RepurposedContent: rc,
		ProcessingTime:    out.Duration.Milliseconds(),
	})
}

// generationError translates the expected repurposing failures. ok is false
// for errors that should surface as a plain 500.
func generationError(err error) (code int, msg string, ok bool) {
	switch {
	case errors.Is(err, repurpose.ErrInvalidRequest):
		return http.StatusBadRequest, strings.TrimPrefix(err.Error(), repurpose.ErrInvalidRequest.Error()+": "), true
	case errors.Is(err, repurpose.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many generation requests. Try again in a minute.", true
	case errors.Is(err, repurpose.ErrNotConfigured):
		return http.StatusServiceUnavailable, "AI generation is not configured", true
	}
	return 0, "", false
}

func (a *App) handleAPIListRepurposed(c echo.Context) error {
	status, err := parseReviewFilter(c.QueryParam("status"))
	if err != nil {
		return apiError(c, http.StatusBadRequest, validationMessage(err))
	}
	items, err := a.Store.ListRepurposed(CurrentUserID(c), status)
	if err != nil {
		return internalError(c, err)
	}
	if items == nil {
		items = []RepurposedContent{}
	}
	return c.JSON(http.StatusOK, items)
}

type reviewRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

func (a *App) handleAPIReview(c echo.Context) error {
	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid request body")
	}
	rc, err := a.review(CurrentUserID(c), c.Param("id"), req.Status, req.Notes)
	if err != nil {
		return storeError(c, err, "Content not found")
	}
	return c.JSON(http.StatusOK, rc)
}

func (a *App) handleAPIGenerations(c echo.Context) error {
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			return apiError(c, http.StatusBadRequest, "limit must be between 1 and 500")
		}
		limit = n
	}
	gens, err := a.Store.ListGenerations(CurrentUserID(c), limit)
	if err != nil {
		return internalError(c, err)
	}
	if gens == nil {
		gens = []Generation{}
	}
	return c.JSON(http.StatusOK, gens)
}
