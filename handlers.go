package contentsync

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/contentsync/contentsync/repurpose"
)

// errStaleSession signals a session whose user no longer exists.
var errStaleSession = errors.New("stale session")

func (a *App) page(c echo.Context, active string) (Page, error) {
	u, err := a.Store.GetUser(CurrentUserID(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Page{}, errStaleSession
		}
		return Page{}, err
	}
	return Page{Site: a.Config.Name, User: u, CSRFToken: CsrfToken(c), Active: active}, nil
}

// pageError handles a failed page lookup; stale sessions are logged out.
func pageError(c echo.Context, err error) error {
	if errors.Is(err, errStaleSession) {
		_ = clearUserSession(c)
		return c.Redirect(http.StatusSeeOther, "/login/")
	}
	return err
}

func (a *App) handleDashboard(c echo.Context) error {
	p, err := a.page(c, "dashboard")
	if err != nil {
		return pageError(c, err)
	}
	uid := p.User.ID
	stats, err := a.Stats.Stats(uid)
	if err != nil {
		return err
	}
	platforms, err := a.Store.ListPlatforms(uid)
	if err != nil {
		return err
	}
	recent, err := a.Store.ListRepurposed(uid, "")
	if err != nil {
		return err
	}
	if len(recent) > 5 {
		recent = recent[:5]
	}
	gaps := DetectGaps(platforms)
	if len(gaps) > 3 {
		gaps = gaps[:3]
	}
	return Render(c, a.Views.Dashboard(DashboardPage{
		Page:      p,
		Stats:     stats,
		Platforms: platforms,
		Gaps:      gaps,
		Recent:    recent,
	}))
}

func (a *App) handlePlatforms(c echo.Context) error {
	return a.renderPlatforms(c, http.StatusOK, c.QueryParam("msg"), "")
}

func (a *App) renderPlatforms(c echo.Context, code int, msg, errMsg string) error {
	p, err := a.page(c, "platforms")
	if err != nil {
		return pageError(c, err)
	}
	platforms, err := a.Store.ListPlatforms(p.User.ID)
	if err != nil {
		return err
	}
	return RenderStatus(c, code, a.Views.Platforms(PlatformsPage{
		Page:      p,
		Platforms: platforms,
		Message:   msg,
		Error:     errMsg,
	}))
}

func (a *App) handleAddPlatform(c echo.Context) error {
	var in platformInput
	if err := c.Bind(&in); err != nil {
		return a.renderPlatforms(c, http.StatusBadRequest, "", "Invalid form submission.")
	}
	if _, err := a.createPlatform(CurrentUserID(c), in); err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return a.renderPlatforms(c, http.StatusBadRequest, "", validationMessage(err))
		}
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/platforms/?msg=added")
}

func (a *App) handleDeletePlatform(c echo.Context) error {
	if err := a.deletePlatform(CurrentUserID(c), c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/platforms/?msg=deleted")
}

func (a *App) handleContentGaps(c echo.Context) error {
	p, err := a.page(c, "content-gaps")
	if err != nil {
		return pageError(c, err)
	}
	gaps, err := a.contentGaps(p.User.ID)
	if err != nil {
		return err
	}
	return Render(c, a.Views.ContentGaps(ContentGapsPage{Page: p, Gaps: gaps}))
}

func (a *App) repurposePage(c echo.Context) (RepurposePage, error) {
	p, err := a.page(c, "repurpose")
	if err != nil {
		return RepurposePage{}, err
	}
	_, unconfigured := a.generator.(repurpose.Unconfigured)
	return RepurposePage{Page: p, Configured: !unconfigured, Model: a.repurposer.Model()}, nil
}

// handleRepurposeForm shows the generator, pre-filled from a content gap link.
func (a *App) handleRepurposeForm(c echo.Context) error {
	page, err := a.repurposePage(c)
	if err != nil {
		return pageError(c, err)
	}
	page.Form = RepurposeForm{
		Source:      c.QueryParam("source"),
		Target:      c.QueryParam("target"),
		ContentType: c.QueryParam("type"),
	}
	return Render(c, a.Views.Repurpose(page))
}

func (a *App) handleRepurpose(c echo.Context) error {
	page, err := a.repurposePage(c)
	if err != nil {
		return pageError(c, err)
	}
	if err := c.Bind(&page.Form); err != nil {
		page.Error = "Invalid form submission."
		return RenderStatus(c, http.StatusBadRequest, a.Views.Repurpose(page))
	}
	rc, _, err := a.generate(c.Request().Context(), page.User.ID, page.Form)
	if err != nil {
		code, msg, ok := generationError(err)
		if !ok {
			c.Logger().Errorf("repurpose: %v", err)
			code, msg = http.StatusInternalServerError, "Generation failed. Please try again."
		}
		page.Error = msg
		return RenderStatus(c, code, a.Views.Repurpose(page))
	}
	page.Result = &rc
	return Render(c, a.Views.Repurpose(page))
}

func (a *App) handleReviewQueue(c echo.Context) error {
	p, err := a.page(c, "review-queue")
	if err != nil {
		return pageError(c, err)
	}
	filter, err := parseReviewFilter(c.QueryParam("status"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validationMessage(err))
	}
	all, err := a.Store.ListRepurposed(p.User.ID, "")
	if err != nil {
		return err
	}
	counts := make(map[ReviewStatus]int, len(ReviewStatuses))
	var items []RepurposedContent
	for _, rc := range all {
		counts[rc.Status]++
		if filter == "" || rc.Status == filter {
			items = append(items, rc)
		}
	}
	return Render(c, a.Views.ReviewQueue(ReviewQueuePage{
		Page:   p,
		Items:  items,
		Filter: filter,
		Counts: counts,
	}))
}

func (a *App) handleReview(c echo.Context) error {
	_, err := a.review(CurrentUserID(c), c.Param("id"), c.FormValue("status"), c.FormValue("notes"))
	switch {
	case errors.Is(err, ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, ErrNotFound):
		return echo.ErrNotFound
	case err != nil:
		return err
	}
	target := "/review-queue/"
	if f := c.FormValue("filter"); f != "" {
		target += "?status=" + url.QueryEscape(f)
	}
	return c.Redirect(http.StatusSeeOther, target)
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.Config.StaticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.File(a.Config.StaticDir + "/robots.txt")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}

	if isAPIRequest(c) {
		if code >= 500 {
			_ = internalError(c, err)
			return
		}
		msg := http.StatusText(code)
		if ok {
			if s, isStr := he.Message.(string); isStr {
				msg = s
			}
		}
		_ = apiError(c, code, msg)
		return
	}

	switch {
	case code == http.StatusNotFound && a.Views.NotFound != nil:
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	case code >= 500 && a.Views.ServerError != nil:
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
	default:
		if code >= 500 {
			c.Logger().Errorf("server error: %v", err)
		}
		a.Echo.DefaultHTTPErrorHandler(err, c)
	}
}
