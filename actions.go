package contentsync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/contentsync/contentsync/platform"
	"github.com/contentsync/contentsync/repurpose"
)

// platformInput is the editable part of a platform, shared by the form and JSON endpoints.
type platformInput struct {
	Name         string `json:"name" form:"name"`
	URL          string `json:"url" form:"url"`
	PlatformType string `json:"platform_type" form:"platform_type"`
	PrimaryColor string `json:"primary_color" form:"primary_color"`
	Status       string `json:"status" form:"status"`
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}

// classify runs the URL classifier and records the result.
func (a *App) classify(raw string) platform.Info {
	info := platform.Classify(raw)
	a.metrics.observeClassification(info)
	return info
}

// apply merges the non-empty fields of in into p. Missing type and name are
// taken from the classified URL.
func (a *App) apply(p *Platform, in platformInput) error {
	in.URL = strings.TrimSpace(in.URL)
	in.Name = strings.TrimSpace(in.Name)

	var info platform.Info
	if in.URL != "" {
		info = a.classify(in.URL)
		if !info.Detected {
			return invalid("url is not a valid absolute URL")
		}
		p.URL = info.URL
	}

	switch {
	case in.PlatformType != "":
		typ, err := platform.ParseType(in.PlatformType)
		if err != nil {
			return invalid("unknown platform_type %q", in.PlatformType)
		}
		p.Type = typ
	case info.Detected && p.Type == "":
		p.Type = info.Type
	}
	if p.Type == "" {
		return invalid("platform_type or url is required")
	}

	switch {
	case in.Name != "":
		p.Name = in.Name
	case p.Name == "":
		p.Name = info.Name
	}
	if p.Name == "" {
		return invalid("name is required")
	}

	if c := strings.TrimSpace(in.PrimaryColor); c != "" {
		if !ValidColor(c) {
			return invalid("primary_color must be a hex color")
		}
		p.PrimaryColor = c
	}
	if in.Status != "" {
		st := PlatformStatus(strings.ToLower(in.Status))
		if !st.Valid() {
			return invalid("unknown status %q", in.Status)
		}
		p.Status = st
	}
	return nil
}

// createPlatform registers a new platform for userID.
func (a *App) createPlatform(userID string, in platformInput) (Platform, error) {
	p := Platform{UserID: userID}
	if err := a.apply(&p, in); err != nil {
		return Platform{}, err
	}
	created, err := a.Store.CreatePlatform(p)
	if err != nil {
		return Platform{}, err
	}
	if err := a.afterPlatformWrite(userID, "create"); err != nil {
		return Platform{}, err
	}
	return a.Store.GetPlatform(userID, created.ID)
}

// updatePlatform edits one of userID's platforms.
func (a *App) updatePlatform(userID, id string, in platformInput) (Platform, error) {
	p, err := a.Store.GetPlatform(userID, id)
	if err != nil {
		return Platform{}, err
	}
	if in.PlatformType == "" && strings.TrimSpace(in.URL) != "" {
		// A new URL may point at a different platform.
		p.Type = ""
	}
	if err := a.apply(&p, in); err != nil {
		return Platform{}, err
	}
	if _, err := a.Store.UpdatePlatform(p); err != nil {
		return Platform{}, err
	}
	if err := a.afterPlatformWrite(userID, "update"); err != nil {
		return Platform{}, err
	}
	return a.Store.GetPlatform(userID, id)
}

// deletePlatform removes one of userID's platforms.
func (a *App) deletePlatform(userID, id string) error {
	if err := a.Store.DeletePlatform(userID, id); err != nil {
		return err
	}
	return a.afterPlatformWrite(userID, "delete")
}

func (a *App) afterPlatformWrite(userID, op string) error {
	a.metrics.observePlatformWrite(op)
	defer a.Stats.Invalidate(userID)
	return a.refreshGaps(userID)
}

// refreshGaps recomputes the gap_count of every platform the user owns.
func (a *App) refreshGaps(userID string) error {
	platforms, err := a.Store.ListPlatforms(userID)
	if err != nil {
		return err
	}
	return a.Store.SetGapCounts(userID, gapCounts(platforms, DetectGaps(platforms)))
}

// contentGaps returns the repurposing suggestions for userID.
func (a *App) contentGaps(userID string) ([]ContentGap, error) {
	platforms, err := a.Store.ListPlatforms(userID)
	if err != nil {
		return nil, err
	}
	return DetectGaps(platforms), nil
}

// RepurposeForm is a repurposing request as submitted by a client.
type RepurposeForm struct {
	Title           string `json:"originalContentTitle" form:"title"`
	OriginalContent string `json:"originalContent" form:"content"`
	Source          string `json:"sourcePlatform" form:"source"`
	Target          string `json:"targetPlatform" form:"target"`
	ContentType     string `json:"contentType" form:"content_type"`
}

func (in RepurposeForm) request() repurpose.Request {
	return repurpose.Request{
		Title:           strings.TrimSpace(in.Title),
		OriginalContent: in.OriginalContent,
		Source:          platform.Type(strings.ToLower(strings.TrimSpace(in.Source))),
		Target:          platform.Type(strings.ToLower(strings.TrimSpace(in.Target))),
		ContentType:     repurpose.ContentType(strings.ToLower(strings.TrimSpace(in.ContentType))),
	}
}

// generate runs a repurposing job, stores the result in the review queue and
// logs the model call.
func (a *App) generate(ctx context.Context, userID string, in RepurposeForm) (RepurposedContent, repurpose.Output, error) {
	req := in.request()
	out, err := a.repurposer.Repurpose(ctx, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, repurpose.ErrInvalidRequest):
			a.metrics.observeGeneration(outcomeInvalid, 0)
		case errors.Is(err, repurpose.ErrRateLimited):
			a.metrics.observeGeneration(outcomeRateLimited, 0)
		case errors.Is(err, repurpose.ErrNotConfigured):
			a.metrics.observeGeneration(outcomeUnconfigured, 0)
		default:
			a.metrics.observeGeneration(outcomeFailure, out.Duration)
			a.logGeneration(Generation{
				UserID:           userID,
				Prompt:           out.Prompt,
				ModelUsed:        out.Model,
				ProcessingTimeMs: out.Duration.Milliseconds(),
				ErrorMessage:     err.Error(),
			})
		}
		return RepurposedContent{}, out, err
	}
	a.metrics.observeGeneration(outcomeSuccess, out.Duration)

	rc, err := a.Store.SaveRepurposed(RepurposedContent{
		UserID:               userID,
		OriginalContentTitle: req.Title,
		OriginalPlatform:     req.Source,
		TargetPlatform:       req.Target,
		OriginalContent:      req.OriginalContent,
		RepurposedContent:    out.Text,
		ContentType:          req.ContentType,
		Hashtags:             out.Hashtags,
	})
	if err != nil {
		err = fmt.Errorf("save repurposed content: %w", err)
		a.logGeneration(Generation{
			UserID:           userID,
			Prompt:           out.Prompt,
			Response:         out.Text,
			ModelUsed:        out.Model,
			TokensUsed:       out.TokensUsed,
			ProcessingTimeMs: out.Duration.Milliseconds(),
			ErrorMessage:     err.Error(),
		})
		return RepurposedContent{}, out, err
	}
	a.logGeneration(Generation{
		UserID:           userID,
		Prompt:           out.Prompt,
		Response:         out.Text,
		ModelUsed:        out.Model,
		TokensUsed:       out.TokensUsed,
		ProcessingTimeMs: out.Duration.Milliseconds(),
		Success:          true,
	})
	a.Stats.Invalidate(userID)
	return rc, out, nil
}

// logGeneration records a model call. Failures are logged, never returned.
func (a *App) logGeneration(g Generation) {
	if err := a.Store.LogGeneration(g); err != nil {
		a.Echo.Logger.Errorf("log generation: %v", err)
	}
}

// review moves generated content through the review queue.
func (a *App) review(userID, id, status, notes string) (RepurposedContent, error) {
	st := ReviewStatus(strings.ToLower(strings.TrimSpace(status)))
	if !st.Valid() {
		return RepurposedContent{}, invalid("unknown status %q", status)
	}
	rc, err := a.Store.UpdateRepurposedStatus(userID, id, st, strings.TrimSpace(notes))
	if err != nil {
		return RepurposedContent{}, err
	}
	a.Stats.Invalidate(userID)
	return rc, nil
}

func parseReviewFilter(s string) (ReviewStatus, error) {
	if s == "" || s == "all" {
		return "", nil
	}
	st := ReviewStatus(strings.ToLower(s))
	if !st.Valid() {
		return "", invalid("unknown status %q", s)
	}
	return st, nil
}
