package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/contentsync/contentsync"
	"github.com/contentsync/contentsync/markdown"
	"github.com/contentsync/contentsync/platform"
	"github.com/contentsync/contentsync/repurpose"
)

// Default returns the built-in dashboard templates.
func Default() contentsync.ViewFuncs {
	return contentsync.ViewFuncs{
		Login:       Login,
		Signup:      Signup,
		Dashboard:   Dashboard,
		Platforms:   Platforms,
		ContentGaps: ContentGaps,
		Repurpose:   Repurpose,
		ReviewQueue: ReviewQueue,
		NotFound:    NotFound,
		ServerError: ServerError,
	}
}

func authForm(p contentsync.AuthPage, title, action, submit string, signup bool) templ.Component {
	return component(func(h *html) {
		head(h, p.Site, title)
		h.raw(`<body class="auth"><main class="card">`)
		h.f(`<h1>%s</h1>`, title)
		flash(h, p.Error, "error")
		h.f(`<form method="post" action="%s">`, action)
		csrfField(h, p.CSRFToken)
		if signup {
			h.raw(`<label>Full name <input name="full_name" autocomplete="name"></label>`)
		}
		h.f(`<label>Email <input type="email" name="email" value="%s" required autocomplete="email"></label>`, p.Email)
		h.raw(`<label>Password <input type="password" name="password" required minlength="8"></label>`)
		h.f(`<button type="submit">%s</button></form>`, submit)
		if signup {
			h.raw(`<p>Already have an account? <a href="/login/">Sign in</a></p>`)
		} else {
			h.raw(`<p>New here? <a href="/signup/">Create an account</a></p>`)
		}
		h.raw(`</main></body></html>`)
	})
}

func Login(p contentsync.AuthPage) templ.Component {
	return authForm(p, "Sign in", "/login/", "Sign in", false)
}

func Signup(p contentsync.AuthPage) templ.Component {
	return authForm(p, "Create account", "/signup/", "Sign up", true)
}

func statCard(h *html, label string, n int) {
	h.f(`<div class="stat"><span class="stat-value">%s</span><span class="stat-label">%s</span></div>`, strconv.Itoa(n), label)
}

func Dashboard(p contentsync.DashboardPage) templ.Component {
	return layout(p.Page, "Dashboard", func(ctx context.Context, h *html) error {
		h.raw(`<section class="stats">`)
		statCard(h, "Platforms", p.Stats.TotalPlatforms)
		statCard(h, "Connected", p.Stats.ConnectedPlatforms)
		statCard(h, "Content", p.Stats.TotalContent)
		statCard(h, "Gaps", p.Stats.TotalGaps)
		statCard(h, "Pending review", p.Stats.PendingReviews)
		h.raw(`</section>`)

		h.raw(`<section><h2>Your platforms</h2>`)
		if len(p.Platforms) == 0 {
			h.raw(`<p class="empty">No platforms yet. <a href="/platforms/">Add your first one</a>.</p>`)
		} else {
			h.raw(`<ul class="platform-list">`)
			for _, pl := range p.Platforms {
				platformChip(h, pl)
			}
			h.raw(`</ul>`)
		}
		h.raw(`</section>`)

		if len(p.Gaps) > 0 {
			h.raw(`<section><h2>Top opportunities</h2>`)
			for _, g := range p.Gaps {
				gapCard(h, g)
			}
			h.raw(`<a href="/content-gaps/">See all gaps</a></section>`)
		}

		h.raw(`<section><h2>Recent drafts</h2>`)
		if len(p.Recent) == 0 {
			h.raw(`<p class="empty">Nothing generated yet.</p>`)
		}
		for _, rc := range p.Recent {
			h.f(`<div class="draft-row"><span class="%s">%s</span> %s → %s · %s <span class="muted">%s</span></div>`,
				StatusClass(string(rc.Status)), string(rc.Status),
				rc.OriginalPlatform.Label(), rc.TargetPlatform.Label(),
				Truncate(draftTitle(rc), 60), TimeAgo(rc.CreatedAt))
		}
		h.raw(`</section>`)
		return nil
	})
}

func draftTitle(rc contentsync.RepurposedContent) string {
	if rc.OriginalContentTitle != "" {
		return rc.OriginalContentTitle
	}
	return rc.RepurposedContent
}

func platformChip(h *html, p contentsync.Platform) {
	h.raw(`<li class="platform">`)
	if p.AvatarURL != "" {
		h.f(`<img class="avatar" src="%s" alt="" width="40" height="40">`, attrURL(p.AvatarURL))
	} else {
		h.f(`<span class="avatar" style="background:%s">%s</span>`, PlatformColor(p), Initials(p.Name))
	}
	h.f(`<span class="name">%s</span> <span class="type">%s</span> <span class="%s">%s</span>`,
		p.Name, p.Type.Label(), StatusClass(string(p.Status)), string(p.Status))
	if p.GapCount > 0 {
		h.f(` <span class="gaps">%s gaps</span>`, strconv.Itoa(p.GapCount))
	}
	h.raw(`</li>`)
}

func Platforms(p contentsync.PlatformsPage) templ.Component {
	return layout(p.Page, "Platforms", func(ctx context.Context, h *html) error {
		switch p.Message {
		case "added":
			flash(h, "Platform added.", "ok")
		case "deleted":
			flash(h, "Platform removed.", "ok")
		case "avatar":
			flash(h, "Avatar updated.", "ok")
		}
		flash(h, p.Error, "error")

		h.raw(`<form method="post" action="/platforms/" class="card">`)
		csrfField(h, p.CSRFToken)
		h.raw(`<label>Profile URL <input type="url" name="url" placeholder="https://youtube.com/@yourchannel"></label>`)
		h.raw(`<label>Name <input name="name" placeholder="Detected from the URL"></label>`)
		h.raw(`<label>Type <select name="platform_type"><option value="">Detect</option>`)
		for _, t := range platform.Types {
			h.f(`<option value="%s">%s</option>`, string(t), t.Label())
		}
		h.raw(`</select></label><label>Color <input type="color" name="primary_color"></label>`)
		h.raw(`<button type="submit">Add platform</button></form>`)

		h.raw(`<ul class="platform-list">`)
		for _, pl := range p.Platforms {
			platformChip(h, pl)
			h.f(`<form method="post" action="/platforms/%s/avatar/" enctype="multipart/form-data" class="inline">`, pl.ID)
			csrfField(h, p.CSRFToken)
			h.raw(`<input type="file" name="avatar" accept="image/*"><button type="submit">Upload avatar</button></form>`)
			h.f(`<form method="post" action="/platforms/%s/delete/" class="inline">`, pl.ID)
			csrfField(h, p.CSRFToken)
			h.raw(`<button type="submit" class="danger">Remove</button></form>`)
		}
		h.raw(`</ul>`)
		return nil
	})
}

func gapCard(h *html, g contentsync.ContentGap) {
	h.f(`<article class="gap"><header><span class="%s">%s</span> <strong>%s</strong></header><p>%s</p>`,
		PriorityClass(g.Priority), string(g.Priority), g.Title, g.Description)
	if !g.TargetRegistered {
		h.f(`<p class="muted">No %s platform registered yet.</p>`, g.Target.Label())
	}
	h.f(`<a class="button" href="%s">Generate content</a></article>`, attrURL(RepurposeLink(g)))
}

func ContentGaps(p contentsync.ContentGapsPage) templ.Component {
	return layout(p.Page, "Content Gaps", func(ctx context.Context, h *html) error {
		if len(p.Gaps) == 0 {
			h.raw(`<p class="empty">No gaps found. Add more platforms to get suggestions.</p>`)
			return nil
		}
		for _, g := range p.Gaps {
			gapCard(h, g)
		}
		return nil
	})
}

func selectOptions(h *html, name, selected string, values []string, label func(string) string) {
	h.f(`<select name="%s" required><option value="">Choose…</option>`, name)
	for _, v := range values {
		var sel safe
		if v == selected {
			sel = ` selected`
		}
		h.f(`<option value="%s"%s>%s</option>`, v, sel, label(v))
	}
	h.raw(`</select>`)
}

func platformValues() []string {
	out := make([]string, len(platform.Types))
	for i, t := range platform.Types {
		out[i] = string(t)
	}
	return out
}

func contentTypeValues() []string {
	out := make([]string, len(repurpose.ContentTypes))
	for i, ct := range repurpose.ContentTypes {
		out[i] = string(ct)
	}
	return out
}

func platformLabel(v string) string { return platform.Type(v).Label() }

func Repurpose(p contentsync.RepurposePage) templ.Component {
	return layout(p.Page, "Repurpose Content", func(ctx context.Context, h *html) error {
		if !p.Configured {
			flash(h, "AI generation is not configured. Set GOOGLE_GEMINI_API_KEY to enable it.", "warn")
		}
		flash(h, p.Error, "error")

		h.raw(`<form method="post" action="/repurpose/" class="card">`)
		csrfField(h, p.CSRFToken)
		h.f(`<label>Title <input name="title" maxlength="200" value="%s"></label>`, p.Form.Title)
		h.raw(`<label>From `)
		selectOptions(h, "source", p.Form.Source, platformValues(), platformLabel)
		h.raw(`</label><label>To `)
		selectOptions(h, "target", p.Form.Target, platformValues(), platformLabel)
		h.raw(`</label><label>As `)
		selectOptions(h, "content_type", p.Form.ContentType, contentTypeValues(), func(v string) string { return v })
		h.f(`</label><label>Original content <textarea name="content" rows="10" required>%s</textarea></label>`, p.Form.OriginalContent)
		h.f(`<button type="submit">Generate</button> <span class="muted">Model: %s</span></form>`, p.Model)

		if p.Result != nil {
			h.raw(`<section class="result"><h2>Draft</h2><div class="draft">`)
			if err := renderChild(ctx, h, markdown.Markdown(p.Result.RepurposedContent)); err != nil {
				return err
			}
			h.raw(`</div><p>Saved to the <a href="/review-queue/?status=pending">review queue</a>.</p></section>`)
		}
		return nil
	})
}

func ReviewQueue(p contentsync.ReviewQueuePage) templ.Component {
	return layout(p.Page, "Review Queue", func(ctx context.Context, h *html) error {
		h.raw(`<nav class="tabs">`)
		total := 0
		for _, n := range p.Counts {
			total += n
		}
		tab := func(href, label, value string, n int) {
			var class safe
			if value == string(p.Filter) {
				class = ` class="active"`
			}
			h.f(`<a href="%s"%s>%s (%s)</a>`, href, class, label, strconv.Itoa(n))
		}
		tab("/review-queue/", "All", "", total)
		for _, st := range contentsync.ReviewStatuses {
			tab("/review-queue/?status="+string(st), string(st), string(st), p.Counts[st])
		}
		h.raw(`</nav>`)

		if len(p.Items) == 0 {
			h.raw(`<p class="empty">Nothing here.</p>`)
			return nil
		}
		for _, rc := range p.Items {
			h.f(`<article class="review"><header><span class="%s">%s</span> <strong>%s</strong> %s → %s · %s <span class="muted">%s</span></header>`,
				StatusClass(string(rc.Status)), string(rc.Status), draftTitle(rc),
				rc.OriginalPlatform.Label(), rc.TargetPlatform.Label(), string(rc.ContentType), TimeAgo(rc.CreatedAt))
			h.raw(`<div class="draft">`)
			if err := renderChild(ctx, h, markdown.Markdown(rc.RepurposedContent)); err != nil {
				return err
			}
			h.raw(`</div>`)
			if rc.Notes != "" {
				h.f(`<p class="notes">%s</p>`, rc.Notes)
			}
			h.f(`<form method="post" action="/review-queue/%s/" class="inline">`, rc.ID)
			csrfField(h, p.CSRFToken)
			h.f(`<input type="hidden" name="filter" value="%s">`, string(p.Filter))
			h.raw(`<input name="notes" placeholder="Notes">`)
			for _, st := range contentsync.ReviewStatuses {
				if st == rc.Status {
					continue
				}
				h.f(`<button type="submit" name="status" value="%s">%s</button>`, string(st), string(st))
			}
			h.raw(`</form></article>`)
		}
		return nil
	})
}

func errorPage(title, msg string) templ.Component {
	return component(func(h *html) {
		head(h, "ContentSync", title)
		h.f(`<body class="auth"><main class="card"><h1>%s</h1><p>%s</p><a href="/">Back to the dashboard</a></main></body></html>`, title, msg)
	})
}

func NotFound() templ.Component {
	return errorPage("Not found", "The page you were looking for does not exist.")
}

func ServerError() templ.Component {
	return errorPage("Something went wrong", "Please try again in a moment.")
}
