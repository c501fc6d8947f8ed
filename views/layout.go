// Package views renders the ContentSync dashboard. Components are plain
// templ.Components so any of them can be swapped for a .templ template.
package views

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/contentsync/contentsync"
)

// html accumulates escaped markup for a component.
type html struct {
	bytes.Buffer
}

// raw writes trusted markup.
func (h *html) raw(s string) { h.WriteString(s) }

// safe marks markup that f must not escape.
type safe string

// f writes format with every string argument escaped.
func (h *html) f(format string, args ...any) {
	for i, a := range args {
		if s, ok := a.(string); ok {
			args[i] = templ.EscapeString(s)
		}
	}
	fmt.Fprintf(h, format, args...)
}

// attrURL escapes a URL for an href after templ's scheme check.
func attrURL(u string) safe {
	return safe(templ.EscapeString(string(templ.URL(u))))
}

func component(fn func(h *html)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var h html
		fn(&h)
		_, err := w.Write(h.Bytes())
		return err
	})
}

// renderChild writes a nested component into h.
func renderChild(ctx context.Context, h *html, c templ.Component) error {
	return c.Render(ctx, h)
}

var navItems = []struct {
	key, href, label string
}{
	{"dashboard", "/", "Dashboard"},
	{"platforms", "/platforms/", "Platforms"},
	{"content-gaps", "/content-gaps/", "Content Gaps"},
	{"repurpose", "/repurpose/", "Repurpose"},
	{"review-queue", "/review-queue/", "Review Queue"},
}

func head(h *html, site, title string) {
	h.raw(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
	h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	h.f(`<title>%s · %s</title>`, title, site)
	h.raw(`<link rel="icon" href="/favicon.svg"><link rel="stylesheet" href="/public/app.css"></head>`)
}

// layout wraps body in the signed-in page chrome.
func layout(p contentsync.Page, title string, body func(ctx context.Context, h *html) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var h html
		head(&h, p.Site, title)
		h.raw(`<body><header class="topbar">`)
		h.f(`<a class="brand" href="/">%s</a><nav>`, p.Site)
		for _, n := range navItems {
			var class safe
			if n.key == p.Active {
				class = ` class="active"`
			}
			h.f(`<a href="%s"%s>%s</a>`, n.href, class, n.label)
		}
		h.raw(`</nav><form method="post" action="/logout/" class="logout">`)
		csrfField(&h, p.CSRFToken)
		h.f(`<span>%s</span><button type="submit">Sign out</button></form></header>`, displayName(p.User))
		h.f(`<main><h1>%s</h1>`, title)
		if err := body(ctx, &h); err != nil {
			return err
		}
		h.raw(`</main></body></html>`)
		_, err := w.Write(h.Bytes())
		return err
	})
}

func displayName(u contentsync.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

func csrfField(h *html, token string) {
	h.f(`<input type="hidden" name="_csrf" value="%s">`, token)
}

func flash(h *html, msg, class string) {
	if msg != "" {
		h.f(`<p class="flash %s">%s</p>`, class, msg)
	}
}
