package views

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/contentsync/contentsync"
	"github.com/contentsync/contentsync/platform"
)

// brandColors are used for platforms without a custom primary color.
var brandColors = map[platform.Type]string{
	platform.YouTube:   "#FF0000",
	platform.Instagram: "#E1306C",
	platform.Twitter:   "#1DA1F2",
	platform.LinkedIn:  "#0A66C2",
	platform.TikTok:    "#010101",
	platform.Blog:      "#6B7280",
}

// PlatformColor returns the color a platform is drawn with.
func PlatformColor(p contentsync.Platform) string {
	if p.PrimaryColor != "" {
		return p.PrimaryColor
	}
	if c, ok := brandColors[p.Type]; ok {
		return c
	}
	return brandColors[platform.Blog]
}

// Initials returns up to two letters for an avatar placeholder.
func Initials(name string) string {
	var out []rune
	for _, f := range strings.Fields(strings.TrimLeft(name, "@")) {
		for _, r := range f {
			out = append(out, r)
			break
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return strings.ToUpper(string(out))
}

// StatusClass returns the badge class for a platform or review status.
func StatusClass(status string) string {
	switch status {
	case "connected", "approved", "published":
		return "badge badge-ok"
	case "error", "rejected":
		return "badge badge-bad"
	case "syncing":
		return "badge badge-busy"
	default:
		return "badge"
	}
}

// PriorityClass returns the badge class for a gap priority.
func PriorityClass(p contentsync.Priority) string {
	return "badge priority-" + string(p)
}

// TimeAgo formats t relative to now, e.g. "5m ago".
func TimeAgo(t time.Time) string {
	return timeAgo(t, time.Now())
}

func timeAgo(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
	return t.Format("Jan 2, 2006")
}

// RepurposeLink builds the generator URL pre-filled for a content gap.
func RepurposeLink(g contentsync.ContentGap) string {
	q := url.Values{}
	q.Set("source", string(g.Source))
	q.Set("target", string(g.Target))
	q.Set("type", string(g.ContentType))
	return "/repurpose/?" + q.Encode()
}

// Truncate shortens s to n runes, adding an ellipsis when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
