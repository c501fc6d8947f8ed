package platform

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// rule maps hostnames to a platform and knows how to name an account from the URL path.
type rule struct {
	typ   Type
	hosts []string
	name  func(path string) string
}

func (r rule) matches(host string) bool {
	for _, h := range r.hosts {
		if strings.Contains(host, h) {
			return true
		}
	}
	return false
}

// rules are evaluated in order; the first host match wins.
var rules = []rule{
	{typ: YouTube, hosts: []string{"youtube.com", "youtu.be"}, name: youtubeName},
	{typ: Instagram, hosts: []string{"instagram.com"}, name: handleName("Instagram Account")},
	{typ: Twitter, hosts: []string{"twitter.com", "x.com"}, name: handleName("Twitter Account")},
	{typ: LinkedIn, hosts: []string{"linkedin.com"}, name: linkedinName},
	{typ: TikTok, hosts: []string{"tiktok.com"}, name: tiktokName},
}

// webSchemes are parsed the way browsers parse them: a host is required,
// backslashes count as slashes and the "//" before the host is optional.
var webSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ws":    true,
	"wss":   true,
	"ftp":   true,
}

// Classify works out which platform raw belongs to and derives a display name
// for it. It never fails: unparseable input comes back as an undetected blog.
func Classify(raw string) Info {
	u, path, ok := parseAbsolute(raw)
	if !ok {
		return Info{Type: Blog, Name: "Blog", URL: raw, Detected: false}
	}

	host := strings.ToLower(u.Hostname())
	for _, r := range rules {
		if r.matches(host) {
			return Info{Type: r.typ, Name: r.name(path), URL: raw, Detected: true}
		}
	}

	name := strings.TrimPrefix(host, "www.")
	if name == "" {
		name = "Blog"
	}
	return Info{Type: Blog, Name: name, URL: raw, Detected: true}
}

// parseAbsolute parses raw with browser leniency and returns the URL along
// with the path names are derived from.
func parseAbsolute(raw string) (*url.URL, string, bool) {
	s := strings.TrimFunc(raw, func(r rune) bool { return r <= ' ' })
	s = strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, s)

	scheme, rest, found := splitScheme(s)
	if !found {
		return nil, "", false
	}
	web := webSchemes[strings.ToLower(scheme)]
	if web {
		s = scheme + "://" + strings.TrimLeft(backslashesToSlashes(rest), "/")
	}

	var path string
	u, err := url.Parse(s)
	var escErr url.EscapeError
	if errors.As(err, &escErr) {
		// Stray '%' is kept literally in the path, query and fragment.
		head, tail := splitAuthority(s, len(scheme)+1)
		u, err = url.Parse(head + escapeLonePercent(tail))
		path, _, _ = strings.Cut(tail, "?")
		path, _, _ = strings.Cut(path, "#")
	}
	if err != nil || u.Scheme == "" {
		return nil, "", false
	}
	if web && u.Host == "" {
		return nil, "", false
	}
	if p := u.Port(); p != "" {
		if n, err := strconv.Atoi(p); err != nil || n > 65535 {
			return nil, "", false
		}
	}
	if path == "" {
		path = u.EscapedPath()
	}
	return u, path, true
}

// splitScheme splits s at the colon ending a syntactically valid scheme.
func splitScheme(s string) (scheme, rest string, ok bool) {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		case i > 0 && r == ':':
			return s[:i], s[i+1:], true
		default:
			return "", "", false
		}
	}
	return "", "", false
}

// backslashesToSlashes turns backslashes into slashes before the query or fragment.
func backslashesToSlashes(s string) string {
	end := strings.IndexAny(s, "?#")
	if end < 0 {
		end = len(s)
	}
	return strings.ReplaceAll(s[:end], `\`, "/") + s[end:]
}

// splitAuthority splits s after the scheme and authority. schemeEnd is the
// offset just past the scheme's colon.
func splitAuthority(s string, schemeEnd int) (head, tail string) {
	if !strings.HasPrefix(s[schemeEnd:], "//") {
		return s[:schemeEnd], s[schemeEnd:]
	}
	start := schemeEnd + 2
	end := strings.IndexAny(s[start:], "/?#")
	if end < 0 {
		return s, ""
	}
	return s[:start+end], s[start+end:]
}

// escapeLonePercent encodes every '%' not followed by two hex digits as "%25".
func escapeLonePercent(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && !(i+2 < len(s) && ishex(s[i+1]) && ishex(s[i+2])) {
			b.WriteString("%25")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func ishex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func youtubeName(path string) string {
	const fallback = "YouTube Channel"
	if strings.Contains(path, "/channel/") {
		return fallback
	}
	for _, marker := range []string{"/c/", "/@", "/user/"} {
		_, rest, found := strings.Cut(path, marker)
		if !found {
			continue
		}
		seg, _, _ := strings.Cut(rest, "/")
		if seg == "" {
			return fallback
		}
		return capitalize(seg)
	}
	return fallback
}

// handleName names an account after the first non-empty path segment.
func handleName(fallback string) func(string) string {
	return func(path string) string {
		for _, seg := range strings.Split(path, "/") {
			if seg != "" {
				return "@" + seg
			}
		}
		return fallback
	}
}

func tiktokName(path string) string {
	if !strings.HasPrefix(path, "/@") {
		return "TikTok Account"
	}
	handle, _, _ := strings.Cut(strings.TrimPrefix(path, "/@"), "/")
	if handle == "" {
		return "TikTok Account"
	}
	return "@" + handle
}

func linkedinName(path string) string {
	if strings.Contains(path, "/in/") {
		return "LinkedIn Profile"
	}
	if _, rest, found := strings.Cut(path, "/company/"); found {
		if id, _, _ := strings.Cut(rest, "/"); id != "" {
			return "LinkedIn Company"
		}
	}
	return "LinkedIn Profile"
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
