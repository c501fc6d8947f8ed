// Package markdown renders model-generated drafts as HTML. It understands the
// subset of Markdown language models tend to emit and keeps single line
// breaks, which carry meaning in social posts and threads.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

var (
	reBold             = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBoldUnderscore   = regexp.MustCompile(`__(.+?)__`)
	reItalic           = regexp.MustCompile(`\*([^*\s][^*]*)\*`)
	reItalicUnderscore = regexp.MustCompile(`(^|\s)_([^_]+)_`)
	reInlineCode       = regexp.MustCompile("`([^`]+)`")
	reLink             = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)
	reOrdered          = regexp.MustCompile(`^(\d+)[.)]\s+`)
	reTag              = regexp.MustCompile(`(^|\s)([#@])([\p{L}\p{N}_]+)`)
)

// Markdown returns a templ.Component that renders md as HTML.
func Markdown(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		Render(&buf, content)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

type block int

const (
	none block = iota
	para
	bullets
	numbers
	quote
	code
)

var closers = map[block]string{
	para:    "</p>",
	bullets: "</ul>",
	numbers: "</ol>",
	quote:   "</blockquote>",
	code:    "</code></pre>",
}

type renderer struct {
	buf *bytes.Buffer
	cur block
}

func (r *renderer) open(b block, tag string) {
	if r.cur == b {
		return
	}
	r.close()
	r.buf.WriteString(tag)
	r.cur = b
}

func (r *renderer) close() {
	r.buf.WriteString(closers[r.cur])
	r.cur = none
}

// Render writes the HTML representation of md to buf.
func Render(buf *bytes.Buffer, md string) {
	r := &renderer{buf: buf}
	for _, raw := range strings.Split(md, "\n") {
		line := strings.TrimRight(raw, "\r ")

		if strings.HasPrefix(line, "```") {
			if r.cur == code {
				r.close()
			} else {
				r.open(code, `<pre class="code-block"><code>`)
			}
			continue
		}
		if r.cur == code {
			buf.WriteString(html.EscapeString(line))
			buf.WriteByte('\n')
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			r.close()
		case trimmed == "---" || trimmed == "***":
			r.close()
			buf.WriteString("<hr/>")
		case strings.HasPrefix(trimmed, "#") && headingLevel(trimmed) > 0:
			r.close()
			n := headingLevel(trimmed)
			tag := "h" + strconv.Itoa(n)
			buf.WriteString("<" + tag + ">" + FormatInline(strings.TrimSpace(trimmed[n:])) + "</" + tag + ">")
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "• "):
			r.open(bullets, "<ul>")
			_, item, _ := strings.Cut(trimmed, " ")
			buf.WriteString("<li>" + FormatInline(strings.TrimSpace(item)) + "</li>")
		case reOrdered.MatchString(trimmed):
			r.open(numbers, "<ol>")
			buf.WriteString("<li>" + FormatInline(reOrdered.ReplaceAllString(trimmed, "")) + "</li>")
		case strings.HasPrefix(trimmed, ">"):
			if r.cur == quote {
				buf.WriteString("<br/>")
			}
			r.open(quote, "<blockquote>")
			buf.WriteString(FormatInline(strings.TrimSpace(trimmed[1:])))
		default:
			if r.cur == para {
				buf.WriteString("<br/>")
			}
			r.open(para, "<p>")
			buf.WriteString(FormatInline(trimmed))
		}
	}
	r.close()
}

// headingLevel returns 1-3 for "# ", "## " and "### " prefixes, else 0.
func headingLevel(s string) int {
	n := 0
	for n < len(s) && s[n] == '#' {
		n++
	}
	if n > 3 || n >= len(s) || s[n] != ' ' {
		return 0
	}
	return n
}

// applyOutsideTags applies fn only to text outside HTML tags so formatting
// never touches attribute values.
func applyOutsideTags(s string, fn func(string) string) string {
	var buf strings.Builder
	for len(s) > 0 {
		lt := strings.Index(s, "<")
		if lt < 0 {
			buf.WriteString(fn(s))
			break
		}
		if lt > 0 {
			buf.WriteString(fn(s[:lt]))
		}
		gt := strings.Index(s[lt:], ">")
		if gt < 0 {
			buf.WriteString(s[lt:])
			break
		}
		buf.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return buf.String()
}

// FormatInline escapes s and applies links, code spans, emphasis and
// hashtag/mention highlighting.
func FormatInline(s string) string {
	escaped := html.EscapeString(s)

	var spans []string
	stash := func(h string) string {
		spans = append(spans, h)
		return "\x00" + strconv.Itoa(len(spans)-1) + "\x00"
	}

	escaped = reInlineCode.ReplaceAllStringFunc(escaped, func(m string) string {
		return stash("<code>" + reInlineCode.FindStringSubmatch(m)[1] + "</code>")
	})
	escaped = reLink.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		href := SafeURL(match[2])
		if href == "" {
			return match[1]
		}
		return `<a href="` + href + `" rel="noopener noreferrer" target="_blank">` + match[1] + `</a>`
	})
	escaped = applyOutsideTags(escaped, func(seg string) string {
		seg = reBold.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reBoldUnderscore.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reItalic.ReplaceAllString(seg, "<em>$1</em>")
		seg = reItalicUnderscore.ReplaceAllString(seg, "$1<em>$2</em>")
		seg = reTag.ReplaceAllStringFunc(seg, func(m string) string {
			sub := reTag.FindStringSubmatch(m)
			class := "hashtag"
			if sub[2] == "@" {
				class = "mention"
			}
			return sub[1] + `<span class="` + class + `">` + sub[2] + sub[3] + `</span>`
		})
		return seg
	})

	for i, h := range spans {
		escaped = strings.Replace(escaped, "\x00"+strconv.Itoa(i)+"\x00", h, 1)
	}
	return escaped
}

// SafeURL validates and sanitizes a URL for use in an href attribute.
// Anything but relative, http(s) and mailto links is dropped.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") && !strings.HasPrefix(val, "//") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto":
		return html.EscapeString(val)
	}
	return ""
}
