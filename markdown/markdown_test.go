package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func render(md string) string {
	var buf bytes.Buffer
	Render(&buf, md)
	return buf.String()
}

func TestFormatInline(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bold", "**bold**", "<strong>bold</strong>"},
		{"bold underscore", "__bold__", "<strong>bold</strong>"},
		{"italic", "text *italic* more", "text <em>italic</em> more"},
		{"italic underscore", "an _aside_ here", "an <em>aside</em> here"},
		{"snake case untouched", "use snake_case_names", "use snake_case_names"},
		{"nested", "**bold *italic* text**", "<strong>bold <em>italic</em> text</strong>"},
		{"code keeps stars", "run `a*b*c` now", "run <code>a*b*c</code> now"},
		{"escapes html", "<script>alert(1)</script>", "&lt;script&gt;alert(1)&lt;/script&gt;"},
		{"hashtag", "ship it #launch", `ship it <span class="hashtag">#launch</span>`},
		{"mention", "@team thanks", `<span class="mention">@team</span> thanks`},
		{"email is not a mention", "mail me@example.com", "mail me@example.com"},
		{"apostrophe entity", "it's #go", `it&#39;s <span class="hashtag">#go</span>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatInline(tt.input); got != tt.want {
				t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatInlineLinks(t *testing.T) {
	got := FormatInline("[docs](https://example.com/a_b_c)")
	want := `<a href="https://example.com/a_b_c" rel="noopener noreferrer" target="_blank">docs</a>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if got := FormatInline("[click](javascript:alert(1))"); strings.Contains(got, "href") {
		t.Errorf("javascript link must be dropped, got %q", got)
	}
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com", "https://example.com"},
		{"/review-queue/", "/review-queue/"},
		{"mailto:a@example.com", "mailto:a@example.com"},
		{"//evil.example", ""},
		{"javascript:alert(1)", ""},
		{"data:text/html,hi", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SafeURL(tt.in); got != tt.want {
			t.Errorf("SafeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderBlocks(t *testing.T) {
	tests := []struct {
		name string
		md   string
		want string
	}{
		{"paragraph keeps line breaks", "line one\nline two", "<p>line one<br/>line two</p>"},
		{"paragraphs", "one\n\ntwo", "<p>one</p><p>two</p>"},
		{"heading", "## Title", "<h2>Title</h2>"},
		{"hashtag line is not a heading", "#launch", `<p><span class="hashtag">#launch</span></p>`},
		{"bullets", "- a\n* b\n• c", "<ul><li>a</li><li>b</li><li>c</li></ul>"},
		{"numbered thread", "1/ skip\n1. first\n2) second", "<p>1/ skip</p><ol><li>first</li><li>second</li></ol>"},
		{"quote", "> wise\n> words", "<blockquote>wise<br/>words</blockquote>"},
		{"rule", "a\n---\nb", "<p>a</p><hr/><p>b</p>"},
		{"code", "```\n<b>x</b>\n```", `<pre class="code-block"><code>&lt;b&gt;x&lt;/b&gt;` + "\n</code></pre>"},
		{"unterminated code closes", "```\nx", `<pre class="code-block"><code>x` + "\n</code></pre>"},
		{"crlf", "a\r\nb", "<p>a<br/>b</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(tt.md); got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.md, got, tt.want)
			}
		})
	}
}

func TestMarkdownComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown("**hi**").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := buf.String(); got != "<p><strong>hi</strong></p>" {
		t.Errorf("got %q", got)
	}
}
