package repurpose

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/contentsync/contentsync/internal/ratelimit"
	"github.com/contentsync/contentsync/platform"
)

// stubGenerator returns errs in order, then text.
type stubGenerator struct {
	mu    sync.Mutex
	errs  []error
	text  string
	calls int
	last  string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.last = prompt
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return Result{}, err
	}
	return Result{Text: s.text, TokensUsed: 42}, nil
}

func (s *stubGenerator) Model() string { return "stub" }

func validRequest() Request {
	return Request{
		Title:           "Launch video",
		OriginalContent: "We shipped version 2 today.",
		Source:          platform.YouTube,
		Target:          platform.Twitter,
		ContentType:     Thread,
	}
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr bool
	}{
		{"valid", func(*Request) {}, false},
		{"empty content", func(r *Request) { r.OriginalContent = "   " }, true},
		{"content too long", func(r *Request) { r.OriginalContent = strings.Repeat("a", maxContentLen+1) }, true},
		{"title too long", func(r *Request) { r.Title = strings.Repeat("t", maxTitleLen+1) }, true},
		{"bad source", func(r *Request) { r.Source = "myspace" }, true},
		{"bad target", func(r *Request) { r.Target = "" }, true},
		{"bad content type", func(r *Request) { r.ContentType = "podcast" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.mutate(&r)
			err := r.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("Validate() error = %v, want wrapped ErrInvalidRequest", err)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt(validRequest())
	wants := []string{
		"Repurpose the following content from YouTube to Twitter as thread:",
		"Original Content: We shipped version 2 today.",
		"2. Adapts to Twitter's format and audience",
		"5. Optimizes for engagement on Twitter",
	}
	for _, w := range wants {
		if !strings.Contains(got, w) {
			t.Errorf("BuildPrompt() missing %q in:\n%s", w, got)
		}
	}
	if !strings.HasSuffix(got, "Return only the repurposed content without any explanations.") {
		t.Errorf("BuildPrompt() has wrong ending:\n%s", got)
	}
}

func TestHashtags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"no tags here", nil},
		{"Big news! #Launch #golang", []string{"launch", "golang"}},
		{"#dup text #DUP #other", []string{"dup", "other"}},
		{"email me at a#b.com", nil},
		{"line one\n#second_line", []string{"second_line"}},
	}
	for _, tt := range tests {
		got := Hashtags(tt.in)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("Hashtags(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRetryingRecoversFromTransientErrors(t *testing.T) {
	stub := &stubGenerator{errs: []error{errors.New("503"), errors.New("503")}, text: "ok"}
	g := Retrying(stub, 3, time.Millisecond)

	res, err := g.Generate(context.Background(), "p")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.Text != "ok" {
		t.Errorf("Text = %q, want ok", res.Text)
	}
	if stub.calls != 3 {
		t.Errorf("calls = %d, want 3", stub.calls)
	}
	if g.Model() != "stub" {
		t.Errorf("Model() = %q, want stub", g.Model())
	}
}

func TestRetryingGivesUp(t *testing.T) {
	boom := errors.New("boom")
	stub := &stubGenerator{errs: []error{boom, boom, boom, boom}}
	g := Retrying(stub, 2, time.Millisecond)

	_, err := g.Generate(context.Background(), "p")
	if !errors.Is(err, boom) {
		t.Fatalf("Generate() error = %v, want boom", err)
	}
	if stub.calls != 3 {
		t.Errorf("calls = %d, want 3", stub.calls)
	}
}

func TestRetryingDoesNotRetryPermanentErrors(t *testing.T) {
	for _, perm := range []error{ErrNotConfigured, ErrEmptyResponse, context.Canceled} {
		stub := &stubGenerator{errs: []error{perm}}
		g := Retrying(stub, 5, time.Millisecond)
		if _, err := g.Generate(context.Background(), "p"); !errors.Is(err, perm) {
			t.Errorf("Generate() error = %v, want %v", err, perm)
		}
		if stub.calls != 1 {
			t.Errorf("%v: calls = %d, want 1", perm, stub.calls)
		}
	}
}

func TestServiceRepurpose(t *testing.T) {
	stub := &stubGenerator{text: "Thread 1/3 ... #launch"}
	svc := NewService(stub, nil)

	out, err := svc.Repurpose(context.Background(), "user-1", validRequest())
	if err != nil {
		t.Fatalf("Repurpose() error = %v", err)
	}
	if out.Text != stub.text {
		t.Errorf("Text = %q, want %q", out.Text, stub.text)
	}
	if out.Prompt != stub.last {
		t.Error("Prompt should be the prompt sent to the generator")
	}
	if out.Model != "stub" || out.TokensUsed != 42 {
		t.Errorf("Model/TokensUsed = %q/%d, want stub/42", out.Model, out.TokensUsed)
	}
	if len(out.Hashtags) != 1 || out.Hashtags[0] != "launch" {
		t.Errorf("Hashtags = %v, want [launch]", out.Hashtags)
	}
}

func TestServiceRejectsInvalidRequest(t *testing.T) {
	stub := &stubGenerator{text: "x"}
	svc := NewService(stub, nil)

	req := validRequest()
	req.OriginalContent = ""
	if _, err := svc.Repurpose(context.Background(), "u", req); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("Repurpose() error = %v, want ErrInvalidRequest", err)
	}
	if stub.calls != 0 {
		t.Errorf("generator called %d times for invalid request", stub.calls)
	}
}

func TestServiceRateLimit(t *testing.T) {
	l := ratelimit.New(1, time.Minute)
	defer l.Stop()
	svc := NewService(&stubGenerator{text: "x"}, l)

	if _, err := svc.Repurpose(context.Background(), "u", validRequest()); err != nil {
		t.Fatalf("first Repurpose() error = %v", err)
	}
	if _, err := svc.Repurpose(context.Background(), "u", validRequest()); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("second Repurpose() error = %v, want ErrRateLimited", err)
	}
}

func TestServiceUnconfigured(t *testing.T) {
	svc := NewService(nil, nil)
	out, err := svc.Repurpose(context.Background(), "u", validRequest())
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("Repurpose() error = %v, want ErrNotConfigured", err)
	}
	if out.Prompt == "" {
		t.Error("failed Output should still carry the prompt")
	}
}
