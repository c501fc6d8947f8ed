// Package repurpose rewrites content for a different publishing platform
// using a hosted large-language model.
package repurpose

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/contentsync/contentsync/platform"
)

// ContentType is the shape the repurposed content should take.
type ContentType string

const (
	Video    ContentType = "video"
	Post     ContentType = "post"
	Story    ContentType = "story"
	Article  ContentType = "article"
	Thread   ContentType = "thread"
	Carousel ContentType = "carousel"
)

// ContentTypes lists every supported content type.
var ContentTypes = []ContentType{Video, Post, Story, Article, Thread, Carousel}

// Valid reports whether ct is a supported content type.
func (ct ContentType) Valid() bool {
	for _, c := range ContentTypes {
		if c == ct {
			return true
		}
	}
	return false
}

// Input validation limits.
const (
	maxContentLen = 20000
	maxTitleLen   = 200
)

// ErrInvalidRequest wraps every validation failure returned by Request.Validate.
var ErrInvalidRequest = errors.New("invalid repurpose request")

// Request describes a single repurposing job.
type Request struct {
	Title           string
	OriginalContent string
	Source          platform.Type
	Target          platform.Type
	ContentType     ContentType
}

// Validate checks that r can be turned into a prompt.
func (r Request) Validate() error {
	switch {
	case strings.TrimSpace(r.OriginalContent) == "":
		return fmt.Errorf("%w: original content is required", ErrInvalidRequest)
	case len(r.OriginalContent) > maxContentLen:
		return fmt.Errorf("%w: original content exceeds %d bytes", ErrInvalidRequest, maxContentLen)
	case len(r.Title) > maxTitleLen:
		return fmt.Errorf("%w: title exceeds %d bytes", ErrInvalidRequest, maxTitleLen)
	case !r.Source.Valid():
		return fmt.Errorf("%w: unknown source platform %q", ErrInvalidRequest, r.Source)
	case !r.Target.Valid():
		return fmt.Errorf("%w: unknown target platform %q", ErrInvalidRequest, r.Target)
	case !r.ContentType.Valid():
		return fmt.Errorf("%w: unknown content type %q", ErrInvalidRequest, r.ContentType)
	}
	return nil
}

// BuildPrompt renders the instruction sent to the model.
func BuildPrompt(r Request) string {
	src, dst := r.Source.Label(), r.Target.Label()
	var b strings.Builder
	fmt.Fprintf(&b, "Repurpose the following content from %s to %s as %s:\n\n", src, dst, r.ContentType)
	fmt.Fprintf(&b, "Original Content: %s\n\n", strings.TrimSpace(r.OriginalContent))
	b.WriteString("Please create engaging content that:\n")
	b.WriteString("1. Maintains the core message and value\n")
	fmt.Fprintf(&b, "2. Adapts to %s's format and audience\n", dst)
	fmt.Fprintf(&b, "3. Uses appropriate tone and style for %s\n", dst)
	b.WriteString("4. Includes relevant hashtags if applicable\n")
	fmt.Fprintf(&b, "5. Optimizes for engagement on %s\n\n", dst)
	b.WriteString("Return only the repurposed content without any explanations.")
	return b.String()
}

var hashtagRe = regexp.MustCompile(`(?:^|\s)#([\p{L}\p{N}_]+)`)

// Hashtags returns the distinct hashtags in text, lower-cased, in order of first use.
func Hashtags(text string) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, m := range hashtagRe.FindAllStringSubmatch(text, -1) {
		tag := strings.ToLower(m[1])
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
