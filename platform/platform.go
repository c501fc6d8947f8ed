// Package platform identifies content-publishing platforms from their URLs.
package platform

import (
	"fmt"
	"strings"
)

// Type is one of the publishing destinations ContentSync knows about.
type Type string

const (
	YouTube   Type = "youtube"
	Instagram Type = "instagram"
	Twitter   Type = "twitter"
	LinkedIn  Type = "linkedin"
	TikTok    Type = "tiktok"
	Blog      Type = "blog"
)

// Types lists every platform type in display order.
var Types = []Type{YouTube, Instagram, Twitter, LinkedIn, TikTok, Blog}

var labels = map[Type]string{
	YouTube:   "YouTube",
	Instagram: "Instagram",
	Twitter:   "Twitter",
	LinkedIn:  "LinkedIn",
	TikTok:    "TikTok",
	Blog:      "Blog",
}

// ParseType converts a user-supplied string into a Type.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := labels[t]; !ok {
		return "", fmt.Errorf("unknown platform type: %q", s)
	}
	return t, nil
}

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	_, ok := labels[t]
	return ok
}

// Label returns the human-readable platform name, e.g. "YouTube".
func (t Type) Label() string {
	if l, ok := labels[t]; ok {
		return l
	}
	return string(t)
}

// Info describes what Classify found out about a URL.
type Info struct {
	Type     Type   `json:"platform_type"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Detected bool   `json:"detected"`
}
