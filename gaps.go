package contentsync

import (
	"sort"

	"github.com/contentsync/contentsync/platform"
	"github.com/contentsync/contentsync/repurpose"
)

// Priority ranks how worthwhile a content gap is.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	}
	return 2
}

// ContentGap is a suggestion to adapt content from one platform to another.
type ContentGap struct {
	ID               string                `json:"id"`
	Title            string                `json:"title"`
	Description      string                `json:"description"`
	Source           platform.Type         `json:"source_platform"`
	Target           platform.Type         `json:"target_platform"`
	ContentType      repurpose.ContentType `json:"content_type"`
	Priority         Priority              `json:"priority"`
	TargetRegistered bool                  `json:"target_registered"`
}

type gapRule struct {
	source, target platform.Type
	contentType    repurpose.ContentType
	priority       Priority
	title, desc    string
}

var gapRules = []gapRule{
	{platform.YouTube, platform.Instagram, repurpose.Video, PriorityHigh,
		"YouTube Video to Instagram Reels", "Transform your popular YouTube content into engaging Instagram Reels"},
	{platform.YouTube, platform.TikTok, repurpose.Video, PriorityHigh,
		"YouTube Video to TikTok Clips", "Cut the strongest moments of your videos into short vertical clips"},
	{platform.Blog, platform.Twitter, repurpose.Thread, PriorityMedium,
		"Blog Post to Twitter Thread", "Break down your blog posts into compelling Twitter threads"},
	{platform.Blog, platform.LinkedIn, repurpose.Article, PriorityMedium,
		"Blog Post to LinkedIn Article", "Republish long-form writing for a professional audience"},
	{platform.YouTube, platform.Blog, repurpose.Article, PriorityMedium,
		"YouTube Video to Blog Post", "Turn video scripts into searchable written articles"},
	{platform.Instagram, platform.TikTok, repurpose.Video, PriorityMedium,
		"Instagram Reels to TikTok", "Reuse short-form video that already performs well"},
	{platform.TikTok, platform.Instagram, repurpose.Video, PriorityMedium,
		"TikTok to Instagram Reels", "Bring your TikTok hits to your Instagram followers"},
	{platform.LinkedIn, platform.TikTok, repurpose.Video, PriorityLow,
		"LinkedIn Article to TikTok", "Convert professional insights into TikTok content"},
	{platform.Twitter, platform.LinkedIn, repurpose.Post, PriorityLow,
		"Twitter Thread to LinkedIn Post", "Expand your best threads into LinkedIn posts"},
	{platform.LinkedIn, platform.Twitter, repurpose.Thread, PriorityLow,
		"LinkedIn Post to Twitter Thread", "Condense LinkedIn posts into punchy threads"},
}

// DetectGaps returns the adaptation suggestions that apply to the given
// platforms: every rule whose source platform type is registered, high
// priority first.
func DetectGaps(platforms []Platform) []ContentGap {
	registered := make(map[platform.Type]bool)
	for _, p := range platforms {
		registered[p.Type] = true
	}

	var gaps []ContentGap
	for _, r := range gapRules {
		if !registered[r.source] {
			continue
		}
		gaps = append(gaps, ContentGap{
			ID:               string(r.source) + "-" + string(r.target),
			Title:            r.title,
			Description:      r.desc,
			Source:           r.source,
			Target:           r.target,
			ContentType:      r.contentType,
			Priority:         r.priority,
			TargetRegistered: registered[r.target],
		})
	}
	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].Priority.rank() < gaps[j].Priority.rank()
	})
	return gaps
}

// gapCounts returns, per platform ID, how many suggestions use it as source.
func gapCounts(platforms []Platform, gaps []ContentGap) map[string]int {
	bySource := make(map[platform.Type]int)
	for _, g := range gaps {
		bySource[g.Source]++
	}
	counts := make(map[string]int, len(platforms))
	for _, p := range platforms {
		counts[p.ID] = bySource[p.Type]
	}
	return counts
}
