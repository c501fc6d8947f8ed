package contentsync

import (
	"testing"

	"github.com/contentsync/contentsync/platform"
)

func TestDetectGapsNoPlatforms(t *testing.T) {
	if gaps := DetectGaps(nil); len(gaps) != 0 {
		t.Errorf("DetectGaps(nil) = %d gaps, want 0", len(gaps))
	}
}

func TestDetectGapsOnlyRegisteredSources(t *testing.T) {
	gaps := DetectGaps([]Platform{
		{ID: "p1", Type: platform.Blog},
		{ID: "p2", Type: platform.Twitter},
	})
	if len(gaps) == 0 {
		t.Fatal("expected gaps for blog and twitter")
	}
	for _, g := range gaps {
		if g.Source != platform.Blog && g.Source != platform.Twitter {
			t.Errorf("gap %s has unregistered source %s", g.ID, g.Source)
		}
	}

	var thread *ContentGap
	for i := range gaps {
		if gaps[i].ID == "blog-twitter" {
			thread = &gaps[i]
		}
	}
	if thread == nil {
		t.Fatal("expected blog-twitter gap")
	}
	if !thread.TargetRegistered {
		t.Error("blog-twitter target is registered")
	}
	if thread.Priority != PriorityMedium {
		t.Errorf("blog-twitter priority = %s, want medium", thread.Priority)
	}
}

func TestDetectGapsOrderedByPriority(t *testing.T) {
	var all []Platform
	for i, typ := range platform.Types {
		all = append(all, Platform{ID: string(rune('a' + i)), Type: typ})
	}
	gaps := DetectGaps(all)
	if len(gaps) != len(gapRules) {
		t.Fatalf("len(gaps) = %d, want %d", len(gaps), len(gapRules))
	}
	for i := 1; i < len(gaps); i++ {
		if gaps[i-1].Priority.rank() > gaps[i].Priority.rank() {
			t.Errorf("gap %d (%s) before %d (%s) breaks priority order", i-1, gaps[i-1].Priority, i, gaps[i].Priority)
		}
	}
	if gaps[0].ID != "youtube-instagram" {
		t.Errorf("first gap = %s, want youtube-instagram", gaps[0].ID)
	}
}

func TestGapCounts(t *testing.T) {
	platforms := []Platform{
		{ID: "yt", Type: platform.YouTube},
		{ID: "ig", Type: platform.Instagram},
		{ID: "li", Type: platform.LinkedIn},
	}
	counts := gapCounts(platforms, DetectGaps(platforms))
	want := map[string]int{"yt": 3, "ig": 1, "li": 2}
	for id, n := range want {
		if counts[id] != n {
			t.Errorf("counts[%s] = %d, want %d", id, counts[id], n)
		}
	}
}
