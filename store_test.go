package contentsync

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/contentsync/contentsync/platform"
	"github.com/contentsync/contentsync/repurpose"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *Store, email string) User {
	t.Helper()
	u, err := s.CreateUser(email, "Test User", "hash")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return u
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
	// Re-running the schema must be harmless.
	if err := s.ensureSchema(); err != nil {
		t.Fatalf("ensureSchema twice failed: %v", err)
	}
}

func TestCreateAndGetUser(t *testing.T) {
	s := setupTestStore(t)
	u := createTestUser(t, s, "  Jane@Example.com ")

	if u.Email != "jane@example.com" {
		t.Errorf("Email = %q, want normalized jane@example.com", u.Email)
	}

	got, err := s.GetUserByEmail("JANE@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if got.ID != u.ID || got.FullName != "Test User" || got.PasswordHash != "hash" {
		t.Errorf("GetUserByEmail = %+v, want %+v", got, u)
	}

	byID, err := s.GetUser(u.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if byID.Email != u.Email {
		t.Errorf("GetUser email = %q, want %q", byID.Email, u.Email)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := setupTestStore(t)
	createTestUser(t, s, "dup@example.com")
	if _, err := s.CreateUser("DUP@example.com", "", "hash"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.GetUserByEmail("nobody@example.com"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPlatformCRUD(t *testing.T) {
	s := setupTestStore(t)
	u := createTestUser(t, s, "p@example.com")

	created, err := s.CreatePlatform(Platform{
		UserID:       u.ID,
		Name:         "@someuser",
		URL:          "https://instagram.com/someuser",
		Type:         platform.Instagram,
		PrimaryColor: "#e1306c",
	})
	if err != nil {
		t.Fatalf("CreatePlatform failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created platform should have an ID")
	}
	if created.Status != StatusPending {
		t.Errorf("Status = %q, want pending", created.Status)
	}

	got, err := s.GetPlatform(u.ID, created.ID)
	if err != nil {
		t.Fatalf("GetPlatform failed: %v", err)
	}
	if got.Name != "@someuser" || got.Type != platform.Instagram || got.PrimaryColor != "#e1306c" {
		t.Errorf("GetPlatform = %+v", got)
	}
	if got.LastSync != nil {
		t.Error("LastSync should be nil for a new platform")
	}

	got.Name = "Main Instagram"
	got.Status = StatusConnected
	updated, err := s.UpdatePlatform(got)
	if err != nil {
		t.Fatalf("UpdatePlatform failed: %v", err)
	}
	if updated.Name != "Main Instagram" || updated.Status != StatusConnected {
		t.Errorf("UpdatePlatform = %+v", updated)
	}

	if err := s.SetPlatformAvatar(u.ID, created.ID, "/public/avatars/x.jpg"); err != nil {
		t.Fatalf("SetPlatformAvatar failed: %v", err)
	}
	got, _ = s.GetPlatform(u.ID, created.ID)
	if got.AvatarURL != "/public/avatars/x.jpg" {
		t.Errorf("AvatarURL = %q", got.AvatarURL)
	}

	if err := s.DeletePlatform(u.ID, created.ID); err != nil {
		t.Fatalf("DeletePlatform failed: %v", err)
	}
	if _, err := s.GetPlatform(u.ID, created.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeletePlatform(u.ID, created.ID); err != ErrNotFound {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestPlatformsAreUserScoped(t *testing.T) {
	s := setupTestStore(t)
	alice := createTestUser(t, s, "alice@example.com")
	bob := createTestUser(t, s, "bob@example.com")

	p, err := s.CreatePlatform(Platform{UserID: alice.ID, Name: "Blog", Type: platform.Blog})
	if err != nil {
		t.Fatalf("CreatePlatform failed: %v", err)
	}

	if _, err := s.GetPlatform(bob.ID, p.ID); err != ErrNotFound {
		t.Errorf("bob should not see alice's platform, got %v", err)
	}
	p.UserID = bob.ID
	if _, err := s.UpdatePlatform(p); err != ErrNotFound {
		t.Errorf("bob should not update alice's platform, got %v", err)
	}
	if err := s.DeletePlatform(bob.ID, p.ID); err != ErrNotFound {
		t.Errorf("bob should not delete alice's platform, got %v", err)
	}
	list, err := s.ListPlatforms(bob.ID)
	if err != nil {
		t.Fatalf("ListPlatforms failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("bob's list = %d platforms, want 0", len(list))
	}
}

func TestListPlatformsNewestFirst(t *testing.T) {
	s := setupTestStore(t)
	u := createTestUser(t, s, "order@example.com")
	for _, name := range []string{"first", "second", "third"} {
		if _, err := s.CreatePlatform(Platform{UserID: u.ID, Name: name, Type: platform.Blog}); err != nil {
			t.Fatalf("CreatePlatform failed: %v", err)
		}
	}
	list, err := s.ListPlatforms(u.ID)
	if err != nil {
		t.Fatalf("ListPlatforms failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	if list[0].Name != "third" || list[2].Name != "first" {
		t.Errorf("order = %s, %s, %s; want third, second, first", list[0].Name, list[1].Name, list[2].Name)
	}
}

func TestSetGapCounts(t *testing.T) {
	s := setupTestStore(t)
	u := createTestUser(t, s, "gaps@example.com")
	p, _ := s.CreatePlatform(Platform{UserID: u.ID, Name: "yt", Type: platform.YouTube})

	if err := s.SetGapCounts(u.ID, map[string]int{p.ID: 3}); err != nil {
		t.Fatalf("SetGapCounts failed: %v", err)
	}
	got, _ := s.GetPlatform(u.ID, p.ID)
	if got.GapCount != 3 {
		t.Errorf("GapCount = %d, want 3", got.GapCount)
	}
}

func TestRepurposedLifecycle(t *testing.T) {
	s := setupTestStore(t)
	u := createTestUser(t, s, "rc@example.com")

	saved, err := s.SaveRepurposed(RepurposedContent{
		UserID:               u.ID,
		OriginalContentTitle: "Launch",
		OriginalPlatform:     platform.YouTube,
		TargetPlatform:       platform.Twitter,
		OriginalContent:      "We launched",
		RepurposedContent:    "1/ We launched #launch",
		ContentType:          repurpose.Thread,
		Hashtags:             []string{"launch"},
	})
	if err != nil {
		t.Fatalf("SaveRepurposed failed: %v", err)
	}
	if saved.Status != ReviewPending {
		t.Errorf("Status = %q, want pending", saved.Status)
	}

	pending, err := s.CountRepurposed(u.ID, ReviewPending)
	if err != nil || pending != 1 {
		t.Fatalf("CountRepurposed = %d, %v; want 1", pending, err)
	}

	updated, err := s.UpdateRepurposedStatus(u.ID, saved.ID, ReviewApproved, "looks good")
	if err != nil {
		t.Fatalf("UpdateRepurposedStatus failed: %v", err)
	}
	if updated.Status != ReviewApproved || updated.Notes != "looks good" {
		t.Errorf("updated = %+v", updated)
	}
	if len(updated.Hashtags) != 1 || updated.Hashtags[0] != "launch" {
		t.Errorf("Hashtags = %v, want [launch]", updated.Hashtags)
	}

	// Empty notes keep the previous ones.
	updated, err = s.UpdateRepurposedStatus(u.ID, saved.ID, ReviewPublished, "")
	if err != nil {
		t.Fatalf("UpdateRepurposedStatus failed: %v", err)
	}
	if updated.Notes != "looks good" {
		t.Errorf("Notes = %q, want previous notes kept", updated.Notes)
	}

	reviews, err := s.ListReviews(u.ID, saved.ID)
	if err != nil {
		t.Fatalf("ListReviews failed: %v", err)
	}
	if len(reviews) != 2 || reviews[0].Status != ReviewApproved || reviews[1].Status != ReviewPublished {
		t.Errorf("reviews = %+v", reviews)
	}

	approved, _ := s.ListRepurposed(u.ID, ReviewApproved)
	if len(approved) != 0 {
		t.Errorf("approved list = %d, want 0 after publishing", len(approved))
	}
	all, _ := s.ListRepurposed(u.ID, "")
	if len(all) != 1 {
		t.Errorf("all list = %d, want 1", len(all))
	}

	if _, err := s.UpdateRepurposedStatus(u.ID, "missing", ReviewRejected, ""); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for missing item, got %v", err)
	}
}

func TestGenerationLog(t *testing.T) {
	s := setupTestStore(t)
	u := createTestUser(t, s, "gen@example.com")

	if err := s.LogGeneration(Generation{UserID: u.ID, Prompt: "p1", Response: "r1", ModelUsed: "m", TokensUsed: 10, ProcessingTimeMs: 120, Success: true}); err != nil {
		t.Fatalf("LogGeneration failed: %v", err)
	}
	if err := s.LogGeneration(Generation{UserID: u.ID, Prompt: "p2", ModelUsed: "m", ErrorMessage: "quota"}); err != nil {
		t.Fatalf("LogGeneration failed: %v", err)
	}

	gens, err := s.ListGenerations(u.ID, 10)
	if err != nil {
		t.Fatalf("ListGenerations failed: %v", err)
	}
	if len(gens) != 2 {
		t.Fatalf("len = %d, want 2", len(gens))
	}
	if gens[0].Prompt != "p2" || gens[0].Success || gens[0].ErrorMessage != "quota" {
		t.Errorf("newest generation = %+v", gens[0])
	}
	if !gens[1].Success || gens[1].TokensUsed != 10 || gens[1].ProcessingTimeMs != 120 {
		t.Errorf("oldest generation = %+v", gens[1])
	}

	limited, _ := s.ListGenerations(u.ID, 1)
	if len(limited) != 1 {
		t.Errorf("limit 1 returned %d rows", len(limited))
	}
}

func TestParseList(t *testing.T) {
	if got := ParseList(JoinList([]string{"go", " ", "web"})); len(got) != 2 || got[0] != "go" || got[1] != "web" {
		t.Errorf("round trip = %v, want [go web]", got)
	}
	if got := ParseList(""); got != nil {
		t.Errorf("ParseList(\"\") = %v, want nil", got)
	}
	if got := JoinList(nil); got != "" {
		t.Errorf("JoinList(nil) = %q, want empty", got)
	}
}
