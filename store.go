package contentsync

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/contentsync/contentsync/platform"
	"github.com/contentsync/contentsync/repurpose"
)

// ErrNotFound is returned when a requested row does not exist or belongs to another user.
var ErrNotFound = sql.ErrNoRows

// ErrEmailTaken is returned when signing up with an email that already has an account.
var ErrEmailTaken = errors.New("email already registered")

// Fixed-width so that lexical order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

// Store wraps a SQLite database holding users, platforms and generated content.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// Connection-scoped pragmas go in the DSN so every pooled connection gets them.
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    full_name TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS platforms (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    url TEXT NOT NULL DEFAULT '',
    platform_type TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    last_sync TEXT,
    content_count INTEGER NOT NULL DEFAULT 0,
    gap_count INTEGER NOT NULL DEFAULT 0,
    primary_color TEXT NOT NULL DEFAULT '',
    avatar_url TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_platforms_user ON platforms(user_id, created_at);

CREATE TABLE IF NOT EXISTS repurposed_content (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    original_content_title TEXT NOT NULL DEFAULT '',
    original_platform TEXT NOT NULL DEFAULT '',
    target_platform TEXT NOT NULL DEFAULT '',
    original_content TEXT NOT NULL DEFAULT '',
    repurposed_content TEXT NOT NULL,
    content_type TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    hashtags TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_repurposed_user_status ON repurposed_content(user_id, status);

CREATE TABLE IF NOT EXISTS content_reviews (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    content_id TEXT NOT NULL REFERENCES repurposed_content(id) ON DELETE CASCADE,
    status TEXT NOT NULL,
    reviewer_notes TEXT NOT NULL DEFAULT '',
    reviewed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ai_generations (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    prompt TEXT NOT NULL,
    response TEXT NOT NULL DEFAULT '',
    model_used TEXT NOT NULL,
    tokens_used INTEGER NOT NULL DEFAULT 0,
    processing_time_ms INTEGER NOT NULL DEFAULT 0,
    success INTEGER NOT NULL,
    error_message TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ai_generations_user ON ai_generations(user_id, created_at);
`)
	return err
}

// --- users ---

// CreateUser inserts a new account. Emails are stored lower-cased.
func (s *Store) CreateUser(email, fullName, passwordHash string) (User, error) {
	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(email),
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: passwordHash,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}
	_, err := s.db.Exec(`INSERT INTO users (id, email, full_name, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.FullName, u.PasswordHash, formatTime(now), formatTime(now))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return u, nil
}

// GetUserByEmail looks up an account by email.
func (s *Store) GetUserByEmail(email string) (User, error) {
	return s.scanUser(s.db.QueryRow(`SELECT id, email, full_name, password_hash, created_at, updated_at FROM users WHERE email = ?`, normalizeEmail(email)))
}

// GetUser looks up an account by ID.
func (s *Store) GetUser(id string) (User, error) {
	return s.scanUser(s.db.QueryRow(`SELECT id, email, full_name, password_hash, created_at, updated_at FROM users WHERE id = ?`, id))
}

func (s *Store) scanUser(row *sql.Row) (User, error) {
	var u User
	var created, updated string
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &created, &updated); err != nil {
		return User{}, err
	}
	u.CreatedAt = parseTime(created)
	u.UpdatedAt = parseTime(updated)
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// --- platforms ---

const platformColumns = `id, user_id, name, url, platform_type, status, last_sync, content_count, gap_count, primary_color, avatar_url, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPlatform(row scanner) (Platform, error) {
	var p Platform
	var typ, status, created, updated string
	var lastSync sql.NullString
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.URL, &typ, &status, &lastSync,
		&p.ContentCount, &p.GapCount, &p.PrimaryColor, &p.AvatarURL, &created, &updated); err != nil {
		return Platform{}, err
	}
	p.Type = platform.Type(typ)
	p.Status = PlatformStatus(status)
	if lastSync.Valid {
		t := parseTime(lastSync.String)
		p.LastSync = &t
	}
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	return p, nil
}

// ListPlatforms returns the user's platforms, newest first.
func (s *Store) ListPlatforms(userID string) ([]Platform, error) {
	rows, err := s.db.Query(`SELECT `+platformColumns+` FROM platforms WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var platforms []Platform
	for rows.Next() {
		p, err := scanPlatform(rows)
		if err != nil {
			return nil, err
		}
		platforms = append(platforms, p)
	}
	return platforms, rows.Err()
}

// GetPlatform returns one of the user's platforms.
func (s *Store) GetPlatform(userID, id string) (Platform, error) {
	return scanPlatform(s.db.QueryRow(`SELECT `+platformColumns+` FROM platforms WHERE id = ? AND user_id = ?`, id, userID))
}

// CreatePlatform inserts p for p.UserID. New platforms start out pending.
func (s *Store) CreatePlatform(p Platform) (Platform, error) {
	now := s.now()
	p.ID = uuid.NewString()
	if p.Status == "" {
		p.Status = StatusPending
	}
	p.CreatedAt = parseTime(formatTime(now))
	p.UpdatedAt = p.CreatedAt
	_, err := s.db.Exec(`INSERT INTO platforms (id, user_id, name, url, platform_type, status, primary_color, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Name, p.URL, string(p.Type), string(p.Status), p.PrimaryColor, formatTime(now), formatTime(now))
	if err != nil {
		return Platform{}, err
	}
	return p, nil
}

// UpdatePlatform saves the editable fields of p (name, url, type, status, color).
func (s *Store) UpdatePlatform(p Platform) (Platform, error) {
	res, err := s.db.Exec(`UPDATE platforms SET name = ?, url = ?, platform_type = ?, status = ?, primary_color = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		p.Name, p.URL, string(p.Type), string(p.Status), p.PrimaryColor, formatTime(s.now()), p.ID, p.UserID)
	if err != nil {
		return Platform{}, err
	}
	if err := expectRow(res); err != nil {
		return Platform{}, err
	}
	return s.GetPlatform(p.UserID, p.ID)
}

// SetPlatformAvatar records the URL of an uploaded avatar.
func (s *Store) SetPlatformAvatar(userID, id, avatarURL string) error {
	res, err := s.db.Exec(`UPDATE platforms SET avatar_url = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		avatarURL, formatTime(s.now()), id, userID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// DeletePlatform removes one of the user's platforms.
func (s *Store) DeletePlatform(userID, id string) error {
	res, err := s.db.Exec(`DELETE FROM platforms WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// SetGapCounts stores the number of content gaps per platform ID.
func (s *Store) SetGapCounts(userID string, counts map[string]int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.Prepare(`UPDATE platforms SET gap_count = ? WHERE id = ? AND user_id = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for id, n := range counts {
		if _, err := stmt.Exec(n, id, userID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- repurposed content ---

const repurposedColumns = `id, user_id, original_content_title, original_platform, target_platform, original_content, repurposed_content, content_type, status, hashtags, notes, created_at, updated_at`

func scanRepurposed(row scanner) (RepurposedContent, error) {
	var rc RepurposedContent
	var src, dst, ct, status, tags, created, updated string
	if err := row.Scan(&rc.ID, &rc.UserID, &rc.OriginalContentTitle, &src, &dst, &rc.OriginalContent,
		&rc.RepurposedContent, &ct, &status, &tags, &rc.Notes, &created, &updated); err != nil {
		return RepurposedContent{}, err
	}
	rc.OriginalPlatform = platform.Type(src)
	rc.TargetPlatform = platform.Type(dst)
	rc.ContentType = repurpose.ContentType(ct)
	rc.Status = ReviewStatus(status)
	rc.Hashtags = ParseList(tags)
	rc.CreatedAt = parseTime(created)
	rc.UpdatedAt = parseTime(updated)
	return rc, nil
}

// SaveRepurposed inserts newly generated content. It enters the queue as pending.
func (s *Store) SaveRepurposed(rc RepurposedContent) (RepurposedContent, error) {
	now := s.now()
	rc.ID = uuid.NewString()
	if rc.Status == "" {
		rc.Status = ReviewPending
	}
	rc.CreatedAt = parseTime(formatTime(now))
	rc.UpdatedAt = rc.CreatedAt
	_, err := s.db.Exec(`INSERT INTO repurposed_content (`+repurposedColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rc.ID, rc.UserID, rc.OriginalContentTitle, string(rc.OriginalPlatform), string(rc.TargetPlatform),
		rc.OriginalContent, rc.RepurposedContent, string(rc.ContentType), string(rc.Status),
		JoinList(rc.Hashtags), rc.Notes, formatTime(now), formatTime(now))
	if err != nil {
		return RepurposedContent{}, err
	}
	return rc, nil
}

// ListRepurposed returns the user's generated content, newest first.
// An empty status returns every item.
func (s *Store) ListRepurposed(userID string, status ReviewStatus) ([]RepurposedContent, error) {
	var rows *sql.Rows
	var err error
	if status == "" {
		rows, err = s.db.Query(`SELECT `+repurposedColumns+` FROM repurposed_content WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
	} else {
		rows, err = s.db.Query(`SELECT `+repurposedColumns+` FROM repurposed_content WHERE user_id = ? AND status = ? ORDER BY created_at DESC, rowid DESC`, userID, string(status))
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []RepurposedContent
	for rows.Next() {
		rc, err := scanRepurposed(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rc)
	}
	return items, rows.Err()
}

// GetRepurposed returns one generated item.
func (s *Store) GetRepurposed(userID, id string) (RepurposedContent, error) {
	return scanRepurposed(s.db.QueryRow(`SELECT `+repurposedColumns+` FROM repurposed_content WHERE id = ? AND user_id = ?`, id, userID))
}

// CountRepurposed counts the user's generated content with the given status.
func (s *Store) CountRepurposed(userID string, status ReviewStatus) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM repurposed_content WHERE user_id = ? AND status = ?`, userID, string(status)).Scan(&n)
	return n, err
}

// UpdateRepurposedStatus moves an item through the review queue and records
// the review. Empty notes keep the existing notes.
func (s *Store) UpdateRepurposedStatus(userID, id string, status ReviewStatus, notes string) (RepurposedContent, error) {
	now := formatTime(s.now())
	tx, err := s.db.Begin()
	if err != nil {
		return RepurposedContent{}, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE repurposed_content SET status = ?, notes = CASE WHEN ? = '' THEN notes ELSE ? END, updated_at = ? WHERE id = ? AND user_id = ?`,
		string(status), notes, notes, now, id, userID)
	if err != nil {
		return RepurposedContent{}, err
	}
	if err := expectRow(res); err != nil {
		return RepurposedContent{}, err
	}
	if _, err := tx.Exec(`INSERT INTO content_reviews (id, user_id, content_id, status, reviewer_notes, reviewed_at) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), userID, id, string(status), notes, now); err != nil {
		return RepurposedContent{}, err
	}
	if err := tx.Commit(); err != nil {
		return RepurposedContent{}, err
	}
	return s.GetRepurposed(userID, id)
}

// ListReviews returns the review history of one item, oldest first.
func (s *Store) ListReviews(userID, contentID string) ([]ContentReview, error) {
	rows, err := s.db.Query(`SELECT id, user_id, content_id, status, reviewer_notes, reviewed_at FROM content_reviews WHERE user_id = ? AND content_id = ? ORDER BY reviewed_at, rowid`, userID, contentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []ContentReview
	for rows.Next() {
		var r ContentReview
		var status, reviewed string
		if err := rows.Scan(&r.ID, &r.UserID, &r.ContentID, &status, &r.ReviewerNotes, &reviewed); err != nil {
			return nil, err
		}
		r.Status = ReviewStatus(status)
		r.ReviewedAt = parseTime(reviewed)
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// --- generation log ---

// LogGeneration records a call to the language model.
func (s *Store) LogGeneration(g Generation) error {
	success := 0
	if g.Success {
		success = 1
	}
	_, err := s.db.Exec(`INSERT INTO ai_generations (id, user_id, prompt, response, model_used, tokens_used, processing_time_ms, success, error_message, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), g.UserID, g.Prompt, g.Response, g.ModelUsed, g.TokensUsed, g.ProcessingTimeMs, success, g.ErrorMessage, formatTime(s.now()))
	return err
}

// ListGenerations returns the user's most recent model calls.
func (s *Store) ListGenerations(userID string, limit int) ([]Generation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT id, user_id, prompt, response, model_used, tokens_used, processing_time_ms, success, error_message, created_at FROM ai_generations WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gens []Generation
	for rows.Next() {
		var g Generation
		var success int
		var created string
		if err := rows.Scan(&g.ID, &g.UserID, &g.Prompt, &g.Response, &g.ModelUsed, &g.TokensUsed,
			&g.ProcessingTimeMs, &success, &g.ErrorMessage, &created); err != nil {
			return nil, err
		}
		g.Success = success == 1
		g.CreatedAt = parseTime(created)
		gens = append(gens, g)
	}
	return gens, rows.Err()
}
