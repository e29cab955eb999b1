package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Keys shared with the web client so exported data stays recognizable.
const (
	KeyHideResumePrompt = "hiredoor_hide_resume_prompt"
	KeyHomeJobURL       = "hiredoor_home_job_url"
	KeySession          = "hiredoor_session"
	KeySyncedUsers      = "hiredoor_synced_users"
	KeySearchSnapshot   = "hiredoor_search"

	returnPathPrefix = "returnPath:"
)

// MaxRecentSearches bounds the recent search history.
const MaxRecentSearches = 10

// HideResumePrompt reports whether the user dismissed the resume prompt.
func (s *Store) HideResumePrompt(ctx context.Context) (bool, error) {
	value, err := s.getOr(ctx, KeyHideResumePrompt, "")
	if err != nil {
		return false, err
	}
	return value == "true", nil
}

// SetHideResumePrompt records whether the resume prompt is dismissed.
func (s *Store) SetHideResumePrompt(ctx context.Context, hide bool) error {
	if !hide {
		return s.Delete(ctx, KeyHideResumePrompt)
	}
	return s.Set(ctx, KeyHideResumePrompt, "true")
}

// HomeJobURL returns the job URL last entered on the search screen, if any.
func (s *Store) HomeJobURL(ctx context.Context) (string, error) {
	return s.getOr(ctx, KeyHomeJobURL, "")
}

// SetHomeJobURL remembers the job URL; an empty URL clears it.
func (s *Store) SetHomeJobURL(ctx context.Context, url string) error {
	if url == "" {
		return s.Delete(ctx, KeyHomeJobURL)
	}
	return s.Set(ctx, KeyHomeJobURL, url)
}

// ReturnPath returns the saved return path for key, or fallback when none is saved.
func (s *Store) ReturnPath(ctx context.Context, key, fallback string) (string, error) {
	return s.getOr(ctx, returnPathPrefix+key, fallback)
}

// SetReturnPath saves path as the place to return to for key.
func (s *Store) SetReturnPath(ctx context.Context, key, path string) error {
	return s.Set(ctx, returnPathPrefix+key, path)
}

// ConsumeReturnPath returns the saved path (or fallback) and clears it.
func (s *Store) ConsumeReturnPath(ctx context.Context, key, fallback string) (string, error) {
	path, err := s.ReturnPath(ctx, key, fallback)
	if err != nil {
		return "", err
	}
	if err := s.Delete(ctx, returnPathPrefix+key); err != nil {
		return "", err
	}
	return path, nil
}

// Session returns the serialized session, or ErrNotFound when signed out.
func (s *Store) Session(ctx context.Context) (string, error) {
	return s.Get(ctx, KeySession)
}

// SetSession stores the serialized session.
func (s *Store) SetSession(ctx context.Context, blob string) error {
	return s.Set(ctx, KeySession, blob)
}

// ClearSession removes the session and everything scoped to it.
func (s *Store) ClearSession(ctx context.Context) error {
	if err := s.Delete(ctx, KeySession); err != nil {
		return err
	}
	return s.Delete(ctx, KeySyncedUsers)
}

// SyncedUsers returns the user IDs already synced to the backend this session.
func (s *Store) SyncedUsers(ctx context.Context) (map[string]bool, error) {
	raw, err := s.getOr(ctx, KeySyncedUsers, "")
	if err != nil || raw == "" {
		return map[string]bool{}, err
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("failed to decode synced users: %w", err)
	}
	synced := make(map[string]bool, len(ids))
	for _, id := range ids {
		synced[id] = true
	}
	return synced, nil
}

// MarkSynced adds or removes a user ID from the synced set.
func (s *Store) MarkSynced(ctx context.Context, userID string, synced bool) error {
	set, err := s.SyncedUsers(ctx)
	if err != nil {
		return err
	}
	if synced {
		set[userID] = true
	} else {
		delete(set, userID)
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode synced users: %w", err)
	}
	return s.Set(ctx, KeySyncedUsers, string(data))
}

// LoadJSON decodes the JSON value under key into v. It reports false when the key is unset.
func (s *Store) LoadJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON stores v as JSON under key.
func (s *Store) SaveJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}

// RecentSearch is one entry of the search history.
type RecentSearch struct {
	URL        string    `json:"url"`
	SearchedAt time.Time `json:"searchedAt"`
}

// AddRecentSearch records url at the given time. Repeated URLs move to the front
// and the history is trimmed to MaxRecentSearches.
func (s *Store) AddRecentSearch(ctx context.Context, url string, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM recent_searches WHERE url = ?`, url); err != nil {
		return fmt.Errorf("failed to dedupe recent search: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO recent_searches (url, searched_at) VALUES (?, ?)`,
		url, at.UnixNano(),
	); err != nil {
		return fmt.Errorf("failed to add recent search: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM recent_searches WHERE id NOT IN (
			SELECT id FROM recent_searches ORDER BY searched_at DESC, id DESC LIMIT ?
		)`,
		MaxRecentSearches,
	); err != nil {
		return fmt.Errorf("failed to trim recent searches: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recent search: %w", err)
	}
	return nil
}

// RecentSearches lists the search history, newest first.
func (s *Store) RecentSearches(ctx context.Context) ([]RecentSearch, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT url, searched_at FROM recent_searches ORDER BY searched_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent searches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var searches []RecentSearch
	for rows.Next() {
		var r RecentSearch
		var nanos int64
		if err := rows.Scan(&r.URL, &nanos); err != nil {
			return nil, fmt.Errorf("failed to scan recent search: %w", err)
		}
		r.SearchedAt = time.Unix(0, nanos).UTC()
		searches = append(searches, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recent searches: %w", err)
	}
	return searches, nil
}
