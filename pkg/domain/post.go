package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// PostRecord is a single append-only entry in the posting history, never
// mutated after creation.
type PostRecord struct {
	ArticleID string    `json:"article_id"`
	Platform  string    `json:"platform"`
	PostID    string    `json:"post_id"`
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
}

// timestampLayouts covers our own RFC3339 writes and the zone-less isoformat
// found in history and cache files written by earlier versions of the tool.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
}

// ParseTimestamp parses a persisted timestamp, accepting both RFC3339 and
// the zone-less ISO-8601 form from legacy files.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp %q", s)
}

// UnmarshalJSON decodes a record with a lenient timestamp, so legacy history
// files load without resetting rate-limiting state.
func (r *PostRecord) UnmarshalJSON(data []byte) error {
	type alias PostRecord
	aux := struct {
		Timestamp string `json:"timestamp"`
		*alias
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Timestamp == "" {
		return nil
	}
	ts, err := ParseTimestamp(aux.Timestamp)
	if err != nil {
		return fmt.Errorf("post record: %w", err)
	}
	r.Timestamp = ts
	return nil
}

// PostResult is the outcome of a single platform post attempt. Skip reasons
// (rate limits, missing credentials, bad time of day) land in Error with
// Success=false, they are not treated as failures of the whole cycle.
type PostResult struct {
	Success bool   `json:"success"`
	PostID  string `json:"post_id,omitempty"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

// PostOutcome pairs an article with per-platform posting results
type PostOutcome struct {
	Article ArticleRef            `json:"article"`
	Results map[string]PostResult `json:"results"`
	Success bool                  `json:"success"`
}

// ScheduledPost is a single slot in a daily schedule
type ScheduledPost struct {
	Article       ArticleRef `json:"article"`
	ScheduledTime time.Time  `json:"scheduled_time"`
	Platforms     []string   `json:"platforms"`
}

// DailySchedule maps not-yet-posted articles onto best posting times
type DailySchedule struct {
	Date  string          `json:"date"`
	Posts []ScheduledPost `json:"posts"`
}

// PostingStats aggregates posting history over a window of days
type PostingStats struct {
	TotalPosts     int            `json:"total_posts"`
	PlatformCounts map[string]int `json:"platform_counts"`
	DayCounts      map[string]int `json:"day_counts"`
	RecentPosts    []RecentPost   `json:"recent_posts"`
}

// RecentPost is a history record joined with cached article data when the
// article is still in the cache.
type RecentPost struct {
	Platform  string      `json:"platform"`
	Timestamp time.Time   `json:"timestamp"`
	URL       string      `json:"url"`
	Article   *ArticleRef `json:"article,omitempty"`
	ArticleID string      `json:"article_id,omitempty"`
}
