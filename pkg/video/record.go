// Package video defines the normalized video record and the loader
// that builds records from raw ingested rows.
package video

import (
	"strings"
	"time"
)

// Canonical column names shared by the ingestion and analysis sides.
// Collectors write rows keyed by these names and the loader reads them
// back, so the flat file between the two stages stays stable.
const (
	FieldID              = "video_id"
	FieldTitle           = "title"
	FieldPublishedAt     = "published_at"
	FieldDurationSeconds = "duration_seconds"
	FieldViews           = "views"
	FieldLikes           = "likes"
	FieldComments        = "comments"
	FieldShares          = "shares"
	FieldAvgViewDuration = "avg_view_duration_seconds"
	FieldTags            = "tags"
)

// TagDelimiter separates individual tags inside the single tags column.
const TagDelimiter = "|"

// Columns returns the canonical column order for the flat file.
func Columns() []string {
	return []string{
		FieldID,
		FieldTitle,
		FieldPublishedAt,
		FieldDurationSeconds,
		FieldViews,
		FieldLikes,
		FieldComments,
		FieldShares,
		FieldAvgViewDuration,
		FieldTags,
	}
}

// RawRow is one ingested row before normalization, keyed by column name.
// Missing keys mean the upstream source did not provide the field.
type RawRow map[string]string

// Record is one normalized video. Records are built once by Load and
// never mutated afterwards; derived values live elsewhere.
type Record struct {
	ID                     string    `json:"video_id"`
	Title                  string    `json:"title"`
	PublishedAt            time.Time `json:"published_at"`
	DurationSeconds        int       `json:"duration_seconds"`
	ViewCount              int64     `json:"views"`
	LikeCount              int64     `json:"likes"`
	CommentCount           int64     `json:"comments"`
	ShareCount             int64     `json:"shares"`
	AvgViewDurationSeconds float64   `json:"avg_view_duration_seconds"`
	Tags                   []string  `json:"tags,omitempty"`
}

// SplitTags splits a delimiter-joined tags field into trimmed,
// non-empty tags, preserving source order.
func SplitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, TagDelimiter) {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// JoinTags is the inverse of SplitTags, used when writing rows out.
func JoinTags(tags []string) string {
	return strings.Join(tags, TagDelimiter)
}
