// Package store archives analysis runs in a local SQLite database so
// past rankings stay queryable after the input files move on.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pcranston/tubepulse/pkg/engage"
	"github.com/pcranston/tubepulse/pkg/video"
)

// Run is one archived analysis: the ranked videos and suggested topics
// produced from a single input.
type Run struct {
	ID           string    `db:"id" json:"id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	InputPath    string    `db:"input_path" json:"input_path"`
	VideoCount   int       `db:"video_count" json:"video_count"`
	SkippedCount int       `db:"skipped_count" json:"skipped_count"`

	// Videos and Suggestions are loaded for single-run reads and left
	// empty in listings.
	Videos      []engage.ScoredVideo     `db:"-" json:"videos,omitempty"`
	Suggestions []engage.TopicSuggestion `db:"-" json:"suggestions,omitempty"`
}

// Store is the persistence interface for the run archive.
type Store interface {
	SaveRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	LatestRun(ctx context.Context) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun writes the run header, its ranked videos and its topic
// suggestions in one transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, input_path, video_count, skipped_count)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.CreatedAt, run.InputPath, run.VideoCount, run.SkippedCount)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	for i, sv := range run.Videos {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_videos (run_id, rank, video_id, title, published_at,
				duration_seconds, views, likes, comments, shares,
				avg_view_duration_seconds, tags, engagement_score, content_type)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, run.ID, i+1, sv.ID, sv.Title, sv.PublishedAt,
			sv.DurationSeconds, sv.ViewCount, sv.LikeCount, sv.CommentCount, sv.ShareCount,
			sv.AvgViewDurationSeconds, video.JoinTags(sv.Tags), sv.EngagementScore, string(sv.ContentType))
		if err != nil {
			return fmt.Errorf("insert run video %s: %w", sv.ID, err)
		}
	}

	for i, ts := range run.Suggestions {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_topics (run_id, position, tag, count)
			VALUES (?, ?, ?, ?)
		`, run.ID, i+1, ts.Tag, ts.Count)
		if err != nil {
			return fmt.Errorf("insert run topic %q: %w", ts.Tag, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun loads one run with its videos and suggestions. A missing id
// surfaces as sql.ErrNoRows.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	var run Run
	if err := s.db.GetContext(ctx, &run, "SELECT * FROM runs WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}

	if err := s.loadRunDetails(ctx, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// LatestRun loads the most recently archived run. An empty archive
// surfaces as sql.ErrNoRows.
func (s *SQLiteStore) LatestRun(ctx context.Context) (*Run, error) {
	var run Run
	err := s.db.GetContext(ctx, &run, "SELECT * FROM runs ORDER BY created_at DESC, id LIMIT 1")
	if err != nil {
		return nil, fmt.Errorf("get latest run: %w", err)
	}

	if err := s.loadRunDetails(ctx, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns run headers, newest first, without their videos.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	var runs []Run
	err := s.db.SelectContext(ctx, &runs,
		"SELECT * FROM runs ORDER BY created_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

func (s *SQLiteStore) loadRunDetails(ctx context.Context, run *Run) error {
	var videoRows []runVideoRow
	err := s.db.SelectContext(ctx, &videoRows,
		"SELECT * FROM run_videos WHERE run_id = ? ORDER BY rank", run.ID)
	if err != nil {
		return fmt.Errorf("load run videos %s: %w", run.ID, err)
	}

	run.Videos = make([]engage.ScoredVideo, 0, len(videoRows))
	for _, row := range videoRows {
		run.Videos = append(run.Videos, row.scoredVideo())
	}

	var topicRows []runTopicRow
	err = s.db.SelectContext(ctx, &topicRows,
		"SELECT * FROM run_topics WHERE run_id = ? ORDER BY position", run.ID)
	if err != nil {
		return fmt.Errorf("load run topics %s: %w", run.ID, err)
	}

	run.Suggestions = make([]engage.TopicSuggestion, 0, len(topicRows))
	for _, row := range topicRows {
		run.Suggestions = append(run.Suggestions, engage.TopicSuggestion{Tag: row.Tag, Count: row.Count})
	}

	return nil
}

// runVideoRow mirrors the run_videos table; ScoredVideo itself has no
// db tags because its record fields live in another package.
type runVideoRow struct {
	RunID           string    `db:"run_id"`
	Rank            int       `db:"rank"`
	VideoID         string    `db:"video_id"`
	Title           string    `db:"title"`
	PublishedAt     time.Time `db:"published_at"`
	DurationSeconds int       `db:"duration_seconds"`
	Views           int64     `db:"views"`
	Likes           int64     `db:"likes"`
	Comments        int64     `db:"comments"`
	Shares          int64     `db:"shares"`
	AvgViewDuration float64   `db:"avg_view_duration_seconds"`
	Tags            string    `db:"tags"`
	EngagementScore float64   `db:"engagement_score"`
	ContentType     string    `db:"content_type"`
}

func (r runVideoRow) scoredVideo() engage.ScoredVideo {
	return engage.ScoredVideo{
		Record: video.Record{
			ID:                     r.VideoID,
			Title:                  r.Title,
			PublishedAt:            r.PublishedAt,
			DurationSeconds:        r.DurationSeconds,
			ViewCount:              r.Views,
			LikeCount:              r.Likes,
			CommentCount:           r.Comments,
			ShareCount:             r.Shares,
			AvgViewDurationSeconds: r.AvgViewDuration,
			Tags:                   video.SplitTags(r.Tags),
		},
		EngagementScore: r.EngagementScore,
		ContentType:     engage.ContentType(r.ContentType),
	}
}

type runTopicRow struct {
	RunID    string `db:"run_id"`
	Position int    `db:"position"`
	Tag      string `db:"tag"`
	Count    int    `db:"count"`
}
