// Package engage turns normalized video records into a ranked
// engagement report: a per-video composite score, a video/short
// classification, a canonical ordering, and tag-based topic
// suggestions.
package engage

import (
	"sort"

	"github.com/pcranston/tubepulse/pkg/video"
)

// ContentType classifies a video by its duration.
type ContentType string

const (
	ContentTypeVideo ContentType = "video"
	ContentTypeShort ContentType = "short"
)

// ScoredVideo is a record plus its derived engagement fields. Like the
// record it wraps, it is never mutated after the engine produces it.
type ScoredVideo struct {
	video.Record
	EngagementScore float64     `json:"engagement_score"`
	ContentType     ContentType `json:"content_type"`
}

// Result is the output of one full analysis pass.
type Result struct {
	// Videos holds every scored video in canonical rank order.
	Videos []ScoredVideo `json:"videos"`
	// Suggestions lists recurring tags among the top-ranked videos.
	Suggestions []TopicSuggestion `json:"suggestions"`
	// Skipped reports rows dropped under the skip policy.
	Skipped []*video.MalformedRecordError `json:"skipped,omitempty"`
}

// Engine scores, classifies and ranks video records. An Engine is
// immutable and safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine validates cfg and returns an engine using it.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Score computes the view-normalized engagement score:
//
//	(wLike*likes + wComment*comments + wShare*shares + wWatch*watchRatio) / max(views, 1)
//
// where watchRatio is average view duration over total duration. The
// denominator floor keeps unwatched videos at a defined score, and
// normalizing by views stops raw reach from drowning out per-viewer
// engagement.
func (e *Engine) Score(rec video.Record) float64 {
	w := e.cfg.Weights
	numerator := w.Like*float64(rec.LikeCount) +
		w.Comment*float64(rec.CommentCount) +
		w.Share*float64(rec.ShareCount) +
		w.Watch*watchRatio(rec)

	views := rec.ViewCount
	if views < 1 {
		views = 1
	}
	return numerator / float64(views)
}

// watchRatio approximates retention. Either value missing (zero)
// removes the term rather than guessing.
func watchRatio(rec video.Record) float64 {
	if rec.DurationSeconds <= 0 || rec.AvgViewDurationSeconds <= 0 {
		return 0
	}
	return rec.AvgViewDurationSeconds / float64(rec.DurationSeconds)
}

// Classify labels a duration as short or regular video. An unknown
// duration (zero) is a regular video: shorts are only ever positively
// identified.
func (e *Engine) Classify(durationSeconds int) ContentType {
	if durationSeconds > 0 && durationSeconds <= e.cfg.ShortDurationThresholdSeconds {
		return ContentTypeShort
	}
	return ContentTypeVideo
}

// ScoreAll derives a ScoredVideo for each record, preserving input
// order.
func (e *Engine) ScoreAll(records []video.Record) []ScoredVideo {
	scored := make([]ScoredVideo, len(records))
	for i, rec := range records {
		scored[i] = ScoredVideo{
			Record:          rec,
			EngagementScore: e.Score(rec),
			ContentType:     e.Classify(rec.DurationSeconds),
		}
	}
	return scored
}

// Rank returns a new slice in canonical order: engagement score
// descending, ties broken by view count descending, then by id
// ascending. Equal inputs always rank identically.
func (e *Engine) Rank(scored []ScoredVideo) []ScoredVideo {
	ranked := make([]ScoredVideo, len(scored))
	copy(ranked, scored)

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].EngagementScore != ranked[j].EngagementScore {
			return ranked[i].EngagementScore > ranked[j].EngagementScore
		}
		if ranked[i].ViewCount != ranked[j].ViewCount {
			return ranked[i].ViewCount > ranked[j].ViewCount
		}
		return ranked[i].ID < ranked[j].ID
	})

	return ranked
}

// Analyze runs the scoring stages over already-loaded records.
func (e *Engine) Analyze(records []video.Record) *Result {
	ranked := e.Rank(e.ScoreAll(records))
	return &Result{
		Videos:      ranked,
		Suggestions: e.SuggestTopics(ranked),
	}
}

// RunAnalysis is the one-call entry point: load raw rows, score, rank
// and suggest topics. The configuration is validated before any row is
// touched, so a bad config never produces partial output. An empty
// input yields an empty, valid Result.
func RunAnalysis(rows []video.RawRow, cfg Config, policy video.Policy) (*Result, error) {
	engine, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}

	records, skipped, err := video.Load(rows, policy)
	if err != nil {
		return nil, err
	}

	result := engine.Analyze(records)
	result.Skipped = skipped
	return result, nil
}
