package video

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Policy controls how Load treats malformed rows.
type Policy int

const (
	// SkipMalformed drops malformed rows and reports them alongside the
	// loaded records.
	SkipMalformed Policy = iota
	// AbortOnMalformed fails the whole load on the first malformed row.
	AbortOnMalformed
)

// MalformedRecordError reports a row that cannot become a Record.
type MalformedRecordError struct {
	Row    int    `json:"row"`          // zero-based index in the input
	ID     string `json:"id,omitempty"` // offending id, empty when the id itself is missing
	Reason string `json:"reason"`
}

func (e *MalformedRecordError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("malformed record at row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("malformed record at row %d (id %q): %s", e.Row, e.ID, e.Reason)
}

// Load normalizes raw rows into Records, preserving input order.
//
// A row is malformed when its video_id is missing, blank, or repeats an
// id already seen in this input. Under SkipMalformed such rows are
// dropped and returned in the second value; under AbortOnMalformed the
// first one fails the whole load. Every other field degrades instead of
// failing: counts and durations floor at zero, missing or unparseable
// values become zero, tags split on the delimiter with blanks dropped,
// and timestamps parse as RFC 3339 or stay zero.
//
// An empty input is not an error; it loads zero records.
func Load(rows []RawRow, policy Policy) ([]Record, []*MalformedRecordError, error) {
	records := make([]Record, 0, len(rows))
	var malformed []*MalformedRecordError
	seen := make(map[string]struct{}, len(rows))

	for i, row := range rows {
		id := strings.TrimSpace(row[FieldID])

		var merr *MalformedRecordError
		if id == "" {
			merr = &MalformedRecordError{Row: i, Reason: "missing video_id"}
		} else if _, dup := seen[id]; dup {
			merr = &MalformedRecordError{Row: i, ID: id, Reason: "duplicate video_id"}
		}
		if merr != nil {
			if policy == AbortOnMalformed {
				return nil, nil, merr
			}
			malformed = append(malformed, merr)
			continue
		}

		seen[id] = struct{}{}
		records = append(records, Record{
			ID:                     id,
			Title:                  strings.TrimSpace(row[FieldTitle]),
			PublishedAt:            parseTime(row[FieldPublishedAt]),
			DurationSeconds:        int(parseCount(row[FieldDurationSeconds])),
			ViewCount:              parseCount(row[FieldViews]),
			LikeCount:              parseCount(row[FieldLikes]),
			CommentCount:           parseCount(row[FieldComments]),
			ShareCount:             parseCount(row[FieldShares]),
			AvgViewDurationSeconds: parseSeconds(row[FieldAvgViewDuration]),
			Tags:                   SplitTags(row[FieldTags]),
		})
	}

	return records, malformed, nil
}

// parseCount reads a non-negative integer. Missing, unparseable or
// negative input becomes 0 rather than an error.
func parseCount(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseSeconds reads a non-negative finite duration in seconds.
func parseSeconds(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
