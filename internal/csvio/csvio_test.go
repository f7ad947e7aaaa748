package csvio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcranston/tubepulse/pkg/engage"
	"github.com/pcranston/tubepulse/pkg/video"
)

func TestWriteThenReadRows(t *testing.T) {
	rows := []video.RawRow{
		{
			video.FieldID:              "v1",
			video.FieldTitle:           "First, with comma",
			video.FieldPublishedAt:     "2025-06-01T10:00:00Z",
			video.FieldDurationSeconds: "120",
			video.FieldViews:           "1000",
			video.FieldLikes:           "50",
			video.FieldComments:        "4",
			video.FieldShares:          "2",
			video.FieldAvgViewDuration: "60.5",
			video.FieldTags:            "go|cli",
		},
		{video.FieldID: "v2", video.FieldTitle: "sparse row"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRows(&buf, rows))

	got, err := ReadRows(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "v1", got[0][video.FieldID])
	assert.Equal(t, "First, with comma", got[0][video.FieldTitle])
	assert.Equal(t, "go|cli", got[0][video.FieldTags])

	assert.Equal(t, "v2", got[1][video.FieldID])
	assert.Equal(t, "", got[1][video.FieldViews], "unset fields round-trip as empty")
}

func TestReadRowsToleratesRaggedAndUnknownColumns(t *testing.T) {
	in := strings.Join([]string{
		"video_id,title,views,channel_name",
		"v1,hello,100,acme",
		"v2,short",
		"",
	}, "\n")

	rows, err := ReadRows(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "acme", rows[0]["channel_name"], "unknown columns pass through")
	assert.Equal(t, "100", rows[0][video.FieldViews])

	_, hasViews := rows[1][video.FieldViews]
	assert.False(t, hasViews, "short rows leave trailing fields unset")
}

func TestReadRowsEmptyInput(t *testing.T) {
	rows, err := ReadRows(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestReadRowsHeaderOnly(t *testing.T) {
	rows, err := ReadRows(strings.NewReader("video_id,title\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWriteRanking(t *testing.T) {
	videos := []engage.ScoredVideo{
		{
			Record: video.Record{
				ID:        "top",
				Title:     "Winner",
				ViewCount: 1000,
				LikeCount: 100,
				Tags:      []string{"go", "tutorial"},
			},
			EngagementScore: 0.123456,
			ContentType:     engage.ContentTypeShort,
		},
		{
			Record:          video.Record{ID: "second", Title: "Runner up", ViewCount: 500},
			EngagementScore: 0.05,
			ContentType:     engage.ContentTypeVideo,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRanking(&buf, videos))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "rank,video_id,title,content_type,engagement_score,views,likes,comments,shares,tags", lines[0])
	assert.Equal(t, "1,top,Winner,short,0.123456,1000,100,0,0,go|tutorial", lines[1])
	assert.Equal(t, "2,second,Runner up,video,0.050000,500,0,0,0,", lines[2])
}

func TestWriteRankingEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRanking(&buf, nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 1, "header only")
}
