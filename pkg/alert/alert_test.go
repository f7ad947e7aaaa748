package alert

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcranston/tubepulse/pkg/engage"
	"github.com/pcranston/tubepulse/pkg/video"
)

func testNotification() *Notification {
	return &Notification{
		Title:      "Engagement ranking updated",
		Body:       "2 videos ranked, 0 rows skipped",
		RunID:      "run-1",
		VideoCount: 2,
		Videos: []engage.ScoredVideo{
			{
				Record:          video.Record{ID: "vid-1", Title: "Winner", ViewCount: 1000},
				EngagementScore: 0.215,
				ContentType:     engage.ContentTypeShort,
			},
			{
				Record:          video.Record{ID: "vid-2", Title: "Runner up", ViewCount: 500},
				EngagementScore: 0.1,
				ContentType:     engage.ContentTypeVideo,
			},
		},
		Suggestions: []engage.TopicSuggestion{{Tag: "go", Count: 2}, {Tag: "cli", Count: 1}},
	}
}

// capture records the last request body and headers a test server saw.
type capture struct {
	body   []byte
	header http.Header
}

func captureServer(t *testing.T, status int) (*httptest.Server, *capture) {
	t.Helper()
	rec := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		rec.body = body
		rec.header = r.Header.Clone()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestSlackSendBuildsBlocks(t *testing.T) {
	srv, rec := captureServer(t, http.StatusOK)

	err := NewSlack(srv.URL).Send(context.Background(), testNotification())
	require.NoError(t, err)

	assert.Equal(t, "application/json", rec.header.Get("Content-Type"))

	var payload struct {
		Blocks []map[string]any `json:"blocks"`
	}
	require.NoError(t, json.Unmarshal(rec.body, &payload))
	require.Len(t, payload.Blocks, 3, "header, summary and ranking context")

	body := string(rec.body)
	assert.Contains(t, body, "Engagement ranking updated")
	assert.Contains(t, body, "go (2), cli (1)")
	assert.Contains(t, body, "https://www.youtube.com/watch?v=vid-1|Winner")
}

func TestSlackSendSurfacesHTTPErrors(t *testing.T) {
	srv, _ := captureServer(t, http.StatusBadRequest)

	err := NewSlack(srv.URL).Send(context.Background(), testNotification())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestDiscordSendBuildsEmbed(t *testing.T) {
	srv, rec := captureServer(t, http.StatusNoContent)

	err := NewDiscord(srv.URL).Send(context.Background(), testNotification())
	require.NoError(t, err)

	var payload struct {
		Embeds []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"embeds"`
	}
	require.NoError(t, json.Unmarshal(rec.body, &payload))
	require.Len(t, payload.Embeds, 1)

	assert.Contains(t, payload.Embeds[0].Title, "Engagement ranking updated")
	assert.Contains(t, payload.Embeds[0].Description, "[Winner](https://www.youtube.com/watch?v=vid-1)")
	assert.Contains(t, payload.Embeds[0].Description, "**Videos:** 2")
}

func TestWebhookSendSignsPayload(t *testing.T) {
	srv, rec := captureServer(t, http.StatusOK)

	err := NewWebhook(srv.URL, "s3cret").Send(context.Background(), testNotification())
	require.NoError(t, err)

	assert.Equal(t, "tubepulse/1.0", rec.header.Get("User-Agent"))

	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write(rec.body)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	assert.Equal(t, want, rec.header.Get("X-Signature-256"))

	var got Notification
	require.NoError(t, json.Unmarshal(rec.body, &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Len(t, got.Videos, 2)
	assert.Len(t, got.Suggestions, 2)
}

func TestWebhookSendWithoutSecret(t *testing.T) {
	srv, rec := captureServer(t, http.StatusAccepted)

	err := NewWebhook(srv.URL, "").Send(context.Background(), testNotification())
	require.NoError(t, err)
	assert.Empty(t, rec.header.Get("X-Signature-256"))
}

type stubNotifier struct {
	name string
	err  error
	sent int
}

func (s *stubNotifier) Name() string { return s.name }

func (s *stubNotifier) Send(ctx context.Context, n *Notification) error {
	s.sent++
	return s.err
}

func TestManagerBroadcastReachesAllNotifiers(t *testing.T) {
	good := &stubNotifier{name: "good"}
	bad := &stubNotifier{name: "bad", err: errors.New("boom")}
	also := &stubNotifier{name: "also"}

	mgr := NewManager([]Notifier{good, bad, also})
	require.True(t, mgr.HasNotifiers())

	err := mgr.Broadcast(context.Background(), testNotification())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad: boom")

	// One failure never blocks the remaining destinations.
	assert.Equal(t, 1, good.sent)
	assert.Equal(t, 1, also.sent)
}

func TestManagerWithoutNotifiers(t *testing.T) {
	mgr := NewManager(nil)
	assert.False(t, mgr.HasNotifiers())
	assert.NoError(t, mgr.Broadcast(context.Background(), testNotification()))
}

func TestTopicLine(t *testing.T) {
	assert.Equal(t, "none", topicLine(nil))
	assert.Equal(t, "go (2)", topicLine([]engage.TopicSuggestion{{Tag: "go", Count: 2}}))
	assert.Equal(t, "go (2), cli (1)", topicLine([]engage.TopicSuggestion{{Tag: "go", Count: 2}, {Tag: "cli", Count: 1}}))
}
