package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pcranston/tubepulse/pkg/video"
)

const apiBaseURL = "https://www.googleapis.com/youtube/v3"

// The Data API caps both search pages and videos.list id batches at 50.
const (
	searchPageSize = 50
	videosPageSize = 50
)

// YouTube collects a channel's recent uploads from the YouTube Data
// API v3: a paginated search for video ids, then batched lookups for
// statistics, duration and tags. The public API exposes no share or
// average-view-duration figures, so those fields stay absent.
type YouTube struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	channelID  string
	maxResults int
}

// NewYouTube creates a Data API collector for one channel. maxResults
// bounds how many recent uploads are fetched.
func NewYouTube(apiKey, channelID string, maxResults int) *YouTube {
	if maxResults <= 0 {
		maxResults = searchPageSize
	}
	return &YouTube{
		client:     &http.Client{Timeout: 30 * time.Second},
		baseURL:    apiBaseURL,
		apiKey:     apiKey,
		channelID:  channelID,
		maxResults: maxResults,
	}
}

func (y *YouTube) Name() string { return "youtube-api" }

// Fetch lists recent uploads and enriches them with per-video details.
// Rows come back in the API's date order, newest first.
func (y *YouTube) Fetch(ctx context.Context) ([]video.RawRow, error) {
	if y.apiKey == "" {
		return nil, fmt.Errorf("youtube: API key required (set YOUTUBE_API_KEY)")
	}
	if y.channelID == "" {
		return nil, fmt.Errorf("youtube: channel id required")
	}

	rows, err := y.searchChannelVideos(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	if err := y.enrichDetails(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// searchChannelVideos pages through search results until maxResults
// rows are collected or the channel runs out of videos. Search only
// yields ids, titles and publish times; the rest comes from
// enrichDetails.
func (y *YouTube) searchChannelVideos(ctx context.Context) ([]video.RawRow, error) {
	rows := make([]video.RawRow, 0, y.maxResults)
	pageToken := ""

	for len(rows) < y.maxResults {
		pageSize := y.maxResults - len(rows)
		if pageSize > searchPageSize {
			pageSize = searchPageSize
		}

		params := url.Values{}
		params.Set("part", "id,snippet")
		params.Set("channelId", y.channelID)
		params.Set("type", "video")
		params.Set("order", "date")
		params.Set("maxResults", strconv.Itoa(pageSize))
		params.Set("key", y.apiKey)
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var page ytSearchResponse
		if err := y.getJSON(ctx, "/search", params, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.ID.VideoID == "" {
				continue
			}
			row := video.RawRow{
				video.FieldID:    item.ID.VideoID,
				video.FieldTitle: item.Snippet.Title,
			}
			if !item.Snippet.PublishedAt.IsZero() {
				row[video.FieldPublishedAt] = item.Snippet.PublishedAt.UTC().Format(time.RFC3339)
			}
			rows = append(rows, row)
		}

		if page.NextPageToken == "" || len(page.Items) == 0 {
			break
		}
		pageToken = page.NextPageToken
	}

	if len(rows) > y.maxResults {
		rows = rows[:y.maxResults]
	}
	return rows, nil
}

// enrichDetails fills statistics, duration and tags for the searched
// rows, batching ids per videos.list request.
func (y *YouTube) enrichDetails(ctx context.Context, rows []video.RawRow) error {
	byID := make(map[string]video.RawRow, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		id := row[video.FieldID]
		ids = append(ids, id)
		byID[id] = row
	}

	for start := 0; start < len(ids); start += videosPageSize {
		end := start + videosPageSize
		if end > len(ids) {
			end = len(ids)
		}

		params := url.Values{}
		params.Set("part", "snippet,contentDetails,statistics")
		params.Set("id", strings.Join(ids[start:end], ","))
		params.Set("key", y.apiKey)

		var page ytVideosResponse
		if err := y.getJSON(ctx, "/videos", params, &page); err != nil {
			return err
		}

		for _, item := range page.Items {
			row, ok := byID[item.ID]
			if !ok {
				continue
			}
			row[video.FieldDurationSeconds] = strconv.Itoa(durationSeconds(item.ContentDetails.Duration))
			row[video.FieldViews] = strconv.FormatInt(item.Statistics.ViewCount, 10)
			row[video.FieldLikes] = strconv.FormatInt(item.Statistics.LikeCount, 10)
			row[video.FieldComments] = strconv.FormatInt(item.Statistics.CommentCount, 10)
			if len(item.Snippet.Tags) > 0 {
				row[video.FieldTags] = video.JoinTags(item.Snippet.Tags)
			}
		}
	}

	return nil
}

func (y *YouTube) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := y.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create youtube request: %w", err)
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch youtube %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube %s status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode youtube %s: %w", path, err)
	}
	return nil
}

// durationSeconds converts an ISO 8601 duration like PT1H2M3S into
// whole seconds. Anything unrecognized yields 0, which downstream
// treats as unknown.
func durationSeconds(iso string) int {
	s := strings.TrimPrefix(iso, "P")
	if s == iso || s == "" {
		return 0
	}

	total := 0
	n := 0
	inTime := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == 'T':
			inTime = true
			n = 0
		case c >= '0' && c <= '9':
			n = n*10 + int(c-'0')
		case c == 'D' && !inTime:
			total += n * 86400
			n = 0
		case c == 'H' && inTime:
			total += n * 3600
			n = 0
		case c == 'M' && inTime:
			total += n * 60
			n = 0
		case c == 'S' && inTime:
			total += n
			n = 0
		default:
			return 0
		}
	}
	return total
}

type ytSearchResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title       string    `json:"title"`
			PublishedAt time.Time `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

type ytVideosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Tags []string `json:"tags"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount    int64 `json:"viewCount,string"`
			LikeCount    int64 `json:"likeCount,string"`
			CommentCount int64 `json:"commentCount,string"`
		} `json:"statistics"`
	} `json:"items"`
}
