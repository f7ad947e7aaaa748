package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/pcranston/tubepulse/pkg/video"
)

// feedURLFormat is YouTube's public per-channel uploads feed.
const feedURLFormat = "https://www.youtube.com/feeds/videos.xml?channel_id=%s"

// ChannelFeed collects a channel's recent uploads from the public Atom
// feed. It needs no API key but carries fewer fields: no duration and
// no tags, and only the view and rating counts the media extension
// exposes. The feed also caps out around 15 entries.
type ChannelFeed struct {
	client    *http.Client
	parser    *gofeed.Parser
	channelID string
	feedURL   string // overrides the default URL when set
}

// NewChannelFeed creates a feed collector for one channel.
func NewChannelFeed(channelID string) *ChannelFeed {
	return &ChannelFeed{
		client:    &http.Client{Timeout: 30 * time.Second},
		parser:    gofeed.NewParser(),
		channelID: channelID,
	}
}

func (f *ChannelFeed) Name() string { return "channel-feed" }

func (f *ChannelFeed) Fetch(ctx context.Context) ([]video.RawRow, error) {
	if f.channelID == "" {
		return nil, fmt.Errorf("channel feed: channel id required")
	}

	feedURL := f.feedURL
	if feedURL == "" {
		feedURL = fmt.Sprintf(feedURLFormat, f.channelID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request: %w", err)
	}
	req.Header.Set("User-Agent", "tubepulse/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch channel feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("channel feed status %d", resp.StatusCode)
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse channel feed: %w", err)
	}

	var rows []video.RawRow
	for _, entry := range parsed.Items {
		id := feedVideoID(entry)
		if id == "" {
			continue
		}

		row := video.RawRow{
			video.FieldID:    id,
			video.FieldTitle: entry.Title,
		}
		if entry.PublishedParsed != nil {
			row[video.FieldPublishedAt] = entry.PublishedParsed.UTC().Format(time.RFC3339)
		}
		if views, likes, ok := feedStatistics(entry); ok {
			if views != "" {
				row[video.FieldViews] = views
			}
			if likes != "" {
				row[video.FieldLikes] = likes
			}
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// feedVideoID reads the yt:videoId extension, falling back to the
// "yt:video:<id>" entry GUID.
func feedVideoID(entry *gofeed.Item) string {
	if exts, ok := entry.Extensions["yt"]["videoId"]; ok && len(exts) > 0 {
		return exts[0].Value
	}
	if id := strings.TrimPrefix(entry.GUID, "yt:video:"); id != entry.GUID {
		return id
	}
	return ""
}

// feedStatistics digs view and rating counts out of the media:group
// extension. The star-rating count stands in for likes, the closest
// figure the feed publishes.
func feedStatistics(entry *gofeed.Item) (views, likes string, ok bool) {
	groups := entry.Extensions["media"]["group"]
	if len(groups) == 0 {
		return "", "", false
	}

	community := groups[0].Children["community"]
	if len(community) == 0 {
		return "", "", false
	}

	if stats := community[0].Children["statistics"]; len(stats) > 0 {
		views = stats[0].Attrs["views"]
	}
	if rating := community[0].Children["starRating"]; len(rating) > 0 {
		likes = rating[0].Attrs["count"]
	}

	return views, likes, views != "" || likes != ""
}
