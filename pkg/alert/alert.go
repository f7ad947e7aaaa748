// Package alert pushes finished analysis summaries to webhook
// destinations, so a scheduled pipeline can announce each run.
package alert

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pcranston/tubepulse/pkg/engage"
)

// maxVideosPerMessage caps how many ranked videos a message renders.
const maxVideosPerMessage = 5

// Notification is the run summary sent to alert destinations. Videos
// holds the ranking head in rank order.
type Notification struct {
	Title       string                   `json:"title"`
	Body        string                   `json:"body"`
	RunID       string                   `json:"run_id,omitempty"`
	VideoCount  int                      `json:"video_count"`
	Videos      []engage.ScoredVideo     `json:"videos,omitempty"`
	Suggestions []engage.TopicSuggestion `json:"suggestions,omitempty"`
}

// topVideos limits the ranking head rendered into chat messages.
func (n *Notification) topVideos() []engage.ScoredVideo {
	if len(n.Videos) > maxVideosPerMessage {
		return n.Videos[:maxVideosPerMessage]
	}
	return n.Videos
}

// watchURL builds the public watch link for a video id.
func watchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// topicLine renders suggestions as "tag (count)" pairs.
func topicLine(suggestions []engage.TopicSuggestion) string {
	if len(suggestions) == 0 {
		return "none"
	}
	parts := make([]string, len(suggestions))
	for i, ts := range suggestions {
		parts[i] = fmt.Sprintf("%s (%d)", ts.Tag, ts.Count)
	}
	return strings.Join(parts, ", ")
}

// Notifier delivers notifications to a specific destination.
type Notifier interface {
	Name() string
	Send(ctx context.Context, n *Notification) error
}

// Manager broadcasts notifications to all registered notifiers.
type Manager struct {
	notifiers []Notifier
}

// NewManager creates a new alert manager.
func NewManager(notifiers []Notifier) *Manager {
	return &Manager{notifiers: notifiers}
}

// HasNotifiers returns true if at least one notifier is configured.
func (m *Manager) HasNotifiers() bool {
	return len(m.notifiers) > 0
}

// Broadcast sends a notification to all registered notifiers. Failures
// are joined so one bad destination does not hide the rest.
func (m *Manager) Broadcast(ctx context.Context, n *Notification) error {
	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", notifier.Name(), err))
		}
	}
	return errors.Join(errs...)
}
