package engage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcranston/tubepulse/pkg/video"
)

func taggedVideo(id string, tags ...string) ScoredVideo {
	return ScoredVideo{Record: video.Record{ID: id, Tags: tags}}
}

func TestSuggestTopicsCountsAcrossTopVideos(t *testing.T) {
	engine := newTestEngine(t, DefaultConfig())

	ranked := []ScoredVideo{
		taggedVideo("v1", "a", "b"),
		taggedVideo("v2", "b", "c"),
		taggedVideo("v3", "a"),
	}

	got := engine.SuggestTopics(ranked)

	// a and b tie at 2; a was seen first.
	require.Len(t, got, 3)
	assert.Equal(t, TopicSuggestion{Tag: "a", Count: 2}, got[0])
	assert.Equal(t, TopicSuggestion{Tag: "b", Count: 2}, got[1])
	assert.Equal(t, TopicSuggestion{Tag: "c", Count: 1}, got[2])
}

func TestSuggestTopicsCaseInsensitive(t *testing.T) {
	engine := newTestEngine(t, DefaultConfig())

	ranked := []ScoredVideo{
		taggedVideo("v1", "Go", "tutorial"),
		taggedVideo("v2", " go ", "GO"),
	}

	got := engine.SuggestTopics(ranked)

	require.Len(t, got, 2)
	// Variants fold into one count under the first-seen spelling.
	assert.Equal(t, TopicSuggestion{Tag: "Go", Count: 3}, got[0])
	assert.Equal(t, TopicSuggestion{Tag: "tutorial", Count: 1}, got[1])
}

func TestSuggestTopicsHonorsTopK(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TopKForSuggestions = 2
	engine := newTestEngine(t, cfg)

	ranked := []ScoredVideo{
		taggedVideo("v1", "kept"),
		taggedVideo("v2", "kept"),
		taggedVideo("v3", "ignored", "ignored-too"),
	}

	got := engine.SuggestTopics(ranked)

	require.Len(t, got, 1)
	assert.Equal(t, TopicSuggestion{Tag: "kept", Count: 2}, got[0])
}

func TestSuggestTopicsTruncatesToTopN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TopNSuggestions = 2
	engine := newTestEngine(t, cfg)

	ranked := []ScoredVideo{
		taggedVideo("v1", "first", "second", "third"),
		taggedVideo("v2", "first", "second"),
		taggedVideo("v3", "first"),
	}

	got := engine.SuggestTopics(ranked)

	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Tag)
	assert.Equal(t, "second", got[1].Tag)
}

func TestSuggestTopicsSkipsBlankTags(t *testing.T) {
	engine := newTestEngine(t, DefaultConfig())

	ranked := []ScoredVideo{
		taggedVideo("v1", "  ", "real"),
		taggedVideo("v2", ""),
	}

	got := engine.SuggestTopics(ranked)

	require.Len(t, got, 1)
	assert.Equal(t, TopicSuggestion{Tag: "real", Count: 1}, got[0])
}

func TestSuggestTopicsNoTags(t *testing.T) {
	engine := newTestEngine(t, DefaultConfig())

	ranked := []ScoredVideo{taggedVideo("v1"), taggedVideo("v2")}

	assert.Empty(t, engine.SuggestTopics(ranked))
}

func TestSuggestTopicsEmptyInput(t *testing.T) {
	engine := newTestEngine(t, DefaultConfig())
	assert.Empty(t, engine.SuggestTopics(nil))
}

func TestSuggestTopicsTieOrderIsFirstSeen(t *testing.T) {
	engine := newTestEngine(t, DefaultConfig())

	ranked := []ScoredVideo{
		taggedVideo("v1", "zeta", "alpha"),
		taggedVideo("v2", "alpha", "zeta"),
	}

	got := engine.SuggestTopics(ranked)

	// Both count 2; zeta appeared first in the flattened tag stream.
	require.Len(t, got, 2)
	assert.Equal(t, "zeta", got[0].Tag)
	assert.Equal(t, "alpha", got[1].Tag)
}
