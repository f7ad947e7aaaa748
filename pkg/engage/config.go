package engage

import "fmt"

// Default weights. Rarer interactions carry more signal: a share costs
// the viewer more than a like, and sustained watch time most of all.
const (
	DefaultLikeWeight    = 1.0
	DefaultCommentWeight = 1.5
	DefaultShareWeight   = 2.0
	DefaultWatchWeight   = 3.0

	// DefaultShortDurationThresholdSeconds is the longest duration still
	// classified as short-form content.
	DefaultShortDurationThresholdSeconds = 60

	// DefaultTopKForSuggestions is how many top-ranked videos feed the
	// topic suggester.
	DefaultTopKForSuggestions = 50

	// DefaultTopNSuggestions is how many suggested topics come back.
	DefaultTopNSuggestions = 5
)

// Weights controls how much each interaction counts toward the
// engagement score. Zero is a valid weight and disables the term;
// negative weights are rejected.
type Weights struct {
	Like    float64 `yaml:"like" json:"like"`
	Comment float64 `yaml:"comment" json:"comment"`
	Share   float64 `yaml:"share" json:"share"`
	Watch   float64 `yaml:"watch" json:"watch"`
}

// Config is the engine's tuning surface. The zero value is not usable;
// start from DefaultConfig and override.
type Config struct {
	Weights                       Weights `yaml:"weights" json:"weights"`
	ShortDurationThresholdSeconds int     `yaml:"short_duration_threshold_seconds" json:"short_duration_threshold_seconds"`
	TopKForSuggestions            int     `yaml:"top_k_for_suggestions" json:"top_k_for_suggestions"`
	TopNSuggestions               int     `yaml:"top_n_suggestions" json:"top_n_suggestions"`
}

// DefaultConfig returns the stock engine configuration.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Like:    DefaultLikeWeight,
			Comment: DefaultCommentWeight,
			Share:   DefaultShareWeight,
			Watch:   DefaultWatchWeight,
		},
		ShortDurationThresholdSeconds: DefaultShortDurationThresholdSeconds,
		TopKForSuggestions:            DefaultTopKForSuggestions,
		TopNSuggestions:               DefaultTopNSuggestions,
	}
}

// InvalidConfigurationError rejects a Config before any scoring runs.
type InvalidConfigurationError struct {
	Option string
	Value  float64
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s = %v (%s)", e.Option, e.Value, e.Reason)
}

// Validate checks the configuration as a whole: weights must be
// non-negative and the threshold, top-K and top-N strictly positive.
func (c Config) Validate() error {
	weights := []struct {
		option string
		value  float64
	}{
		{"weights.like", c.Weights.Like},
		{"weights.comment", c.Weights.Comment},
		{"weights.share", c.Weights.Share},
		{"weights.watch", c.Weights.Watch},
	}
	for _, w := range weights {
		if w.value < 0 {
			return &InvalidConfigurationError{Option: w.option, Value: w.value, Reason: "weight must not be negative"}
		}
	}

	if c.ShortDurationThresholdSeconds <= 0 {
		return &InvalidConfigurationError{
			Option: "short_duration_threshold_seconds",
			Value:  float64(c.ShortDurationThresholdSeconds),
			Reason: "threshold must be positive",
		}
	}
	if c.TopKForSuggestions <= 0 {
		return &InvalidConfigurationError{
			Option: "top_k_for_suggestions",
			Value:  float64(c.TopKForSuggestions),
			Reason: "top-k must be positive",
		}
	}
	if c.TopNSuggestions <= 0 {
		return &InvalidConfigurationError{
			Option: "top_n_suggestions",
			Value:  float64(c.TopNSuggestions),
			Reason: "top-n must be positive",
		}
	}

	return nil
}
