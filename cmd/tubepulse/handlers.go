package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/subosito/gotenv"

	"github.com/pcranston/tubepulse/internal/config"
	"github.com/pcranston/tubepulse/internal/csvio"
	"github.com/pcranston/tubepulse/internal/logging"
	"github.com/pcranston/tubepulse/internal/store"
	"github.com/pcranston/tubepulse/pkg/alert"
	"github.com/pcranston/tubepulse/pkg/engage"
	"github.com/pcranston/tubepulse/pkg/source"
	"github.com/pcranston/tubepulse/pkg/video"
)

type ingestOptions struct {
	channelID  string
	outPath    string
	maxResults int
	fromFeed   bool
}

type analyzeOptions struct {
	inputPath  string
	outPath    string
	save       bool
	notify     bool
	top        int
	jsonOutput bool
	strict     bool
}

type reportOptions struct {
	runID      string
	list       bool
	limit      int
	jsonOutput bool
}

// loadConfig folds an optional .env file into the environment, resolves
// the config file and sets up logging from it.
func loadConfig() (*config.Config, error) {
	_ = gotenv.Load()

	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logging.Init(cfg.Log.Level)
	return cfg, nil
}

// buildSource picks the collector for an ingest run. Flags beat config.
func buildSource(cfg *config.Config, opts ingestOptions) (source.Source, error) {
	channelID := opts.channelID
	if channelID == "" {
		channelID = cfg.YouTube.ChannelID
	}
	if channelID == "" {
		return nil, fmt.Errorf("no channel id: pass --channel or set youtube.channel_id / TUBEPULSE_CHANNEL_ID")
	}

	if opts.fromFeed {
		return source.NewChannelFeed(channelID), nil
	}

	if cfg.YouTube.APIKey == "" {
		return nil, fmt.Errorf("no API key: set youtube.api_key / YOUTUBE_API_KEY, or pass --from-feed")
	}

	maxResults := opts.maxResults
	if maxResults <= 0 {
		maxResults = cfg.YouTube.MaxResults
	}
	return source.NewYouTube(cfg.YouTube.APIKey, channelID, maxResults), nil
}

func buildAlertManager(cfg *config.Config) *alert.Manager {
	var notifiers []alert.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewSlack(cfg.Alerts.Slack.WebhookURL))
	}
	if cfg.Alerts.Discord.Enabled && cfg.Alerts.Discord.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewDiscord(cfg.Alerts.Discord.WebhookURL))
	}
	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alert.NewWebhook(cfg.Alerts.Webhook.URL, cfg.Alerts.Webhook.Secret))
	}

	return alert.NewManager(notifiers)
}

func runIngest(opts ingestOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	src, err := buildSource(cfg, opts)
	if err != nil {
		return err
	}

	slog.Info("fetching channel videos", "source", src.Name())

	rows, err := src.Fetch(context.Background())
	if err != nil {
		return fmt.Errorf("fetch %s: %w", src.Name(), err)
	}
	if len(rows) == 0 {
		slog.Warn("channel returned no videos")
	}

	if dir := filepath.Dir(opts.outPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir %s: %w", dir, err)
		}
	}

	f, err := os.Create(opts.outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", opts.outPath, err)
	}
	if err := csvio.WriteRows(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", opts.outPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", opts.outPath, err)
	}

	slog.Info("ingest complete", "videos", len(rows), "path", opts.outPath)
	return nil
}

func runAnalyze(opts analyzeOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	f, err := os.Open(opts.inputPath)
	if err != nil {
		return fmt.Errorf("open input %s: %w", opts.inputPath, err)
	}
	rows, err := csvio.ReadRows(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("read input %s: %w", opts.inputPath, err)
	}

	policy := video.SkipMalformed
	if opts.strict {
		policy = video.AbortOnMalformed
	}

	result, err := engage.RunAnalysis(rows, cfg.Analysis, policy)
	if err != nil {
		return err
	}

	for _, merr := range result.Skipped {
		slog.Warn("skipped malformed row", "row", merr.Row, "reason", merr.Reason)
	}
	slog.Info("analysis complete", "videos", len(result.Videos), "skipped", len(result.Skipped))

	if opts.outPath != "" {
		if err := writeRankingFile(opts.outPath, result.Videos); err != nil {
			return err
		}
		slog.Info("ranking written", "path", opts.outPath)
	}

	var runID string
	if opts.save {
		runID, err = saveRun(cfg, opts.inputPath, result)
		if err != nil {
			return fmt.Errorf("archive run: %w", err)
		}
		slog.Info("run archived", "run_id", runID)
	}

	if opts.notify {
		// The analysis already succeeded; a failed notification is
		// reported but does not fail the run.
		if err := notifyRun(cfg, runID, result); err != nil {
			slog.Error("notify failed", "error", err)
		}
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if len(result.Videos) == 0 {
		fmt.Println("no videos to rank (try ingesting first: tubepulse ingest)")
		return nil
	}

	top := opts.top
	if top <= 0 || top > len(result.Videos) {
		top = len(result.Videos)
	}
	printRanking(result.Videos[:top])
	printSuggestions(result.Suggestions)
	return nil
}

func runReport(opts reportOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if opts.list {
		return listRuns(ctx, db, opts)
	}

	var run *store.Run
	if opts.runID != "" {
		run, err = db.GetRun(ctx, opts.runID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("run %s not found", opts.runID)
		}
	} else {
		run, err = db.LatestRun(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			fmt.Println("no archived runs (archive one with: tubepulse analyze --save)")
			return nil
		}
	}
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}

	fmt.Printf("run %s — %s\n", run.ID, run.CreatedAt.Local().Format(time.RFC3339))
	fmt.Printf("input %s: %d videos ranked, %d rows skipped\n\n", run.InputPath, run.VideoCount, run.SkippedCount)
	printRanking(run.Videos)
	printSuggestions(run.Suggestions)
	return nil
}

func listRuns(ctx context.Context, db store.Store, opts reportOptions) error {
	runs, err := db.ListRuns(ctx, opts.limit)
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("no archived runs (archive one with: tubepulse analyze --save)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tVIDEOS\tSKIPPED\tINPUT\tRUN")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n",
			r.CreatedAt.Local().Format(time.RFC3339), r.VideoCount, r.SkippedCount, r.InputPath, r.ID)
	}
	return w.Flush()
}

func writeRankingFile(path string, videos []engage.ScoredVideo) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := csvio.WriteRanking(f, videos); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func saveRun(cfg *config.Config, inputPath string, result *engage.Result) (string, error) {
	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return "", fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	run := &store.Run{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		InputPath:    inputPath,
		VideoCount:   len(result.Videos),
		SkippedCount: len(result.Skipped),
		Videos:       result.Videos,
		Suggestions:  result.Suggestions,
	}
	if err := db.SaveRun(context.Background(), run); err != nil {
		return "", err
	}
	return run.ID, nil
}

func notifyRun(cfg *config.Config, runID string, result *engage.Result) error {
	mgr := buildAlertManager(cfg)
	if !mgr.HasNotifiers() {
		return fmt.Errorf("no alert destinations configured")
	}

	n := &alert.Notification{
		Title:       "Engagement ranking updated",
		Body:        fmt.Sprintf("%d videos ranked, %d rows skipped", len(result.Videos), len(result.Skipped)),
		RunID:       runID,
		VideoCount:  len(result.Videos),
		Videos:      result.Videos,
		Suggestions: result.Suggestions,
	}
	return mgr.Broadcast(context.Background(), n)
}

func printRanking(videos []engage.ScoredVideo) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tSCORE\tTYPE\tVIEWS\tID\tTITLE")
	for i, sv := range videos {
		fmt.Fprintf(w, "%d\t%.4f\t%s\t%d\t%s\t%s\n",
			i+1, sv.EngagementScore, sv.ContentType, sv.ViewCount, sv.ID, sv.Title)
	}
	w.Flush()
}

func printSuggestions(suggestions []engage.TopicSuggestion) {
	if len(suggestions) == 0 {
		return
	}
	fmt.Println("\nsuggested topics:")
	for _, ts := range suggestions {
		fmt.Printf("  %s (%d)\n", ts.Tag, ts.Count)
	}
}
