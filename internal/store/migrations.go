package store

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id            TEXT PRIMARY KEY,
    created_at    DATETIME NOT NULL,
    input_path    TEXT NOT NULL DEFAULT '',
    video_count   INTEGER NOT NULL DEFAULT 0,
    skipped_count INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);

CREATE TABLE IF NOT EXISTS run_videos (
    run_id                    TEXT NOT NULL REFERENCES runs(id),
    rank                      INTEGER NOT NULL,
    video_id                  TEXT NOT NULL,
    title                     TEXT NOT NULL DEFAULT '',
    published_at              DATETIME,
    duration_seconds          INTEGER NOT NULL DEFAULT 0,
    views                     INTEGER NOT NULL DEFAULT 0,
    likes                     INTEGER NOT NULL DEFAULT 0,
    comments                  INTEGER NOT NULL DEFAULT 0,
    shares                    INTEGER NOT NULL DEFAULT 0,
    avg_view_duration_seconds REAL NOT NULL DEFAULT 0,
    tags                      TEXT NOT NULL DEFAULT '',
    engagement_score          REAL NOT NULL DEFAULT 0,
    content_type              TEXT NOT NULL DEFAULT 'video',
    PRIMARY KEY (run_id, rank)
);

CREATE INDEX IF NOT EXISTS idx_run_videos_video ON run_videos(video_id);

CREATE TABLE IF NOT EXISTS run_topics (
    run_id   TEXT NOT NULL REFERENCES runs(id),
    position INTEGER NOT NULL,
    tag      TEXT NOT NULL,
    count    INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (run_id, position)
);
`
