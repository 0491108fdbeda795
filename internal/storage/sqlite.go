package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/codebuildervaibhav/speech-corpus/internal/types"
)

// CorpusDB is the persistent URL and video-metadata store backing
// deduplication across runs and processes. It is the source of truth for
// "already processed"; the filesystem only records that chunking was
// attempted.
type CorpusDB struct {
	db *sql.DB
}

// NewCorpusDB opens (and if needed initializes) the corpus database.
func NewCorpusDB(dbPath string) (*CorpusDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS video_urls (
		url TEXT PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS video_metadata (
		video_id TEXT PRIMARY KEY,
		url TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		duration INTEGER,
		published_time TEXT,
		channel_name TEXT,
		published_year INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_metadata_channel ON video_metadata(channel_name);
	`
	if _, err := db.Exec(createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	return &CorpusDB{db: db}, nil
}

// URLExists reports whether the URL was seen before.
func (c *CorpusDB) URLExists(url string) (bool, error) {
	var one int
	err := c.db.QueryRow(`SELECT 1 FROM video_urls WHERE url = ?`, url).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check url: %v", err)
	}
	return true, nil
}

// InsertURL records a URL as seen.
func (c *CorpusDB) InsertURL(url string) error {
	if _, err := c.db.Exec(`INSERT OR IGNORE INTO video_urls (url) VALUES (?)`, url); err != nil {
		return fmt.Errorf("failed to insert url: %v", err)
	}
	return nil
}

// MetadataExists reports whether metadata for the video was persisted.
func (c *CorpusDB) MetadataExists(videoID string) (bool, error) {
	var one int
	err := c.db.QueryRow(`SELECT 1 FROM video_metadata WHERE video_id = ?`, videoID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check metadata: %v", err)
	}
	return true, nil
}

// InsertMetadata persists one video's metadata. Metadata lands here only
// after the video contributed at least one accepted chunk.
func (c *CorpusDB) InsertMetadata(meta types.VideoMetadata) error {
	query := `
	INSERT OR IGNORE INTO video_metadata
		(video_id, url, title, duration, published_time, channel_name, published_year)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := c.db.Exec(query, meta.VideoID, meta.URL, meta.Title, meta.DurationSeconds,
		meta.PublishedTime, meta.ChannelName, meta.PublishedYear)
	if err != nil {
		return fmt.Errorf("failed to insert metadata: %v", err)
	}
	return nil
}

// ListVideos returns the most recently inserted metadata rows.
func (c *CorpusDB) ListVideos(limit int) ([]types.VideoMetadata, error) {
	query := `
	SELECT video_id, url, title, duration, published_time, channel_name, published_year
	FROM video_metadata ORDER BY rowid DESC LIMIT ?
	`
	rows, err := c.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %v", err)
	}
	defer rows.Close()

	var videos []types.VideoMetadata
	for rows.Next() {
		var m types.VideoMetadata
		if err := rows.Scan(&m.VideoID, &m.URL, &m.Title, &m.DurationSeconds,
			&m.PublishedTime, &m.ChannelName, &m.PublishedYear); err != nil {
			return nil, fmt.Errorf("failed to scan metadata row: %v", err)
		}
		videos = append(videos, m)
	}
	return videos, rows.Err()
}

// Stats reports the URL and metadata row counts.
func (c *CorpusDB) Stats() (urls int, videos int, err error) {
	if err = c.db.QueryRow(`SELECT COUNT(*) FROM video_urls`).Scan(&urls); err != nil {
		return 0, 0, fmt.Errorf("failed to count urls: %v", err)
	}
	if err = c.db.QueryRow(`SELECT COUNT(*) FROM video_metadata`).Scan(&videos); err != nil {
		return 0, 0, fmt.Errorf("failed to count videos: %v", err)
	}
	return urls, videos, nil
}

// Close closes the database connection.
func (c *CorpusDB) Close() error {
	return c.db.Close()
}
