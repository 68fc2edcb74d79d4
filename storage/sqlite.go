package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mw_harvester/models"
)

// SQLiteStore keeps run history and every listing ever exported, keyed by
// fingerprint.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS listings (
		fingerprint TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		title TEXT,
		property_type TEXT,
		transaction_type TEXT,
		location TEXT,
		price TEXT,
		area_sqm TEXT,
		bedrooms TEXT,
		bathrooms TEXT,
		date_posted TEXT,
		description TEXT,
		url TEXT,
		first_seen_at DATETIME,
		last_seen_at DATETIME,
		times_seen INTEGER DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_listings_source ON listings(source, last_seen_at);

	CREATE TABLE IF NOT EXISTS scrape_runs (
		id INTEGER PRIMARY KEY,
		site_id TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		pages INTEGER DEFAULT 0,
		stop_reason TEXT,
		listings_found INTEGER DEFAULT 0,
		errors_count INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS scrape_logs (
		id INTEGER PRIMARY KEY,
		run_id INTEGER,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		site_id TEXT
	);`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Write upserts records. A listing seen again keeps its first_seen_at and has
// times_seen bumped.
func (s *SQLiteStore) Write(ctx context.Context, records []models.PropertyRecord) error {
	if len(records) == 0 {
		return ErrNothingToWrite
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO listings (fingerprint, source, title, property_type, transaction_type, location,
			price, area_sqm, bedrooms, bathrooms, date_posted, description, url,
			first_seen_at, last_seen_at, times_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(fingerprint) DO UPDATE SET
			last_seen_at = excluded.last_seen_at,
			times_seen = listings.times_seen + 1,
			date_posted = COALESCE(NULLIF(excluded.date_posted, ''), listings.date_posted),
			description = COALESCE(NULLIF(excluded.description, ''), listings.description),
			url = excluded.url`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := s.now()
	for _, l := range uniqueListings(records) {
		r := l.Record
		if _, err := stmt.ExecContext(ctx,
			l.Fingerprint, r.Source, r.Title, r.PropertyType, r.TransactionType, r.Location,
			r.Price, r.AreaSqm, r.Bedrooms, r.Bathrooms, r.DatePosted, r.Description, r.URL,
			now, now); err != nil {
			return fmt.Errorf("upsert listing: %w", err)
		}
	}

	return tx.Commit()
}

// GetListings returns the most recently seen listings, optionally for one
// source.
func (s *SQLiteStore) GetListings(source string, limit int) ([]models.StoredListing, error) {
	query := `
		SELECT fingerprint, source, title, property_type, transaction_type, location,
			price, area_sqm, bedrooms, bathrooms, date_posted, description, url,
			first_seen_at, last_seen_at, times_seen
		FROM listings`
	var args []interface{}
	if source != "" {
		query += " WHERE source = ?"
		args = append(args, source)
	}
	query += " ORDER BY last_seen_at DESC, fingerprint LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.StoredListing
	for rows.Next() {
		var l models.StoredListing
		var title, location, price, area, beds, baths, date, desc, url sql.NullString
		var propertyType, transactionType sql.NullString
		if err := rows.Scan(&l.Fingerprint, &l.Source, &title, &propertyType, &transactionType, &location,
			&price, &area, &beds, &baths, &date, &desc, &url,
			&l.FirstSeenAt, &l.LastSeenAt, &l.TimesSeen); err != nil {
			return nil, err
		}
		l.Title = title.String
		l.PropertyType = models.PropertyType(propertyType.String)
		l.TransactionType = models.TransactionType(transactionType.String)
		l.Location = location.String
		l.Price = price.String
		l.AreaSqm = area.String
		l.Bedrooms = beds.String
		l.Bathrooms = baths.String
		l.DatePosted = date.String
		l.Description = desc.String
		l.URL = url.String
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (s *SQLiteStore) CreateRun(run *models.ScrapeRun) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO scrape_runs (site_id, started_at, status, pages, stop_reason, listings_found, errors_count)
		VALUES (?, ?, ?, 0, '', 0, 0)`,
		run.SiteID, run.StartedAt.UTC(), run.Status)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) UpdateRun(run *models.ScrapeRun) error {
	var finished interface{}
	if run.FinishedAt != nil {
		finished = run.FinishedAt.UTC()
	}
	_, err := s.db.Exec(`
		UPDATE scrape_runs SET finished_at = ?, status = ?, pages = ?, stop_reason = ?,
			listings_found = ?, errors_count = ?
		WHERE id = ?`,
		finished, run.Status, run.Pages, run.StopReason,
		run.ListingsFound, run.ErrorsCount, run.ID)
	return err
}

func (s *SQLiteStore) Log(runID *int64, level models.LogLevel, message, siteID string) error {
	_, err := s.db.Exec(`
		INSERT INTO scrape_logs (run_id, timestamp, level, message, site_id)
		VALUES (?, ?, ?, ?, ?)`,
		runID, s.now(), level, message, siteID)
	return err
}

func (s *SQLiteStore) GetRecentRuns(limit int) ([]models.ScrapeRun, error) {
	rows, err := s.db.Query(`
		SELECT id, site_id, started_at, finished_at, status, pages, stop_reason, listings_found, errors_count
		FROM scrape_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.ScrapeRun
	for rows.Next() {
		var run models.ScrapeRun
		var finished sql.NullTime
		var stop sql.NullString
		if err := rows.Scan(&run.ID, &run.SiteID, &run.StartedAt, &finished, &run.Status,
			&run.Pages, &stop, &run.ListingsFound, &run.ErrorsCount); err != nil {
			return nil, err
		}
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		run.StopReason = stop.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) GetLogs(runID int64) ([]models.ScrapeLog, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, timestamp, level, message, site_id
		FROM scrape_logs WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.ScrapeLog
	for rows.Next() {
		var l models.ScrapeLog
		if err := rows.Scan(&l.ID, &l.RunID, &l.Timestamp, &l.Level, &l.Message, &l.SiteID); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// GetSiteStats reports the latest run and listing count for every source
// that has run at least once.
func (s *SQLiteStore) GetSiteStats() ([]models.SiteStats, error) {
	rows, err := s.db.Query(`
		SELECT site_id, started_at, status FROM scrape_runs
		WHERE id IN (SELECT MAX(id) FROM scrape_runs GROUP BY site_id)
		ORDER BY site_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.SiteStats
	for rows.Next() {
		var st models.SiteStats
		var started time.Time
		if err := rows.Scan(&st.SiteID, &started, &st.LastRunStatus); err != nil {
			return nil, err
		}
		st.LastRunAt = &started
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts, err := s.listingCounts()
	if err != nil {
		return nil, err
	}
	for i := range stats {
		stats[i].TotalListings = counts[stats[i].SiteID]
	}
	return stats, nil
}

func (s *SQLiteStore) listingCounts() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT source, COUNT(*) FROM listings GROUP BY source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return nil, err
		}
		counts[source] = n
	}
	return counts, rows.Err()
}
