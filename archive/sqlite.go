package archive

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pevans/khabar/article"
)

// SQLiteStore keeps an exported copy of scraped records in SQLite, keyed by
// URL. It is an output format only; crawls never read from it.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", ErrPersistence, err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to initialize schema: %w", ErrPersistence, err)
	}

	return store, nil
}

// initSchema creates the articles table if it doesn't exist.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		url TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		category TEXT NOT NULL,
		author TEXT NOT NULL,
		word_count INTEGER NOT NULL,
		char_count INTEGER NOT NULL,
		scraped_at TEXT NOT NULL,
		scraper_version TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS articles_category ON articles (category);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Export writes records in one transaction. A record whose URL is already
// stored replaces the earlier row.
func (s *SQLiteStore) Export(runID uuid.UUID, records []article.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin export: %w", ErrPersistence, err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO articles (
			url, run_id, timestamp, title, content, category, author,
			word_count, char_count, scraped_at, scraper_version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("%w: failed to prepare export: %w", ErrPersistence, err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.Exec(
			r.URL, runID.String(), r.Timestamp, r.Title, r.Content, r.Category,
			r.Author, r.WordCount, r.CharCount, r.ScrapedAt, r.ScraperVersion,
		)
		if err != nil {
			return fmt.Errorf("%w: failed to export %s: %w", ErrPersistence, r.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit export: %w", ErrPersistence, err)
	}

	return nil
}

// List returns every stored record ordered by scraped_at.
func (s *SQLiteStore) List() ([]article.Record, error) {
	rows, err := s.db.Query(`
		SELECT url, timestamp, title, content, category, author,
		       word_count, char_count, scraped_at, scraper_version
		FROM articles
		ORDER BY scraped_at, url
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query articles: %w", ErrPersistence, err)
	}
	defer rows.Close()

	records := []article.Record{}
	for rows.Next() {
		var r article.Record
		err := rows.Scan(
			&r.URL, &r.Timestamp, &r.Title, &r.Content, &r.Category, &r.Author,
			&r.WordCount, &r.CharCount, &r.ScrapedAt, &r.ScraperVersion,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan article: %w", ErrPersistence, err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read articles: %w", ErrPersistence, err)
	}

	return records, nil
}

// CategoryCounts returns the number of stored records per category.
func (s *SQLiteStore) CategoryCounts() (map[string]int, error) {
	rows, err := s.db.Query("SELECT category, COUNT(*) FROM articles GROUP BY category")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to count categories: %w", ErrPersistence, err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("%w: failed to scan category count: %w", ErrPersistence, err)
		}
		counts[category] = n
	}

	return counts, rows.Err()
}

// RunIDs returns the distinct run ids present in the store.
func (s *SQLiteStore) RunIDs() ([]uuid.UUID, error) {
	rows, err := s.db.Query("SELECT DISTINCT run_id FROM articles ORDER BY run_id")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query run ids: %w", ErrPersistence, err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var idStr string
		if err := rows.Scan(&idStr); err != nil {
			return nil, fmt.Errorf("%w: failed to scan run id: %w", ErrPersistence, err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid run id %q: %w", ErrPersistence, idStr, err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
