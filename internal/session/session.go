// Package session persists the pieces of app state that survive a
// restart: the auth token, the signed-in user, the last known location
// and recent searches. Feed content is deliberately not persisted; the
// cache is rebuilt from the server on startup.
package session

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Dem-News/demnews/internal/engine"
	"github.com/Dem-News/demnews/internal/logging"
	"github.com/Dem-News/demnews/internal/news"
)

// Store handles persistence of session state
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the session database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		logging.Error("Failed to open session database", "path", dbPath, "error", err)
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		logging.Error("Failed to migrate session database", "error", err)
		return nil, err
	}

	logging.Info("Session database initialized", "path", dbPath)
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS credentials (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		token TEXT NOT NULL,
		user_id TEXT NOT NULL,
		username TEXT NOT NULL,
		saved_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS last_location (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS searches (
		query TEXT PRIMARY KEY,
		used_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_searches_used ON searches(used_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveCredentials stores the token and user after a successful login
// or registration, replacing any previous session.
func (s *Store) SaveCredentials(token string, user engine.Identity) error {
	_, err := s.db.Exec(`
		INSERT INTO credentials (id, token, user_id, username, saved_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			user_id = excluded.user_id,
			username = excluded.username,
			saved_at = excluded.saved_at
	`, token, user.ID, user.Username, time.Now())
	if err != nil {
		logging.Error("Failed to save credentials", "error", err)
	}
	return err
}

// Credentials returns the stored token and user. An empty token means
// no session is stored.
func (s *Store) Credentials() (string, engine.Identity, error) {
	var token string
	var user engine.Identity
	err := s.db.QueryRow("SELECT token, user_id, username FROM credentials WHERE id = 1").
		Scan(&token, &user.ID, &user.Username)
	if err == sql.ErrNoRows {
		return "", engine.Identity{}, nil
	}
	if err != nil {
		return "", engine.Identity{}, err
	}
	return token, user, nil
}

// ClearCredentials removes the stored session (logout).
func (s *Store) ClearCredentials() error {
	_, err := s.db.Exec("DELETE FROM credentials WHERE id = 1")
	return err
}

// SaveLocation records the most recent device location.
func (s *Store) SaveLocation(at news.GeoPoint) error {
	_, err := s.db.Exec(`
		INSERT INTO last_location (id, latitude, longitude, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			updated_at = excluded.updated_at
	`, at.Latitude, at.Longitude, time.Now())
	return err
}

// LastLocation returns the most recently saved location, or nil when
// none has been recorded yet.
func (s *Store) LastLocation() (*news.GeoPoint, error) {
	var at news.GeoPoint
	err := s.db.QueryRow("SELECT latitude, longitude FROM last_location WHERE id = 1").
		Scan(&at.Latitude, &at.Longitude)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &at, nil
}

// RecordSearch remembers a search query for the explore screen's
// history. Repeats bump the timestamp instead of duplicating.
func (s *Store) RecordSearch(query string) error {
	if query == "" {
		return nil
	}
	_, err := s.db.Exec(`
		INSERT INTO searches (query, used_at)
		VALUES (?, ?)
		ON CONFLICT(query) DO UPDATE SET used_at = excluded.used_at
	`, query, time.Now())
	return err
}

// RecentSearches returns up to limit queries, most recent first.
func (s *Store) RecentSearches(limit int) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT query FROM searches ORDER BY used_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var queries []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			continue
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
