package storage

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"

	"OptionSentinel/internal/model"
)

// SQLiteStore persists bot data to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so reads don't block the write path.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			trade_id   TEXT UNIQUE,
			asset      TEXT NOT NULL,
			direction  TEXT NOT NULL,
			amount     REAL NOT NULL,
			confidence REAL,
			outcome    TEXT,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_created ON trades(created_at)`,

		`CREATE TABLE IF NOT EXISTS learned_knowledge (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			source          TEXT NOT NULL,
			category        TEXT NOT NULL,
			content         TEXT NOT NULL,
			summary         TEXT,
			relevance_score REAL DEFAULT 0.5,
			created_at      INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS model_state (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			model_name TEXT NOT NULL UNIQUE,
			model_data BLOB,
			version    INTEGER DEFAULT 1,
			updated_at INTEGER NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveTrade(rec model.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO trades
		(trade_id, asset, direction, amount, confidence, outcome, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		rec.ID, rec.Asset, string(rec.Direction), rec.Amount,
		rec.Confidence, string(rec.Outcome), rec.CreatedAt.Unix(),
	)
	return err
}

func (s *SQLiteStore) SaveKnowledge(entry KnowledgeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO learned_knowledge
		(source, category, content, summary, relevance_score, created_at)
		VALUES (?,?,?,?,?, strftime('%s','now'))`,
		entry.Source, entry.Category, entry.Content, entry.Summary, entry.Relevance,
	)
	return err
}

func (s *SQLiteStore) AllKnowledge() ([]KnowledgeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT source, category, content, summary, relevance_score
		FROM learned_knowledge ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []KnowledgeEntry
	for rows.Next() {
		var e KnowledgeEntry
		var summary sql.NullString
		if err := rows.Scan(&e.Source, &e.Category, &e.Content, &summary, &e.Relevance); err != nil {
			return nil, err
		}
		e.Summary = summary.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) SaveModel(name string, blob []byte, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO model_state (model_name, model_data, version, updated_at)
		VALUES (?,?,?, strftime('%s','now'))
		ON CONFLICT(model_name) DO UPDATE SET
			model_data = excluded.model_data,
			version    = excluded.version,
			updated_at = excluded.updated_at`,
		name, blob, version,
	)
	return err
}

func (s *SQLiteStore) LoadModel(name string) ([]byte, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var blob []byte
	var version int
	err := s.db.QueryRow(`SELECT model_data, version FROM model_state WHERE model_name = ?`, name).
		Scan(&blob, &version)
	if err == sql.ErrNoRows {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return blob, version, nil
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}
