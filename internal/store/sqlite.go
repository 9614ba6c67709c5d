package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id         TEXT PRIMARY KEY,
	search_key TEXT NOT NULL,
	doc        TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS searches (
	key        TEXT PRIMARY KEY,
	doc        TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_leads_search_key ON leads(search_key);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveLead(ctx context.Context, lead *model.Lead) error {
	doc, err := json.Marshal(lead)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal lead")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO leads (id, search_key, doc, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET search_key = excluded.search_key, doc = excluded.doc`,
		lead.ID, lead.SearchKey, string(doc), lead.CreatedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: save lead %s", lead.ID)
}

func (s *SQLiteStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx, `SELECT doc FROM leads WHERE id = ?`, id)

	var doc string
	err := row.Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get lead %s", id)
	}
	return unmarshalLead(doc)
}

func (s *SQLiteStore) GetLeads(ctx context.Context, ids []string) ([]model.Lead, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM leads WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get leads")
	}
	defer rows.Close()

	return scanLeadRows(rows)
}

func (s *SQLiteStore) ListLeads(ctx context.Context, limit int) ([]model.Lead, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM leads ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	return scanLeadRows(rows)
}

func (s *SQLiteStore) GetSearch(ctx context.Context, key string) (*model.SearchRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT doc FROM searches WHERE key = ?`, key)

	var doc string
	err := row.Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get search %s", key)
	}

	var rec model.SearchRecord
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal search record")
	}
	return &rec, nil
}

func (s *SQLiteStore) SaveSearch(ctx context.Context, rec *model.SearchRecord) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	doc, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal search record")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO searches (key, doc, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		rec.Key, string(doc), rec.CreatedAt, rec.UpdatedAt,
	)
	return eris.Wrapf(err, "sqlite: save search %s", rec.Key)
}

func (s *SQLiteStore) ListSearches(ctx context.Context) ([]model.SearchRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM searches ORDER BY updated_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list searches")
	}
	defer rows.Close()

	var recs []model.SearchRecord
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan search record")
		}
		var rec model.SearchRecord
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal search record")
		}
		recs = append(recs, rec)
	}
	return recs, eris.Wrap(rows.Err(), "sqlite: list searches iterate")
}

// helpers

func unmarshalLead(doc string) (*model.Lead, error) {
	var lead model.Lead
	if err := json.Unmarshal([]byte(doc), &lead); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal lead")
	}
	return &lead, nil
}

func scanLeadRows(rows *sql.Rows) ([]model.Lead, error) {
	var leads []model.Lead
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		lead, err := unmarshalLead(doc)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: iterate leads")
}
