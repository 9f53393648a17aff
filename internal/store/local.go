package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"dealdesk/internal/citation"
)

// LocalStore implements EntityStore and CitationStore on SQLite.
type LocalStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
	log    *zap.Logger
}

// NewLocalStore opens (creating if needed) the SQLite database at path.
func NewLocalStore(path string, log *zap.Logger) (*LocalStore, error) {
	if log == nil {
		log = zap.NewNop()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		log.Debug("failed to set sqlite busy_timeout", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		log.Debug("failed to set sqlite journal_mode=WAL", zap.Error(err))
	}

	store := &LocalStore{db: db, dbPath: path, log: log}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	log.Debug("local store opened", zap.String("path", path))
	return store, nil
}

// initialize creates the required tables.
func (s *LocalStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS deals (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		company TEXT NOT NULL DEFAULT '',
		contact TEXT NOT NULL DEFAULT '',
		stage TEXT NOT NULL DEFAULT 'lead',
		amount REAL NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS activities (
		id TEXT PRIMARY KEY,
		deal_id TEXT NOT NULL REFERENCES deals(id),
		kind TEXT NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS citations (
		id TEXT PRIMARY KEY,
		record_id TEXT NOT NULL,
		path TEXT NOT NULL,
		file_name TEXT NOT NULL DEFAULT '',
		section TEXT NOT NULL DEFAULT '',
		page INTEGER NOT NULL DEFAULT 0,
		relevance REAL NOT NULL DEFAULT 1.0,
		created_at DATETIME NOT NULL,
		UNIQUE(record_id, path)
	);

	CREATE INDEX IF NOT EXISTS idx_activities_deal ON activities(deal_id);
	CREATE INDEX IF NOT EXISTS idx_citations_record ON citations(record_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *LocalStore) Close() error {
	return s.db.Close()
}

// CreateDeal inserts a new deal, assigning an id when absent.
func (s *LocalStore) CreateDeal(ctx context.Context, d Deal) (*Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Stage == "" {
		d.Stage = StageLead
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deals (id, name, company, contact, stage, amount, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.Company, d.Contact, d.Stage, d.Amount, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert deal: %w", err)
	}
	return &d, nil
}

// GetByID returns the deal with the given id, or ErrNotFound.
func (s *LocalStore) GetByID(ctx context.Context, id string) (*Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, company, contact, stage, amount, created_at, updated_at
		 FROM deals WHERE id = ?`, id)

	var d Deal
	err := row.Scan(&d.ID, &d.Name, &d.Company, &d.Contact, &d.Stage, &d.Amount, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: deal %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load deal: %w", err)
	}
	return &d, nil
}

// ListAll returns every deal, newest first.
func (s *LocalStore) ListAll(ctx context.Context) ([]Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, company, contact, stage, amount, created_at, updated_at
		 FROM deals ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}
	defer rows.Close()

	var deals []Deal
	for rows.Next() {
		var d Deal
		if err := rows.Scan(&d.ID, &d.Name, &d.Company, &d.Contact, &d.Stage, &d.Amount, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deal: %w", err)
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

// UpdateStage sets the deal's pipeline stage in a single statement and
// returns the updated deal.
func (s *LocalStore) UpdateStage(ctx context.Context, id, stage string) (*Deal, error) {
	s.mu.Lock()
	res, err := s.db.ExecContext(ctx,
		`UPDATE deals SET stage = ?, updated_at = ? WHERE id = ?`,
		stage, time.Now().UTC(), id)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to update stage: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: deal %s", ErrNotFound, id)
	}

	return s.GetByID(ctx, id)
}

// CreateActivity inserts a child activity record on the given deal.
func (s *LocalStore) CreateActivity(ctx context.Context, dealID string, a Activity) (*Activity, error) {
	if _, err := s.GetByID(ctx, dealID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.DealID = dealID
	a.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activities (id, deal_id, kind, summary, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.DealID, a.Kind, a.Summary, a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert activity: %w", err)
	}
	return &a, nil
}

// Attach persists one citation against a record. The UNIQUE constraint
// on (record_id, path) backs up the aggregator's in-memory dedup.
func (s *LocalStore) Attach(ctx context.Context, recordID string, c citation.Citation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO citations (id, record_id, path, file_name, section, page, relevance, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, recordID, c.Path, c.FileName, c.Section, c.Page, c.Relevance, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to attach citation: %w", err)
	}
	return nil
}

// CitationsFor returns the citations attached to a record, most
// relevant first.
func (s *LocalStore) CitationsFor(ctx context.Context, recordID string) ([]citation.Citation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, record_id, path, file_name, section, page, relevance
		 FROM citations WHERE record_id = ? ORDER BY relevance DESC`, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list citations: %w", err)
	}
	defer rows.Close()

	var out []citation.Citation
	for rows.Next() {
		var c citation.Citation
		if err := rows.Scan(&c.ID, &c.RecordID, &c.Path, &c.FileName, &c.Section, &c.Page, &c.Relevance); err != nil {
			return nil, fmt.Errorf("failed to scan citation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
