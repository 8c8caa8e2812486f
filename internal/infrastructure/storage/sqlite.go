package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/vitos/trade_journal/internal/domain"
)

// SQLiteStore keeps datasets in a private in-memory SQLite database, one row
// per dataset with the trades, columns and warnings JSON-encoded.
type SQLiteStore struct {
	db *sql.DB

	timeNow func() time.Time
	newID   func() string
}

// NewSQLiteStore opens the in-memory database called name. The data lives
// as long as the returned store.
func NewSQLiteStore(name string) (*SQLiteStore, error) {
	if name == "" {
		name = "trade_journal"
	}
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// every connection to a memory database sees its own copy
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{
		db:      db,
		timeNow: time.Now,
		newID:   func() string { return uuid.New().String() },
	}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS datasets (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			created_at DATETIME NOT NULL,
			columns TEXT NOT NULL,
			warnings TEXT NOT NULL,
			trades TEXT NOT NULL
		);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, content domain.DatasetContent) (*domain.Dataset, error) {
	ds := newDataset(s.newID(), s.timeNow().UTC(), content)

	columns, err := json.Marshal(ds.Columns)
	if err != nil {
		return nil, fmt.Errorf("failed to encode columns: %w", err)
	}
	warnings, err := json.Marshal(ds.Warnings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode warnings: %w", err)
	}
	trades, err := json.Marshal(ds.Trades)
	if err != nil {
		return nil, fmt.Errorf("failed to encode trades: %w", err)
	}

	query := `INSERT INTO datasets (id, created_at, columns, warnings, trades) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, ds.ID, ds.CreatedAt, string(columns), string(warnings), string(trades)); err != nil {
		return nil, fmt.Errorf("failed to insert dataset: %w", err)
	}
	return ds, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*domain.Dataset, error) {
	query := `SELECT id, created_at, columns, warnings, trades FROM datasets WHERE id = ?`
	row := s.db.QueryRowContext(ctx, query, id)

	var (
		ds                        domain.Dataset
		columns, warnings, trades string
	)
	if err := row.Scan(&ds.ID, &ds.CreatedAt, &columns, &warnings, &trades); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDatasetNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal([]byte(columns), &ds.Columns); err != nil {
		return nil, fmt.Errorf("failed to decode columns: %w", err)
	}
	if err := json.Unmarshal([]byte(warnings), &ds.Warnings); err != nil {
		return nil, fmt.Errorf("failed to decode warnings: %w", err)
	}
	if err := json.Unmarshal([]byte(trades), &ds.Trades); err != nil {
		return nil, fmt.Errorf("failed to decode trades: %w", err)
	}
	return &ds, nil
}

func (s *SQLiteStore) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM datasets ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
