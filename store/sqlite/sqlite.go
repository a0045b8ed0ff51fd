/*
Package sqlite provides a SQLite-backed generic.CompanyStore.

PURPOSE:
  Persists company profiles: the reusable market side of a simulation.
  Grants and simulation results are never written here.

KEY TABLES:
  companies: One row per profile. Decimal columns are stored as TEXT so
             share prices and growth rates round-trip without float drift.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of WAL mode:
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./equity.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  f := factory.NewScenarioFactory(store)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - generic/store.go: Interface definition
  - generic/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/equity-engine/generic"
)

const dateLayout = "2006-01-02"

// Store implements generic.CompanyStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ generic.CompanyStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection; used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS companies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		outstanding_shares INTEGER NOT NULL CHECK (outstanding_shares > 0),
		share_price TEXT NOT NULL,
		annual_growth_rate TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(name);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// COMPANY STORE (generic.CompanyStore interface)
// =============================================================================

func (s *Store) SaveCompany(ctx context.Context, c generic.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = generic.Today()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO companies (id, name, outstanding_shares, share_price, annual_growth_rate, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(c.ID), c.Name, c.OutstandingShares,
		c.SharePrice.String(), c.AnnualGrowthRate.String(),
		createdAt.Time.Format(dateLayout),
	)

	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) && sqlErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
		return fmt.Errorf("company %s: %w", c.ID, generic.ErrDuplicateCompany)
	}
	if err != nil {
		return fmt.Errorf("save company %s: %w", c.ID, err)
	}
	return nil
}

func (s *Store) GetCompany(ctx context.Context, id generic.CompanyID) (*generic.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, outstanding_shares, share_price, annual_growth_rate, created_at
		FROM companies WHERE id = ?`, string(id))

	c, err := scanCompany(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("company %s: %w", id, generic.ErrCompanyNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListCompanies(ctx context.Context) ([]generic.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, outstanding_shares, share_price, annual_growth_rate, created_at
		FROM companies ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []generic.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (s *Store) DeleteCompany(ctx context.Context, id generic.CompanyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM companies WHERE id = ?", string(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("company %s: %w", id, generic.ErrCompanyNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCompany(row scanner) (generic.Company, error) {
	var c generic.Company
	var id, price, rate, createdAt string
	if err := row.Scan(&id, &c.Name, &c.OutstandingShares, &price, &rate, &createdAt); err != nil {
		return generic.Company{}, err
	}

	var err error
	c.ID = generic.CompanyID(id)
	if c.SharePrice, err = decimal.NewFromString(price); err != nil {
		return generic.Company{}, fmt.Errorf("company %s: share_price %q: %w", id, price, err)
	}
	if c.AnnualGrowthRate, err = decimal.NewFromString(rate); err != nil {
		return generic.Company{}, fmt.Errorf("company %s: annual_growth_rate %q: %w", id, rate, err)
	}
	t, err := time.Parse(dateLayout, createdAt)
	if err != nil {
		return generic.Company{}, fmt.Errorf("company %s: created_at %q: %w", id, createdAt, err)
	}
	c.CreatedAt = generic.TimePoint{Time: t}
	return c, nil
}
