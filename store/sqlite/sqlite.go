/*
Package sqlite provides the SQLite-backed store for the finance engine.

PURPOSE:
  Persists the source records (accounts, transactions, investments,
  lots, budgets, projects, billing documents) and answers the summation
  queries the engines derive state from. Balances, valuations, and
  report figures are never stored.

NUMERIC STORAGE:
  Monetary amounts and quantities are stored as decimal strings (TEXT)
  and summed in Go with shopspring/decimal. SQL-side SUM over these
  columns would coerce to floats and lose precision, so the flow-total
  queries scan rows and accumulate instead.

CONCURRENCY:
  A sync.RWMutex serializes access to the handle: one logical writer,
  concurrent pure reads. Multi-statement writes (transaction with tags,
  invoice with items, payment with status recompute) run inside one
  SQL transaction via withTx, rolled back on any failure mid-sequence.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) and foreign keys on.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool with versioned migrations.

USAGE:
  store, err := sqlite.New("./data/finance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - ledger/ledger.go: Balance identity over FlowTotals
  - budget/engine.go: Window sums this store implements
  - transactions.go, investments.go, budgets.go, billing.go: Per-record
    implementations in this package
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/moneta/finance-engine/finance"
)

// Store implements the engine source interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
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

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		account_type TEXT NOT NULL,
		opening_balance TEXT NOT NULL DEFAULT '0',
		notes TEXT
	);

	CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		is_investment INTEGER NOT NULL DEFAULT 0,
		notes TEXT
	);

	CREATE TABLE IF NOT EXISTS clients (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		email TEXT,
		phone TEXT,
		company TEXT,
		notes TEXT
	);

	CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		client_id INTEGER REFERENCES clients(id),
		expected_amount TEXT NOT NULL DEFAULT '0',
		daily_rate TEXT NOT NULL DEFAULT '0',
		start_date TEXT,
		end_date TEXT,
		notes TEXT
	);

	CREATE TABLE IF NOT EXISTS tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS time_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL REFERENCES projects(id),
		log_date TEXT NOT NULL,
		hours TEXT NOT NULL DEFAULT '0',
		description TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_time_logs_project ON time_logs(project_id);

	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tx_date TEXT NOT NULL,
		amount TEXT NOT NULL,
		direction TEXT NOT NULL,
		from_account_id INTEGER REFERENCES accounts(id),
		to_account_id INTEGER REFERENCES accounts(id),
		category_id INTEGER NOT NULL REFERENCES categories(id),
		client_id INTEGER REFERENCES clients(id),
		project_id INTEGER REFERENCES projects(id),
		investment_id INTEGER REFERENCES investments(id),
		notes TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(tx_date);
	CREATE INDEX IF NOT EXISTS idx_transactions_from_account ON transactions(from_account_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_to_account ON transactions(to_account_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_project ON transactions(project_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_investment ON transactions(investment_id);

	CREATE TABLE IF NOT EXISTS transaction_tags (
		transaction_id INTEGER NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
		tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		PRIMARY KEY (transaction_id, tag_id)
	);

	CREATE TABLE IF NOT EXISTS investments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		investment_type TEXT NOT NULL,
		account_id INTEGER NOT NULL REFERENCES accounts(id),
		provider_symbol TEXT,
		current_price TEXT,
		principal_amount TEXT,
		interest_rate TEXT,
		maturity_date TEXT,
		maturity_amount TEXT,
		monthly_deposit TEXT,
		last_updated_at TEXT,
		notes TEXT
	);

	CREATE TABLE IF NOT EXISTS investment_lots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		investment_id INTEGER NOT NULL REFERENCES investments(id) ON DELETE CASCADE,
		quantity TEXT NOT NULL,
		price_per_unit TEXT NOT NULL DEFAULT '0',
		charges TEXT NOT NULL DEFAULT '0',
		lot_date TEXT NOT NULL,
		lot_type TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_lots_investment ON investment_lots(investment_id);

	CREATE TABLE IF NOT EXISTS budgets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		month TEXT NOT NULL,
		category_id INTEGER NOT NULL REFERENCES categories(id),
		budgeted_amount TEXT NOT NULL DEFAULT '0',
		notes TEXT,
		UNIQUE (month, category_id)
	);

	CREATE TABLE IF NOT EXISTS monthly_income (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		month TEXT NOT NULL UNIQUE,
		expected_income TEXT NOT NULL DEFAULT '0',
		notes TEXT
	);

	CREATE TABLE IF NOT EXISTS budget_settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		salary_date INTEGER NOT NULL DEFAULT 1
	);

	INSERT OR IGNORE INTO budget_settings (id, salary_date) VALUES (1, 1);

	CREATE TABLE IF NOT EXISTS invoices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL REFERENCES projects(id),
		invoice_number TEXT NOT NULL UNIQUE,
		stage TEXT,
		issue_date TEXT NOT NULL,
		due_date TEXT,
		discount TEXT NOT NULL DEFAULT '0',
		tax_percentage TEXT NOT NULL DEFAULT '0',
		total_amount TEXT NOT NULL DEFAULT '0',
		status TEXT NOT NULL DEFAULT 'Unpaid',
		notes TEXT
	);

	CREATE TABLE IF NOT EXISTS invoice_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		invoice_id INTEGER NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
		description TEXT NOT NULL,
		quantity TEXT NOT NULL DEFAULT '1',
		rate TEXT NOT NULL DEFAULT '0',
		amount TEXT NOT NULL DEFAULT '0'
	);

	CREATE TABLE IF NOT EXISTS invoice_payments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		invoice_id INTEGER NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
		amount_paid TEXT NOT NULL,
		payment_date TEXT NOT NULL,
		payment_mode TEXT,
		transaction_reference TEXT
	);

	CREATE TABLE IF NOT EXISTS quotations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id INTEGER NOT NULL REFERENCES clients(id),
		project_id INTEGER REFERENCES projects(id),
		quotation_number TEXT NOT NULL UNIQUE,
		issue_date TEXT NOT NULL,
		valid_till TEXT,
		total_amount TEXT NOT NULL DEFAULT '0',
		status TEXT NOT NULL DEFAULT 'Draft',
		notes TEXT
	);

	CREATE TABLE IF NOT EXISTS quotation_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		quotation_id INTEGER NOT NULL REFERENCES quotations(id) ON DELETE CASCADE,
		description TEXT NOT NULL,
		quantity TEXT NOT NULL DEFAULT '1',
		rate TEXT NOT NULL DEFAULT '0',
		amount TEXT NOT NULL DEFAULT '0'
	);

	CREATE TABLE IF NOT EXISTS company_settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// withTx runs fn inside one SQL transaction: either every statement
// applies or none do.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", finance.ErrStore, err)
	}
	defer sqlTx.Rollback()

	if err := fn(sqlTx); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", finance.ErrStore, err)
	}
	return nil
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"transaction_tags", "invoice_payments", "invoice_items", "invoices",
		"quotation_items", "quotations", "time_logs", "transactions",
		"investment_lots", "investments", "budgets", "monthly_income",
		"projects", "tags", "clients", "categories", "accounts",
		"company_settings",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return storeErr(err)
		}
	}
	return nil
}

// =============================================================================
// SCAN / BIND HELPERS
// =============================================================================

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", finance.ErrStore, err)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func nullDate(d *finance.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func datePtr(v sql.NullString) *finance.Date {
	if !v.Valid || v.String == "" {
		return nil
	}
	d, err := finance.ParseDate(v.String)
	if err != nil {
		return nil
	}
	return &d
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func decimalPtr(v sql.NullString) *decimal.Decimal {
	if !v.Valid || v.String == "" {
		return nil
	}
	d := finance.MustDecimal(v.String)
	return &d
}
