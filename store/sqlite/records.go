package sqlite

import (
	"context"
	"database/sql"

	"github.com/moneta/finance-engine/finance"
)

// =============================================================================
// ACCOUNTS
// =============================================================================

func (s *Store) CreateAccount(ctx context.Context, account *finance.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (name, account_type, opening_balance, notes)
		VALUES (?, ?, ?, ?)`,
		account.Name, string(account.Type), account.OpeningBalance.String(), nullString(account.Notes))
	if err != nil {
		return storeErr(err)
	}
	account.ID, _ = result.LastInsertId()
	return nil
}

func (s *Store) UpdateAccount(ctx context.Context, account *finance.Account) error {
	if account.ID == 0 {
		return finance.ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET name = ?, account_type = ?, opening_balance = ?, notes = ?
		WHERE id = ?`,
		account.Name, string(account.Type), account.OpeningBalance.String(), nullString(account.Notes), account.ID)
	if err != nil {
		return storeErr(err)
	}
	return rowsAffectedOr(result, finance.ErrAccountNotFound)
}

func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return storeErr(err)
	}
	return rowsAffectedOr(result, finance.ErrAccountNotFound)
}

func (s *Store) Account(ctx context.Context, id int64) (*finance.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accountLocked(ctx, id)
}

func (s *Store) accountLocked(ctx context.Context, id int64) (*finance.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, account_type, opening_balance, COALESCE(notes, '')
		FROM accounts WHERE id = ?`, id)

	account, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return account, nil
}

func (s *Store) Accounts(ctx context.Context) ([]finance.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, account_type, opening_balance, COALESCE(notes, '')
		FROM accounts ORDER BY name`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var accounts []finance.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*finance.Account, error) {
	var (
		account     finance.Account
		accountType string
		opening     string
	)
	if err := row.Scan(&account.ID, &account.Name, &accountType, &opening, &account.Notes); err != nil {
		return nil, err
	}
	account.Type = finance.AccountType(accountType)
	account.OpeningBalance = finance.MustDecimal(opening)
	return &account, nil
}

// =============================================================================
// CATEGORIES
// =============================================================================

func (s *Store) CreateCategory(ctx context.Context, category *finance.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (name, kind, is_investment, notes)
		VALUES (?, ?, ?, ?)`,
		category.Name, string(category.Kind), category.IsInvestment, nullString(category.Notes))
	if err != nil {
		return storeErr(err)
	}
	category.ID, _ = result.LastInsertId()
	return nil
}

func (s *Store) UpdateCategory(ctx context.Context, category *finance.Category) error {
	if category.ID == 0 {
		return finance.ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, kind = ?, is_investment = ?, notes = ?
		WHERE id = ?`,
		category.Name, string(category.Kind), category.IsInvestment, nullString(category.Notes), category.ID)
	if err != nil {
		return storeErr(err)
	}
	return rowsAffectedOr(result, finance.ErrCategoryNotFound)
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return storeErr(err)
	}
	return rowsAffectedOr(result, finance.ErrCategoryNotFound)
}

func (s *Store) Categories(ctx context.Context) ([]finance.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, kind, is_investment, COALESCE(notes, '')
		FROM categories ORDER BY name`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var categories []finance.Category
	for rows.Next() {
		var (
			category finance.Category
			kind     string
		)
		if err := rows.Scan(&category.ID, &category.Name, &kind, &category.IsInvestment, &category.Notes); err != nil {
			return nil, storeErr(err)
		}
		category.Kind = finance.CategoryKind(kind)
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// =============================================================================
// CLIENTS
// =============================================================================

func (s *Store) CreateClient(ctx context.Context, client *finance.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if client.Status == "" {
		client.Status = finance.ClientActive
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (name, status, email, phone, company, notes)
		VALUES (?, ?, ?, ?, ?, ?)`,
		client.Name, string(client.Status), nullString(client.Email),
		nullString(client.Phone), nullString(client.Company), nullString(client.Notes))
	if err != nil {
		return storeErr(err)
	}
	client.ID, _ = result.LastInsertId()
	return nil
}

func (s *Store) UpdateClient(ctx context.Context, client *finance.Client) error {
	if client.ID == 0 {
		return finance.ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `
		UPDATE clients SET name = ?, status = ?, email = ?, phone = ?, company = ?, notes = ?
		WHERE id = ?`,
		client.Name, string(client.Status), nullString(client.Email),
		nullString(client.Phone), nullString(client.Company), nullString(client.Notes), client.ID)
	if err != nil {
		return storeErr(err)
	}
	return rowsAffectedOr(result, finance.ErrClientNotFound)
}

func (s *Store) DeleteClient(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM clients WHERE id = ?", id)
	if err != nil {
		return storeErr(err)
	}
	return rowsAffectedOr(result, finance.ErrClientNotFound)
}

func (s *Store) Clients(ctx context.Context) ([]finance.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, status, COALESCE(email, ''), COALESCE(phone, ''),
		       COALESCE(company, ''), COALESCE(notes, '')
		FROM clients ORDER BY name`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var clients []finance.Client
	for rows.Next() {
		var (
			client finance.Client
			status string
		)
		if err := rows.Scan(&client.ID, &client.Name, &status, &client.Email,
			&client.Phone, &client.Company, &client.Notes); err != nil {
			return nil, storeErr(err)
		}
		client.Status = finance.ClientStatus(status)
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

// =============================================================================
// TAGS
// =============================================================================

// CreateTag inserts a tag, reusing an existing row with the same name.
func (s *Store) CreateTag(ctx context.Context, tag *finance.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createTagLocked(ctx, s.db, tag)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) createTagLocked(ctx context.Context, db execer, tag *finance.Tag) error {
	if _, err := db.ExecContext(ctx, "INSERT OR IGNORE INTO tags (name) VALUES (?)", tag.Name); err != nil {
		return storeErr(err)
	}
	if err := db.QueryRowContext(ctx, "SELECT id FROM tags WHERE name = ?", tag.Name).Scan(&tag.ID); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM tags WHERE id = ?", id)
	if err != nil {
		return storeErr(err)
	}
	return rowsAffectedOr(result, finance.ErrNotFound)
}

func (s *Store) Tags(ctx context.Context) ([]finance.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM tags ORDER BY name")
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var tags []finance.Tag
	for rows.Next() {
		var tag finance.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, storeErr(err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func rowsAffectedOr(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return storeErr(err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
