package classify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/NepomukLorenz/auditrevenue"
	_ "github.com/mattn/go-sqlite3"
)

// Store persists confirmed account categories in a SQLite database so
// reruns over the same client skip the remote model. It also serves as
// the first link of a classifier chain.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the assignment database and ensures the
// schema exists.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS account_categories (
			account TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			classified_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Classify returns the stored category for the account, or
// ErrUnclassifiable on a miss so a chain can fall through.
func (s *Store) Classify(ctx context.Context, req Request) (auditrevenue.Category, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT category FROM account_categories WHERE account = ?`, req.Account).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return auditrevenue.CategoryUnknown, fmt.Errorf("account %s: %w", req.Account, ErrUnclassifiable)
	}
	if err != nil {
		return auditrevenue.CategoryUnknown, fmt.Errorf("lookup account %s: %w", req.Account, err)
	}
	category, ok := auditrevenue.ParseCategory(raw)
	if !ok {
		return auditrevenue.CategoryUnknown, fmt.Errorf("account %s: stored category %q is not in the taxonomy", req.Account, raw)
	}
	return category, nil
}

// Save records or replaces the category of one account.
func (s *Store) Save(ctx context.Context, account, name string, category auditrevenue.Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO account_categories (account, name, category) VALUES (?, ?, ?)
		ON CONFLICT(account) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			classified_at = CURRENT_TIMESTAMP`,
		account, name, string(category))
	if err != nil {
		return fmt.Errorf("save account %s: %w", account, err)
	}
	return nil
}

// Training returns all stored name to category assignments, the data a
// Bayes classifier trains on. Rows with categories outside the taxonomy
// are skipped.
func (s *Store) Training(ctx context.Context) (map[string]auditrevenue.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, category FROM account_categories`)
	if err != nil {
		return nil, fmt.Errorf("load training data: %w", err)
	}
	defer rows.Close()

	training := make(map[string]auditrevenue.Category)
	for rows.Next() {
		var name, raw string
		if err := rows.Scan(&name, &raw); err != nil {
			return nil, fmt.Errorf("scan training row: %w", err)
		}
		if category, ok := auditrevenue.ParseCategory(raw); ok {
			training[name] = category
		}
	}
	return training, rows.Err()
}
