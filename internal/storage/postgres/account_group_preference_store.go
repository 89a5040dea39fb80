package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"zenith-sync/internal/storage"
)

// AccountGroupPreferenceStore implements storage.AccountGroupPreferenceStore
// using PostgreSQL. The persisted key is kept as JSONB in its saved form.
type AccountGroupPreferenceStore struct {
	pool *Pool
}

// NewAccountGroupPreferenceStore creates a new AccountGroupPreferenceStore.
func NewAccountGroupPreferenceStore(pool *Pool) *AccountGroupPreferenceStore {
	return &AccountGroupPreferenceStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AccountGroupPreferenceStore = (*AccountGroupPreferenceStore)(nil)

// Save inserts or replaces the preference with p.Name.
func (s *AccountGroupPreferenceStore) Save(ctx context.Context, p *storage.AccountGroupPreference) error {
	if err := p.Validate(); err != nil {
		return err
	}
	key, err := json.Marshal(p.Key)
	if err != nil {
		return fmt.Errorf("marshal persisted key: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO account_group_preferences (name, persisted_key, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
		SET persisted_key = EXCLUDED.persisted_key,
		    updated_at = EXCLUDED.updated_at
	`, p.Name, key, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save account group preference: %w", err)
	}
	return nil
}

// Get retrieves a preference by name. Returns ErrNotFound if not exists.
func (s *AccountGroupPreferenceStore) Get(ctx context.Context, name string) (*storage.AccountGroupPreference, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT name, persisted_key, updated_at
		FROM account_group_preferences
		WHERE name = $1
	`, name)

	p, err := scanAccountGroupPreference(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get account group preference: %w", err)
	}
	return p, nil
}

// List returns every preference ordered by name.
func (s *AccountGroupPreferenceStore) List(ctx context.Context) ([]*storage.AccountGroupPreference, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, persisted_key, updated_at
		FROM account_group_preferences
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list account group preferences: %w", err)
	}
	defer rows.Close()

	var prefs []*storage.AccountGroupPreference
	for rows.Next() {
		p, err := scanAccountGroupPreference(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account group preference: %w", err)
		}
		prefs = append(prefs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account group preferences: %w", err)
	}
	return prefs, nil
}

// Delete removes a preference. Returns ErrNotFound if not exists.
func (s *AccountGroupPreferenceStore) Delete(ctx context.Context, name string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM account_group_preferences WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete account group preference: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanAccountGroupPreference scans a single row into AccountGroupPreference.
func scanAccountGroupPreference(row pgx.Row) (*storage.AccountGroupPreference, error) {
	var p storage.AccountGroupPreference
	var key []byte

	if err := row.Scan(&p.Name, &key, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(key, &p.Key); err != nil {
		return nil, fmt.Errorf("unmarshal persisted key: %w", err)
	}
	return &p, nil
}
