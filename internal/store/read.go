package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/embody/internal/params"
	"github.com/roach88/embody/internal/value"
)

// Get returns the value bound to name.
func (s *Store) Get(ctx context.Context, name string) (value.Value, bool, error) {
	var encoded string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM params WHERE name = ?`, name).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", name, err)
	}

	v, err := value.ParseJSON([]byte(encoded))
	if err != nil {
		return nil, false, fmt.Errorf("get %q: decode value: %w", name, err)
	}
	return v, true, nil
}

// Names returns every bound name in binary order.
// Returns an empty slice (not nil) for an empty store.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM params ORDER BY name COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("query names: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate names: %w", err)
	}
	return names, nil
}

// Snapshot reads the whole parameter set into a params.Map.
func (s *Store) Snapshot(ctx context.Context) (params.Map, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, value FROM params ORDER BY name COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("query params: %w", err)
	}
	defer rows.Close()

	out := params.Map{}
	for rows.Next() {
		var name, encoded string
		if err := rows.Scan(&name, &encoded); err != nil {
			return nil, fmt.Errorf("scan param: %w", err)
		}
		v, err := value.ParseJSON([]byte(encoded))
		if err != nil {
			return nil, fmt.Errorf("param %q: decode value: %w", name, err)
		}
		out[name] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate params: %w", err)
	}
	return out, nil
}
