package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/embody/internal/params"
	"github.com/roach88/embody/internal/value"
)

// ErrReadOnly is returned by writes on a store opened with OpenReadOnly.
var ErrReadOnly = errors.New("parameter store is read-only")

// Put binds name to v, replacing any previous binding.
func (s *Store) Put(ctx context.Context, name string, v value.Value) error {
	if s.readOnly {
		return fmt.Errorf("put %q: %w", name, ErrReadOnly)
	}
	encoded, err := marshalValue(name, v)
	if err != nil {
		return fmt.Errorf("put %q: %w", name, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO params (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value
	`, name, encoded)
	if err != nil {
		return fmt.Errorf("put %q: %w", name, err)
	}
	return nil
}

// PutAll binds every name of m in one transaction. Either all bindings
// are written or none are.
func (s *Store) PutAll(ctx context.Context, m params.Map) error {
	if s.readOnly {
		return fmt.Errorf("put all: %w", ErrReadOnly)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO params (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value
	`)
	if err != nil {
		return fmt.Errorf("prepare put: %w", err)
	}
	defer stmt.Close()

	for _, name := range m.Names() {
		encoded, err := marshalValue(name, m[name])
		if err != nil {
			return fmt.Errorf("put %q: %w", name, err)
		}
		if _, err := stmt.ExecContext(ctx, name, encoded); err != nil {
			return fmt.Errorf("put %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Delete removes the binding of name and reports whether it existed.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	if s.readOnly {
		return false, fmt.Errorf("delete %q: %w", name, ErrReadOnly)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM params WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("delete %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %q: %w", name, err)
	}
	return n > 0, nil
}

// marshalValue converts a parameter value to its stored JSON TEXT.
func marshalValue(name string, v value.Value) (string, error) {
	if name == "" {
		return "", errors.New("parameter name must not be empty")
	}
	if v == nil {
		v = value.Null{}
	}
	data, err := value.MarshalJSON(v)
	if err != nil {
		return "", fmt.Errorf("marshal value: %w", err)
	}
	return string(data), nil
}
