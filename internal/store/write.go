package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/matcher/internal/predicate"
	"github.com/roach88/matcher/internal/sqlgen"
)

// Insert stores an object of the named class, replacing any row with the
// same id. v is adapted with predicate.ObjectOf and must expose an "id".
// Scalar attributes are written to the class table and every collection
// attribute replaces the object's rows in its join table.
func (s *Store) Insert(ctx context.Context, className string, v any) error {
	class, err := s.schema.Class(className)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}

	obj := predicate.ObjectOf(v)
	if obj == nil {
		return fmt.Errorf("insert %s: nil object", className)
	}
	id, err := objectID(obj)
	if err != nil {
		return fmt.Errorf("insert %s: %w", className, err)
	}

	cols := []string{"`id`"}
	args := []any{id}
	for _, a := range class.Scalars() {
		if a.JSONKey == "id" {
			continue
		}
		raw, _ := obj.Lookup(a.ModelKey)
		val, err := columnValue(raw)
		if err != nil {
			return fmt.Errorf("insert %s %s: attribute %s: %w", className, id, a, err)
		}
		cols = append(cols, sqlgen.QuoteIdent(a.JSONKey))
		args = append(args, val)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert %s %s: %w", className, id, err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		sqlgen.QuoteIdent(class.Name), strings.Join(cols, ", "), placeholders)
	if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert %s %s: %w", className, id, err)
	}

	for _, a := range class.Collections() {
		table := sqlgen.QuoteIdent(s.namer(class.Name, a.ItemClass))
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE `id` = ?", table), id); err != nil {
			return fmt.Errorf("insert %s %s: attribute %s: %w", className, id, a, err)
		}

		raw, _ := obj.Lookup(a.ModelKey)
		items, ok := predicate.Sequence(predicate.Resolve(raw))
		if !ok {
			return fmt.Errorf("insert %s %s: attribute %s: expected a collection, got %T", className, id, a, raw)
		}
		for _, item := range items {
			value, err := itemValue(item)
			if err != nil {
				return fmt.Errorf("insert %s %s: attribute %s: %w", className, id, a, err)
			}
			_, err = tx.ExecContext(ctx,
				fmt.Sprintf("INSERT OR IGNORE INTO %s (`id`, `value`) VALUES (?, ?)", table), id, value)
			if err != nil {
				return fmt.Errorf("insert %s %s: attribute %s: %w", className, id, a, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert %s %s: %w", className, id, err)
	}
	s.logger.Debug("inserted object", "class", className, "id", id)
	return nil
}

// Delete removes an object and its join table rows. Deleting a missing id
// is not an error.
func (s *Store) Delete(ctx context.Context, className, id string) error {
	class, err := s.schema.Class(className)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", className, id, err)
	}
	defer tx.Rollback()

	tables := []string{class.Name}
	for _, a := range class.Collections() {
		tables = append(tables, s.namer(class.Name, a.ItemClass))
	}
	for _, table := range tables {
		stmt := fmt.Sprintf("DELETE FROM %s WHERE `id` = ?", sqlgen.QuoteIdent(table))
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("delete %s %s: %w", className, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete %s %s: %w", className, id, err)
	}
	return nil
}

func objectID(obj predicate.Object) (string, error) {
	raw, ok := obj.Lookup("id")
	if !ok {
		return "", fmt.Errorf("object has no id")
	}
	switch id := predicate.Resolve(raw).(type) {
	case string:
		if id == "" {
			return "", fmt.Errorf("object has an empty id")
		}
		return id, nil
	case nil:
		return "", fmt.Errorf("object has a nil id")
	default:
		return fmt.Sprint(id), nil
	}
}
