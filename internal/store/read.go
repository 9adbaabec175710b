package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/matcher/internal/predicate"
	"github.com/roach88/matcher/internal/sqlgen"
)

// Find returns the ids of the objects of the named class matching p,
// in ascending id order. Matching happens entirely in SQL.
func (s *Store) Find(ctx context.Context, className string, p *predicate.Predicate) ([]string, error) {
	query, err := s.SelectSQL(className, p)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}

	rows, err := s.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", className, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("find %s: %w", className, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find %s: %w", className, err)
	}
	return ids, nil
}

// SelectSQL returns the statement Find executes for p.
func (s *Store) SelectSQL(className string, p *predicate.Predicate) (string, error) {
	class, err := s.schema.Class(className)
	if err != nil {
		return "", err
	}
	query, err := s.compiler.Select(class, p)
	if err != nil {
		return "", fmt.Errorf("%s: %w", className, err)
	}
	return query, nil
}

// Load reads every object of the named class back as predicate.Fields,
// ordered by id. Column values are decoded by attribute type and
// collections hold item ids.
func (s *Store) Load(ctx context.Context, className string) ([]predicate.Fields, error) {
	class, err := s.schema.Class(className)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	cols := []string{"`id`"}
	scalars := class.Scalars()
	for _, a := range scalars {
		if a.JSONKey == "id" {
			continue
		}
		cols = append(cols, sqlgen.QuoteIdent(a.JSONKey))
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY `id` ASC",
		strings.Join(cols, ", "), sqlgen.QuoteIdent(class.Name))
	rows, err := s.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", className, err)
	}

	var objects []predicate.Fields
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			rows.Close()
			return nil, fmt.Errorf("load %s: %w", className, err)
		}

		fields := predicate.Fields{"id": decodeColumn("", values[0])}
		i := 1
		for _, a := range scalars {
			if a.JSONKey == "id" {
				fields[a.ModelKey] = fields["id"]
				continue
			}
			fields[a.ModelKey] = decodeColumn(a.Type, values[i])
			i++
		}
		objects = append(objects, fields)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("load %s: %w", className, err)
	}
	rows.Close()

	for _, a := range class.Collections() {
		items, err := s.loadItems(ctx, s.namer(class.Name, a.ItemClass))
		if err != nil {
			return nil, fmt.Errorf("load %s: attribute %s: %w", className, a, err)
		}
		for _, obj := range objects {
			id, _ := obj["id"].(string)
			obj[a.ModelKey] = items[id]
		}
	}
	return objects, nil
}

// loadItems returns join table values grouped by owner id.
func (s *Store) loadItems(ctx context.Context, table string) (map[string][]any, error) {
	query := fmt.Sprintf("SELECT `id`, `value` FROM %s ORDER BY `id` ASC, `value` ASC", sqlgen.QuoteIdent(table))
	rows, err := s.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[string][]any)
	for rows.Next() {
		var id, value string
		if err := rows.Scan(&id, &value); err != nil {
			return nil, err
		}
		items[id] = append(items[id], value)
	}
	return items, rows.Err()
}

// Count returns the number of objects stored for the named class.
func (s *Store) Count(ctx context.Context, className string) (int, error) {
	class, err := s.schema.Class(className)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", sqlgen.QuoteIdent(class.Name))
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", className, err)
	}
	return n, nil
}
