package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/matcher/internal/schema"
	"github.com/roach88/matcher/internal/sqlgen"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on join table values
const currentSchemaVersion = 1

// Store persists model objects in SQLite so compiled predicates can be
// executed against them.
type Store struct {
	db       *sql.DB
	schema   *schema.Schema
	namer    schema.JoinTableNamer
	compiler *sqlgen.Compiler
	strict   bool
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithJoinTableNamer overrides schema.TableNameForJoin for join tables.
// The same namer is handed to the store's compiler.
func WithJoinTableNamer(namer schema.JoinTableNamer) Option {
	return func(s *Store) {
		if namer != nil {
			s.namer = namer
		}
	}
}

// WithStrictStartsWith makes Find fail at compile time on startsWith.
func WithStrictStartsWith() Option {
	return func(s *Store) {
		s.strict = true
	}
}

// WithLogger sets the logger used for executed statements.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open creates or opens a SQLite database at the given path and creates a
// table per class in sch plus one join table per collection attribute.
// Classes previously registered in the database are merged into sch's view.
// sch may be nil to reopen a database using only its registered classes.
//
// This function is idempotent - safe to call multiple times.
func Open(path string, sch *schema.Schema, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{
		db:     db,
		schema: schema.NewSchema(),
		namer:  schema.TableNameForJoin,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	compilerOpts := []sqlgen.Option{sqlgen.WithJoinTableNamer(s.namer)}
	if s.strict {
		compilerOpts = append(compilerOpts, sqlgen.WithStrictStartsWith())
	}
	s.compiler = sqlgen.NewCompiler(compilerOpts...)

	ctx := context.Background()
	if err := s.loadClasses(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if sch != nil {
		for _, name := range sch.Order {
			if err := s.Register(ctx, sch.Classes[name]); err != nil {
				db.Close()
				return nil, err
			}
		}
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Schema returns the classes known to the store.
func (s *Store) Schema() *schema.Schema {
	return s.schema
}

// Query executes a query and returns the resulting rows.
// Callers are responsible for closing the returned rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	s.logger.Debug("executing query", "sql", query)
	return s.db.QueryContext(ctx, query, args...)
}

// Register creates the class table and its join tables and records the
// class definition. Re-registering a class is a no-op for existing tables;
// new scalar attributes are not added to an existing table.
func (s *Store) Register(ctx context.Context, class *schema.Class) error {
	def, err := marshalClass(class)
	if err != nil {
		return fmt.Errorf("register %s: %w", class.Name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("register %s: %w", class.Name, err)
	}
	defer tx.Rollback()

	for _, ddl := range s.classDDL(class) {
		s.logger.Debug("applying ddl", "class", class.Name, "sql", ddl)
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("register %s: %w", class.Name, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO classes (name, definition) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET definition = excluded.definition
	`, class.Name, def)
	if err != nil {
		return fmt.Errorf("register %s: %w", class.Name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("register %s: %w", class.Name, err)
	}
	s.schema.Add(class)
	return nil
}

// classDDL returns the statements creating a class table and its join tables.
func (s *Store) classDDL(class *schema.Class) []string {
	cols := []string{"`id` TEXT PRIMARY KEY"}
	for _, a := range class.Scalars() {
		if a.JSONKey == "id" {
			continue
		}
		cols = append(cols, fmt.Sprintf("%s %s", sqlgen.QuoteIdent(a.JSONKey), columnType(a.Type)))
	}

	stmts := []string{fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		sqlgen.QuoteIdent(class.Name), strings.Join(cols, ", "))}

	for _, a := range class.Collections() {
		table := s.namer(class.Name, a.ItemClass)
		stmts = append(stmts,
			fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (`id` TEXT NOT NULL, `value` TEXT NOT NULL, PRIMARY KEY (`id`, `value`))",
				sqlgen.QuoteIdent(table)),
			fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (`value`)",
				sqlgen.QuoteIdent("idx_"+table+"_value"), sqlgen.QuoteIdent(table)),
		)
	}
	return stmts
}

func columnType(t schema.AttributeType) string {
	switch t {
	case schema.TypeNumber, schema.TypeDate:
		return "NUMERIC"
	case schema.TypeBool:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

// loadClasses restores class definitions registered by earlier sessions.
func (s *Store) loadClasses(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, "SELECT name, definition FROM classes ORDER BY name ASC")
	if err != nil {
		return fmt.Errorf("load classes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, def string
		if err := rows.Scan(&name, &def); err != nil {
			return fmt.Errorf("load classes: %w", err)
		}
		class, err := unmarshalClass(def)
		if err != nil {
			return fmt.Errorf("load class %s: %w", name, err)
		}
		s.schema.Add(class)
	}
	return rows.Err()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates the metadata tables and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 adds value indexes to join tables created before v1.
// Join tables are the tables with exactly the columns (id, value).
func migrateToV1(db *sql.DB) error {
	rows, err := db.Query(`
		SELECT m.name FROM sqlite_master m
		WHERE m.type = 'table'
		  AND (SELECT COUNT(*) FROM pragma_table_info(m.name)) = 2
		  AND EXISTS (SELECT 1 FROM pragma_table_info(m.name) WHERE name = 'value')
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return fmt.Errorf("migrate to v1: %w", err)
		}
		tables = append(tables, name)
	}
	rows.Close()

	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (`value`)",
			sqlgen.QuoteIdent("idx_"+table+"_value"), sqlgen.QuoteIdent(table)))
		if err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
