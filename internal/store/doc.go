// Package store provides SQLite-backed storage for model objects so that
// compiled predicates can be executed as queries.
//
// Every class gets a table named after the class with an `id` TEXT primary
// key and one column per scalar attribute, named by its JSON key. Every
// collection attribute gets a join table named by the JoinTableNamer
// (owner + item class by default) holding (`id`, `value`) pairs, where value
// is the id of a collection item.
//
// Values are stored in the same representation sqlgen.Escape renders:
//   - bool: INTEGER 1/0
//   - date: epoch seconds with millisecond precision
//   - string: TEXT
//
// Class definitions are recorded in the classes table, so a database can be
// reopened without the schema source.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
