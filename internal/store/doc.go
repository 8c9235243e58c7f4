// Package store implements questload.QuestStore for PostgreSQL and SQLite.
//
// Each store owns a single database connection for its whole lifetime and
// runs the English inserts and the Japanese updates in one transaction each.
// Statements are never retried.
package store
