// Package db embeds the database schema applied at startup.
package db

import _ "embed"

// Schema contains the DDL for all POS tables. Statements are idempotent so
// the schema can be re-applied against an existing database.
//
//go:embed migrations/001_schema.sql
var Schema string
