// Package migrations embeds the PostgreSQL schema for the patient record store.
package migrations

import "embed"

// FS holds the numbered up/down SQL files.
//
//go:embed *.sql
var FS embed.FS
