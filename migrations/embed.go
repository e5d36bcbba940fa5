// Package migrations embeds the SQL schema applied by pkg/database.
package migrations

import "embed"

// FS holds every NNN_name.sql file of this directory
//
//go:embed *.sql
var FS embed.FS
