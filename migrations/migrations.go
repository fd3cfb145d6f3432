// Package migrations embeds the schema migrations for every store backend.
package migrations

import "embed"

// FS holds <backend>/NNNN_name.sql files.
//
//go:embed bigquery/*.sql postgres/*.sql sqlite/*.sql
var FS embed.FS
