// Package migrations embeds the SQL migrations for the Postgres snapshot
// store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
