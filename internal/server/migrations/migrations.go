// Package migrations embeds the goose SQL migrations for the server schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
