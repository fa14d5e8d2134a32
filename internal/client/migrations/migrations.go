// Package migrations embeds the client-side goose migrations.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
