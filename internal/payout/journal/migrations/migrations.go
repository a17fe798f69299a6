// Package migrations embeds the payout journal goose migration files.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
