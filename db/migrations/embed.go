// Package migrations embeds the goose SQL migrations so the binary can
// migrate its own schema on start-up.
package migrations

import "embed"

// FS holds every *.sql migration in this directory.
//
//go:embed *.sql
var FS embed.FS
