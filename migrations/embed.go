// Package migrations embeds the goose SQL migrations. The server applies
// them at boot; the integration tests apply them before touching the schema.
package migrations

import "embed"

// FS holds every *.sql migration, in goose's numbered order.
//
//go:embed *.sql
var FS embed.FS
