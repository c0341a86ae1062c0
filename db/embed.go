// Package db embeds the SQL migration files so the binary can migrate
// its own schema at startup.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
