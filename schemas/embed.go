// Package schemas provides the embedded SQL schema of the remote store.
package schemas

import "embed"

// Migrations contains all SQL migration files.
//
//go:embed migrations/*.sql
var Migrations embed.FS
