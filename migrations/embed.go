// AngelaMos | 2026
// embed.go

// Package migrations holds the versioned PostgreSQL schema, embedded so the
// binary can migrate without the source tree.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
