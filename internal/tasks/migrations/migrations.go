// Package migrations holds the goose migrations for the task store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
