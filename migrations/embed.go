// Package migrations carries the schema of the results database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
