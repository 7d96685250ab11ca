// Package migrations embeds the SQL schema migrations so the binary
// can initialize storage without external files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
