package migrations

import "embed"

// FS contains the embedded schema migrations of the local task board.
//
//go:embed *.sql
var FS embed.FS
