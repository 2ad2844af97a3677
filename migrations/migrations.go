package migrations

import "embed"

// Postgres holds the schema migrations, applied in file name order.
//
//go:embed postgres/*.sql
var Postgres embed.FS

const PostgresDir = "postgres"
