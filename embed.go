package marketplaceworkflow

import "embed"

// MigrationsFS carries the schema migrations so deployments need no
// migrations directory on disk.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS
