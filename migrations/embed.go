// Package migrations embeds the SQL schema of every supported database.
package migrations

import "embed"

// FS holds one directory of golang-migrate files per dialect / Un répertoire de migrations par dialecte
//
//go:embed sqlite/*.sql postgres/*.sql mysql/*.sql
var FS embed.FS
