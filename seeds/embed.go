// Package seeds embeds the idempotent reference-data seed files.
package seeds

import "embed"

//go:embed *.sql
var Files embed.FS
