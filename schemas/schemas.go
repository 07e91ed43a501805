// Package schemas встраивает JSON-схемы форм в бинарник.
package schemas

import "embed"

//go:embed forms
var SchemasFS embed.FS
