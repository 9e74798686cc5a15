// Package web holds the browser front-end served at /.
package web

import "embed"

//go:embed static
var Files embed.FS
