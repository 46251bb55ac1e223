// Package web holds the embedded page templates.
package web

import "embed"

//go:embed tmpl/*.html
var TemplateFS embed.FS
