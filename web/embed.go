// Package web bundles the admin templates and static assets into the binary.
package web

import "embed"

//go:embed templates/layouts/*.html templates/partials/*.html templates/pages/*.html
var Templates embed.FS

//go:embed static/css static/js
var Static embed.FS
