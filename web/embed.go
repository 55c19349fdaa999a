// Package web holds the dashboard page, its htmx partials and the static
// assets, compiled into the binary.
package web

import "embed"

//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS is served under /static/.
//go:embed static/*
var StaticFS embed.FS
