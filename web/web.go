// Package web embeds the dashboard page served at /.
package web

import "embed"

//go:embed static
var Assets embed.FS
