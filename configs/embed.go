// Package configs provides the embedded configuration template for paperrag.
//
// The template is embedded at build time with go:embed so it ships in every
// distribution. `paperrag config init` writes it to ~/.paperrag/config.yaml
// as a starting point; unset fields fall back to built-in defaults and
// PAPERRAG_* environment variables override both (see internal/config).
package configs

import _ "embed"

// ConfigTemplate is the annotated starting configuration written by
// `paperrag config init`.
//
//go:embed config.example.yaml
var ConfigTemplate string
