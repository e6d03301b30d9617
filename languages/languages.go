// Package languages embeds the hazard pattern-set YAML files shipped with
// the engine, keyed by language name (today: "php").
package languages

import "embed"

//go:embed *.yaml
var FS embed.FS
