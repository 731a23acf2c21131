// Package templates embeds the reference documents the generator ships with.
package templates

import _ "embed"

// Anchors is the default field -> anchor table
//
//go:embed anchors.yaml
var Anchors []byte

// ReferencePage is the detail page used when no page template path is configured
//
//go:embed pagina_producto.html
var ReferencePage string

// DefaultCard is the token card filled when no card template has been loaded
//
//go:embed tarjeta_default.html
var DefaultCard string
