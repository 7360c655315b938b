// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// TileVertexShader transforms terrain tile vertices by the tile's model translation.
//
//go:embed tile.vert
var TileVertexShader string

// TileFragmentShader shades tiles with one directional light and per-tile opacity.
//
//go:embed tile.frag
var TileFragmentShader string
