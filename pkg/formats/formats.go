// Package formats provides parsers for geometry and image file formats.
//
// PLY (Polygon File Format) is implemented in ply.go. Parsers return plain
// arrays and leave splitting into points and faces to the caller. tga.go
// decodes Truevision TGA images, which the standard decoders do not cover.
package formats
