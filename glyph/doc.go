// Package glyph manages pixel regions ("glyphs") that back recognized symbols.
//
// A Buffer is a binary image positioned in sheet coordinates. Components
// extracts connected regions from a buffer, Merge fuses glyphs, and Index is
// the per-sheet registry of original glyphs that the editor updates when
// symbols are deleted.
//
// Glyphs are immutable once built: the pixel set, bounds and signature never
// change, so a glyph pointer can be shared by several symbols and by undo
// history safely.
//
// Errors:
//
//	ErrEmptyGlyph   - glyph built from no pixel.
//	ErrUnknownGlyph - index operation on a glyph it does not hold.
package glyph
