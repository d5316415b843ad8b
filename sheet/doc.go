// Package sheet holds the page level context the editor works in: systems of
// staves each owning a symbol graph, the glyph index, the staff-free pixel
// source, the scale, and the ordered processing steps impacted by edits.
//
// It also provides Broker, the selection publication service the editor
// notifies after every gesture.
package sheet
