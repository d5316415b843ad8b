// Package uitask implements the reversible editing commands applied to a
// symbol graph, their grouping into atomic lists, the linear undo/redo
// history and the removal scenario that expands a deletion into a consistent
// closure.
//
// Every mutation of a SIG or of a glyph index made on behalf of the user goes
// through a Task, so that List.PerformUndo restores exactly the state found
// before List.PerformDo.
package uitask
