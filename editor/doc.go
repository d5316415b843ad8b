// Package editor is the interactive editing controller of a sheet.
//
// Every public operation of InterController is a gesture: it builds a
// uitask.List, performs it (do or undo), publishes the resulting selection,
// impacts the processing steps downstream of the touched kinds and, on the
// UI executor, records the list in the undo history.
//
// Gestures are serialised. Once Run is started they are processed one at a
// time by a single worker goroutine; before that they run inline under a
// mutex. Blocking collaborators (staff prompt, confirmation, OCR) are called
// from that worker.
//
// The SIG and the glyph index of the sheet are mutated only by the tasks of
// a performed list, so that undo and redo can replay them.
package editor
