// Package formlet implements the evaluation core of the form engine. A
// Formlet describes how to obtain a typed value interactively; Rebuild
// evaluates it against the previous Form generation (nil on first build),
// Render projects a Form into a layout.Node tree without mutating it, and
// Collect gathers the entered values or every validation Failure in one
// depth-first, left-to-right pass. Leaves obtain widget handles from the
// RebuildContext capability lookup and hand them to the next generation, so
// a rebuild without user edits never loses entered data.
package formlet
