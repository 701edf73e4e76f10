// Package accomplishments keeps a simple work log in a worksheet.
//
// Each accomplishment is one row with a generated ID, a date and a
// description, plus optional category, tags and notes. Reads and writes go
// through the sheets engine, so filters use its date coercion and edits only
// touch the cells that change.
package accomplishments
