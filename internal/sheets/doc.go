// Package sheets implements the spreadsheet query engine and formula-safe
// writer on top of the Google Sheets API.
//
// A worksheet is read in full on every call and turned into a Table: the
// header row becomes the Schema, every following row becomes a Row. Queries
// are expressed as Clauses combined with AND, evaluated by an Evaluator that
// coerces cell text to dates, numbers or strings in that order of priority,
// then shaped by Project.
//
// Writes never replace whole rows. The Writer addresses individual cells so
// that formula cells in columns the caller did not name stay untouched:
//
//	engine := sheets.NewEngine(client)
//	ref := sheets.SheetRef{SpreadsheetID: id, Worksheet: "Tasks"}
//
//	res, err := engine.Query(ctx, ref, sheets.Query{
//	    Filters: []sheets.Clause{{Column: "Status", Operator: sheets.OpEqual, Value: "open"}},
//	    Sort:    &sheets.SortSpec{Column: "Due Date"},
//	})
//
//	_, err = engine.UpdateByID(ctx, ref, "Task ID", "42", sheets.UpdateSet{"Status": "done"})
//
// Nothing is cached. The spreadsheet is the only source of truth.
package sheets
