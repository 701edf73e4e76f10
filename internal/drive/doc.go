// Package drive wraps the Google Drive API for the file tools.
//
// Besides listing, metadata, folder creation and plain-text uploads, ReadText
// extracts text from a file: Google Docs export as plain text, Google Sheets
// as CSV, text files are downloaded as-is and Excel workbooks are decoded
// sheet by sheet to CSV. Extracted text is capped at MaxTextBytes.
package drive
