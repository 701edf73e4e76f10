package google

// DefaultOAuthScopes are requested during authorization. They cover every
// tool the server registers.
var DefaultOAuthScopes = []string{
	// Calendar
	"https://www.googleapis.com/auth/calendar.events",
	"https://www.googleapis.com/auth/calendar.readonly",

	// Gmail
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/gmail.compose",
	"https://www.googleapis.com/auth/gmail.send",

	// Drive
	"https://www.googleapis.com/auth/drive",
	"https://www.googleapis.com/auth/drive.file",

	// Sheets and Docs
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/documents",

	// Tasks
	"https://www.googleapis.com/auth/tasks",
}
