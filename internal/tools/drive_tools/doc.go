// Package drive_tools provides MCP tools for Google Drive: searching files,
// reading their text, uploading plain-text files and creating folders.
package drive_tools
