// Package google_tools provides MCP tools for Google OAuth authentication.
//
// The OAuth flow:
//  1. A tool call fails because the account has no token
//  2. google_get_auth_url returns the consent URL
//  3. The user visits the URL, grants access and copies the code
//  4. google_save_auth_code exchanges the code and stores the token
//
// Tokens live in memory only. The save tool prints the token in the
// GOOGLE_TOKEN_JSON layout so it survives a restart when put in the
// environment.
package google_tools
