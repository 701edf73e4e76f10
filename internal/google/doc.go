// Package google handles OAuth2 credentials for the Google APIs.
//
// The OAuth client configuration (GOOGLE_CREDENTIALS) and the user token
// (GOOGLE_TOKEN_JSON) are supplied from outside the process. Tokens live in a
// TokenStore keyed by account name; refreshed tokens are written back so
// every API client of an account shares one token.
package google
