// Package server holds the state shared by the MCP tools and the HTTP
// surface of the streamable-http transport.
//
// ServerContext caches one API client per account and service. Clients are
// authorized through the google.Authenticator unless a test supplies its own
// client options. HTTPServer mounts the MCP endpoint next to the one-time
// OAuth flow (/oauth/start, /oauth/callback) and the health checks.
// MetricsServer exposes the Prometheus registry on a separate address.
package server
