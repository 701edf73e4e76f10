// Package gmail wraps the Gmail API for the mail tools.
//
// Threads are listed with a Gmail search query and archived, restored or
// relabeled in bulk. Messages are returned with their common headers and the
// plain-text body; HTML-only messages fall back to the HTML part. Outgoing
// mail is plain text with RFC 2047 encoded subjects.
package gmail
