// Package common holds the helpers every tool package shares: account
// resolution, argument parsing, result encoding and the instrumented handler
// wrapper.
package common
