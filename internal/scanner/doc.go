// Package scanner enumerates candidate library files under a root directory.
// It only selects paths; loading happens in package library.
package scanner
