// Package typeloader provides the command-line interface for the typeloader
// tool. It configures subcommands (scan, watch, formats, capabilities, etc.),
// parses flags, and executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/typeloader/typeloader/cmd/typeloader"
//	func main() { typeloader.Execute() }
package typeloader
