// Package core provides a small, stable facade over typeloader's internal
// engine for programs embedding plugin discovery. It re-exports a narrow API
// surface so integrations can depend on a stable import path without
// importing internal packages.
//
// Example:
//
//	matches, err := core.LoadTypes[sdk.Plugin](ctx, "plugins", nil)
//	if err != nil { /* handle */ }
//	for _, m := range matches {
//		p, _ := core.Instantiate[sdk.Plugin](m)
//		fmt.Println(p.PluginName())
//	}
package core
