// Package sdk is the surface shared by typeloader hosts and the libraries
// they discover.
//
// Hosts register the Go types that .typelib manifests may bind to, and the
// dependency modules they provide:
//
//	_ = sdk.Register("metrics.Exporter", metrics.Exporter{})
//	_ = sdk.Default.RegisterType("metrics.Sink", sdk.TypeOf[metrics.Sink]())
//	_ = sdk.Provide("metrics", "1.4.0")
//
// Native Go plugins (-buildmode=plugin) list their type symbols instead:
//
//	var Types = []string{"Exporter", "NewCollector"}
//	var Exporter exporter
//	func NewCollector() *collector { return &collector{} }
package sdk
