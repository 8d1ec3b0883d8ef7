// Package engine runs discovery: it walks a plugin directory, loads each
// candidate library once per identity on a bounded worker pool, and filters
// the loaded types by capability. This package is internal; external
// consumers should use the facade in pkg/core.
package engine
