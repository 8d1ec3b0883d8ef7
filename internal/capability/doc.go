// Package capability selects the loaded types that satisfy a Go interface.
//
// A type matches when it is concrete and either it or a pointer to it
// implements the interface. Matches can be instantiated through the
// library's factory or as zero values.
package capability
