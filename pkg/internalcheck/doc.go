// Package internalcheck holds repository policy tests.
//
// The tests load the module's packages with golang.org/x/tools/go/packages
// and inspect their syntax trees: no byte slice comparison with ==, no %x
// formatting in code that handles key material, and no mutable package
// state in the arithmetic and key packages. The package has no exported API.
package internalcheck
