// Package domain defines the core entities of the reference resolver.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DocumentSourceLocation: Where a referenced file lives
//   - ReferenceNode: One document in the reference graph, with its Status
//   - ExchangeStructure / Model / Entity: Decoded exchange-file content
//   - LinkageRecord: A master/detail shape correspondence
//   - Run: A persisted resolution summary
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
