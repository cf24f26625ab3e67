// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the resolver to function:
//
//   - Decoder: Turns a character stream into an exchange structure
//   - Repository: Owns decoded models and hands out temporary views
//   - SchemaInstance / EntityQuery: Read-only queries over merged models
//   - DispositionPolicy: Decides whether and how a location is resolved
//
// # Optional Interfaces
//
// These can be nil - the resolver degrades gracefully:
//
//   - ActivityMonitor: Observes load attempts and discoveries
//   - RunStore: Persists resolution summaries
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, decoder, or policy package
package driven
