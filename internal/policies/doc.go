// Package policies provides decorators for driven.DispositionPolicy.
//
// Each decorator wraps another policy and changes one decision:
//
//   - Exclude declines locations matching glob patterns
//   - AwaitMissing defers loadable locations whose file does not exist yet
//   - Throttle rate-limits OpenStream
//
// FromSettings assembles the default policy with the decorators enabled in
// domain.ResolverSettings.
package policies
