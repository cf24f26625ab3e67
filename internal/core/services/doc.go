// Package services implements the driving port interfaces.
// Services contain the reference resolution logic and orchestrate
// calls to driven ports (decoder, repository, policy, stores).
//
// Services are pure Go with no CGO or external dependencies.
package services
