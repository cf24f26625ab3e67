package policies

import (
	"github.com/custodia-labs/stepref/internal/core/domain"
	"github.com/custodia-labs/stepref/internal/core/ports/driven"
	"github.com/custodia-labs/stepref/internal/core/services"
)

// FromSettings builds the default policy and applies the configured decorators.
// Exclusion is outermost so excluded files are never stat'ed or opened.
func FromSettings(s domain.ResolverSettings) (driven.DispositionPolicy, error) {
	var policy driven.DispositionPolicy = services.NewDefaultPolicy(s.Policy.Mechanism, s.Policy.Extensions...)

	if s.Fetch.RatePerSecond > 0 {
		policy = NewThrottle(policy, s.Fetch.RatePerSecond, s.Fetch.Burst)
	}
	if s.Policy.DeferMissing {
		policy = NewAwaitMissing(policy)
	}
	if len(s.Policy.Exclude) > 0 {
		exclude, err := NewExclude(policy, s.Policy.Exclude...)
		if err != nil {
			return nil, err
		}
		policy = exclude
	}
	return policy, nil
}
