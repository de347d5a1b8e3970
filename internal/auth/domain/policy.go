package domain

import "time"

// RateLimitRule is a quota of MaxRequests per fixed Window.
type RateLimitRule struct {
	MaxRequests int
	Window      time.Duration
}

// RateLimitPolicy maps roles to their request quotas. It is built once at
// startup and never mutated afterwards.
type RateLimitPolicy struct {
	rules map[Role]RateLimitRule
}

// NewRateLimitPolicy builds a policy from per-role rules. The guest rule is
// mandatory because it doubles as the fallback tier.
func NewRateLimitPolicy(admin, user, guest RateLimitRule) RateLimitPolicy {
	return RateLimitPolicy{
		rules: map[Role]RateLimitRule{
			RoleAdmin: admin,
			RoleUser:  user,
			RoleGuest: guest,
		},
	}
}

// RuleFor returns the rule for a role. Unrecognized roles get the guest
// tier, the most restrictive one.
func (p RateLimitPolicy) RuleFor(role Role) RateLimitRule {
	switch role {
	case RoleAdmin, RoleUser, RoleGuest:
		return p.rules[role]
	default:
		return p.rules[RoleGuest]
	}
}

// RoleSet is the set of roles allowed to perform an operation. Declared at
// route-registration time, immutable afterwards.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Allows reports whether the role is a member of the set. It is a pure
// predicate: no I/O, no mutation, safe for concurrent use.
func (s RoleSet) Allows(role Role) bool {
	_, ok := s[role]
	return ok
}
