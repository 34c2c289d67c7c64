package ports

import "context"

// Feature flag names evaluated by the application.
const (
	// FlagDeathLookup enables resolving Character.Death from the deaths endpoint.
	FlagDeathLookup = "death_lookup"
)

// FeatureFlags evaluates boolean feature toggles.
// Implementations return defaultValue for unknown flags.
type FeatureFlags interface {
	IsEnabled(ctx context.Context, flag string, defaultValue bool) bool
}

// StaticFlags is a FeatureFlags backed by a fixed map.
type StaticFlags map[string]bool

// IsEnabled implements FeatureFlags.
func (f StaticFlags) IsEnabled(_ context.Context, flag string, defaultValue bool) bool {
	if v, ok := f[flag]; ok {
		return v
	}

	return defaultValue
}
