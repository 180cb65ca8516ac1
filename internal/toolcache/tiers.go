// Package toolcache memoizes calls against the note-index tool surface.
// Each tool name maps to a TTL tier, concurrent identical calls are
// coalesced onto a single underlying invocation, and entries can be
// invalidated per tool or per affected note path.
package toolcache

import "time"

// Tier classifies how quickly a tool's result goes stale.
type Tier int

// Cache tiers, ordered from most to least volatile.
const (
	// TierBypass tools have side effects or unknown names; every call
	// goes straight to the invoker and nothing is stored.
	TierBypass Tier = iota

	// TierSession tools return structural metadata that is stable for
	// the lifetime of the process; entries never expire on their own.
	TierSession

	// TierShort tools reflect link-graph and search state that changes
	// with every note edit.
	TierShort

	// TierMedium tools reflect slower-moving aggregate state such as
	// vault health.
	TierMedium
)

// Tier TTLs. Session entries carry no deadline at all.
const (
	ShortTTL  = 5 * time.Second
	MediumTTL = 30 * time.Second
)

// tierByTool fixes the tier for every known tool name. This table is a
// protocol contract with the index tool surface: renaming a tool there
// without updating it here silently downgrades the tool to bypass.
var tierByTool = map[string]Tier{
	"capabilities": TierSession,

	"search":    TierShort,
	"backlinks": TierShort,
	"related":   TierShort,
	"tags":      TierShort,

	"stats":  TierMedium,
	"health": TierMedium,

	"reindex":      TierBypass,
	"insert_links": TierBypass,
}

// Classify returns the tier for a tool name. Unknown names classify as
// bypass so that freshness wins over staleness for tools added to the
// index surface before this table learns about them.
func Classify(tool string) Tier {
	if t, ok := tierByTool[tool]; ok {
		return t
	}
	return TierBypass
}

// TTL returns the entry lifetime for a tier. Zero means the entry never
// expires (session tier) or is never stored (bypass).
func (t Tier) TTL() time.Duration {
	switch t {
	case TierShort:
		return ShortTTL
	case TierMedium:
		return MediumTTL
	default:
		return 0
	}
}
