/*
curve.go - Vesting curve interface and registry

PURPOSE:
  A VestingCurve is the strategy that turns post-cliff progress into
  vested units. The vesting package registers one implementation per
  CurveType at init; callers dispatch through the registry instead of
  branching on the tag.

HOW IT WORKS:
  1. vesting/curves.go defines Linear, Backloaded, Frontloaded, CliffHeavy
  2. vesting registers them on init()
  3. VestedUnits looks the curve up by tag and calls Vest

CONTRACT:
  Vest is only called with span > 0 and 0 <= done < span. The cliff gate,
  the zero-span guard and the final clamp to [0, total] belong to the
  caller, so implementations stay one-line formulas.

SEE ALSO:
  - vesting/vesting.go: VestedUnits, the only caller
  - types.go: CurveType constants
*/
package generic

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// =============================================================================
// VESTING CURVE - Interface for how granted units become owned
// =============================================================================

type VestingCurve interface {
	// Type returns the tag this curve is registered under.
	Type() CurveType

	// Vest returns the units vested after done of span post-cliff periods.
	Vest(total, done, span decimal.Decimal) decimal.Decimal

	// Description is a one-line human summary for discovery endpoints.
	Description() string
}

// =============================================================================
// CURVE REGISTRY
// =============================================================================

var (
	curveRegistry = make(map[CurveType]VestingCurve)
	registryMu    sync.RWMutex
)

// RegisterCurve adds a curve to the global registry.
// Call this from the vesting package init() function.
func RegisterCurve(c VestingCurve) {
	registryMu.Lock()
	defer registryMu.Unlock()
	curveRegistry[c.Type()] = c
}

// LookupCurve finds a registered curve by tag.
// Returns nil if not found.
func LookupCurve(t CurveType) VestingCurve {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return curveRegistry[t]
}

// ListCurves returns all registered curves sorted by tag.
func ListCurves() []VestingCurve {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]VestingCurve, 0, len(curveRegistry))
	for _, c := range curveRegistry {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Type() < result[j].Type() })
	return result
}
