// Package research estimates the knowledge cost and time of researching
// developments in a given order.
//
// Researching a development with s steps after t steps already researched
// costs BaseCost × ScalePerStep^t × (ScalePerStep^s − 1) / (ScalePerStep − 1).
package research

import (
	"fmt"
	"math"

	"github.com/tatianab/spice-planner/internal/catalog"
)

const (
	BaseCost     = 10.0
	ScalePerStep = 1.036

	// DefaultKnowledgePerDay is the research rate used when none is given.
	DefaultKnowledgePerDay = 5.0

	DaysPerMonth = 30
)

var stepsPerTier = [...]int{2, 3, 4, 5}

// StepsForTier returns the research steps of a tier. Tiers outside 0..3 are
// clamped.
func StepsForTier(tier int) int {
	return stepsPerTier[min(max(tier, 0), len(stepsPerTier)-1)]
}

// DevelopmentCost is the knowledge needed for one development of steps
// steps after totalResearched steps.
func DevelopmentCost(steps, totalResearched int) float64 {
	geometric := (math.Pow(ScalePerStep, float64(steps)) - 1) / (ScalePerStep - 1)
	return BaseCost * math.Pow(ScalePerStep, float64(totalResearched)) * geometric
}

// Lookup resolves a development id.
type Lookup func(id string) (catalog.Development, bool)

// TotalStepsResearched sums the steps of every known development in ids.
func TotalStepsResearched(ids []string, lookup Lookup) int {
	total := 0
	for _, id := range ids {
		if d, ok := lookup(id); ok {
			total += StepsForTier(d.Tier)
		}
	}
	return total
}

// CostToResearchNext is the cost of dev right after researching done.
func CostToResearchNext(dev catalog.Development, done []string, lookup Lookup) float64 {
	return DevelopmentCost(StepsForTier(dev.Tier), TotalStepsResearched(done, lookup))
}

// TotalCostOfOrder is the cost of researching ids in order. Unknown ids are
// skipped.
func TotalCostOfOrder(ids []string, lookup Lookup) float64 {
	total := 0.0
	steps := 0
	for _, id := range ids {
		d, ok := lookup(id)
		if !ok {
			continue
		}
		s := StepsForTier(d.Tier)
		total += DevelopmentCost(s, steps)
		steps += s
	}
	return total
}

// CostToDays converts a knowledge cost to days at knowledgePerDay. A
// non-positive rate never finishes.
func CostToDays(cost, knowledgePerDay float64) float64 {
	if knowledgePerDay <= 0 {
		return math.Inf(1)
	}
	return cost / knowledgePerDay
}

// MinimumPathOrder lists the prerequisites of target, roots first, following
// requires and, for a development that replaces another, the replaced
// development's requirement. The target itself is not included.
func MinimumPathOrder(target string, lookup Lookup) []string {
	dev, ok := lookup(target)
	if !ok {
		return nil
	}
	var chain []string
	seen := map[string]bool{target: true}
	for {
		req := effectiveRequires(dev, lookup)
		if req == "" || seen[req] {
			break
		}
		seen[req] = true
		chain = append(chain, req)
		next, ok := lookup(req)
		if !ok {
			break
		}
		dev = next
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

func effectiveRequires(d catalog.Development, lookup Lookup) string {
	if d.Requires != "" {
		return d.Requires
	}
	if d.Replaces != "" {
		if replaced, ok := lookup(d.Replaces); ok {
			return replaced.Requires
		}
	}
	return ""
}

// FormatDays renders whole days as "X month(s) Y day(s)" with 30-day months.
func FormatDays(totalDays int) string {
	months, days := totalDays/DaysPerMonth, totalDays%DaysPerMonth
	switch {
	case months == 0:
		return plural(days, "day")
	case days == 0:
		return plural(months, "month")
	}
	return plural(months, "month") + " " + plural(days, "day")
}

// FormatDaysShort renders whole days as "1m 23d".
func FormatDaysShort(totalDays int) string {
	months, days := totalDays/DaysPerMonth, totalDays%DaysPerMonth
	switch {
	case months == 0:
		return fmt.Sprintf("%dd", days)
	case days == 0:
		return fmt.Sprintf("%dm", months)
	}
	return fmt.Sprintf("%dm %dd", months, days)
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
