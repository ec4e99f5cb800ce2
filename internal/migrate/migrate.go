// Package migrate upgrades persisted planner documents from any earlier
// schema version to the current one.
//
// Migration works on the untyped form of the stored state (whatever the YAML
// decoder produced) and never fails: each upgrade step only fills in fields
// that are missing or unusable, and the final typed decode falls back to
// defaults for anything it cannot read. A grid whose shape no longer matches
// its faction layout resets the whole mainBaseState, since order and share
// data elsewhere rely on that correspondence.
package migrate

import (
	"strings"

	"github.com/tatianab/spice-planner/internal/models"
)

// step upgrades a document at version-1 to version.
type step struct {
	version int
	apply   func(raw map[string]any)
}

// steps is ordered by version. A new schema version is one more entry.
var steps = []step{
	{version: 2, apply: addBuildingOrder},
	{version: 3, apply: addSavedBuilds},
	{version: 4, apply: addLastSavedSnapshot},
	{version: 5, apply: addCurrentBuildID},
	{version: 6, apply: fillBuildNames},
	{version: 7, apply: addUnitSlots},
}

// Migrate returns a current-version document built from persisted, which was
// stored at fromVersion. It never panics; input it cannot make sense of
// yields a fresh document.
func Migrate(persisted any, fromVersion int) (doc *models.Document) {
	defer func() {
		if r := recover(); r != nil {
			doc = models.DefaultDocument()
		}
	}()

	if persisted == nil || fromVersion <= 0 {
		return models.DefaultDocument()
	}
	src, ok := asMap(persisted)
	if !ok {
		return models.DefaultDocument()
	}
	raw := make(map[string]any, len(src))
	for k, v := range src {
		raw[k] = v
	}

	resetBase := !baseStatesUsable(raw["mainBaseState"])
	if resetBase {
		delete(raw, "mainBaseState")
	}

	for _, s := range steps {
		if s.version > fromVersion {
			s.apply(raw)
		}
	}
	return decodeDocument(raw)
}

// baseStatesUsable checks that mainBaseState is a map holding a sequence for
// every faction.
func baseStatesUsable(v any) bool {
	m, ok := asMap(v)
	if !ok {
		return false
	}
	for _, f := range models.Factions {
		if _, ok := m[string(f)].([]any); !ok {
			return false
		}
	}
	return true
}

func addBuildingOrder(raw map[string]any) {
	orders, ok := asMap(raw["buildingOrder"])
	if !ok {
		orders = map[string]any{}
	}
	fixed := make(map[string]any, len(models.Factions))
	for _, f := range models.Factions {
		list, ok := orders[string(f)].([]any)
		if !ok {
			list = []any{}
		}
		fixed[string(f)] = list
	}
	raw["buildingOrder"] = fixed
}

func addSavedBuilds(raw map[string]any) {
	if name, ok := raw["currentBuildName"].(string); !ok || strings.TrimSpace(name) == "" {
		delete(raw, "currentBuildName")
	}
	if _, ok := raw["savedBuilds"].([]any); !ok {
		raw["savedBuilds"] = []any{}
	}
}

func addLastSavedSnapshot(raw map[string]any) {
	if _, ok := raw["lastSavedSnapshot"].(string); !ok {
		raw["lastSavedSnapshot"] = nil
	}
}

func addCurrentBuildID(raw map[string]any) {
	if _, ok := raw["currentBuildId"].(string); !ok {
		raw["currentBuildId"] = nil
	}
}

// fillBuildNames gives a default name to the live build and to every saved
// build stored without one.
func fillBuildNames(raw map[string]any) {
	list, _ := raw["savedBuilds"].([]any)
	var named []models.SavedBuild
	for _, item := range list {
		if m, ok := asMap(item); ok {
			if name, ok := m["name"].(string); ok && strings.TrimSpace(name) != "" {
				named = append(named, models.SavedBuild{Name: name})
			}
		}
	}
	fixed := make([]any, 0, len(list))
	for _, item := range list {
		m, ok := asMap(item)
		if !ok {
			continue
		}
		if name, ok := m["name"].(string); !ok || strings.TrimSpace(name) == "" {
			copied := make(map[string]any, len(m)+1)
			for k, v := range m {
				copied[k] = v
			}
			name := models.DefaultBuildName(factionOf(m["selectedFaction"]), named)
			copied["name"] = name
			named = append(named, models.SavedBuild{Name: name})
			m = copied
		}
		fixed = append(fixed, m)
	}
	raw["savedBuilds"] = fixed

	if name, ok := raw["currentBuildName"].(string); !ok || strings.TrimSpace(name) == "" {
		raw["currentBuildName"] = models.DefaultBuildName(factionOf(raw["selectedFaction"]), named)
	}
}

func addUnitSlots(raw map[string]any) {
	slots, ok := asMap(raw["unitSlots"])
	if !ok {
		slots = map[string]any{}
	}
	fixed := make(map[string]any, len(models.Factions))
	for _, f := range models.Factions {
		if _, ok := asMap(slots[string(f)]); ok {
			fixed[string(f)] = slots[string(f)]
			continue
		}
		fixed[string(f)] = map[string]any{"count": 2, "units": []any{nil, nil}}
	}
	raw["unitSlots"] = fixed
}
