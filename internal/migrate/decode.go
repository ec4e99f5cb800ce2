package migrate

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tatianab/spice-planner/internal/models"
)

// decodeDocument builds a typed document from the upgraded raw map. Every
// field it cannot read falls back to its default.
func decodeDocument(raw map[string]any) *models.Document {
	doc := models.DefaultDocument()

	if f := factionOf(raw["selectedFaction"]); f.Valid() {
		doc.SelectedFaction = f
	}

	if states, ok := decodeBaseStates(raw["mainBaseState"]); ok {
		doc.MainBaseState = states
	}

	orders, _ := asMap(raw["buildingOrder"])
	for _, f := range models.Factions {
		doc.BuildingOrder[f] = models.ReconcileOrder(decodeOrder(orders[string(f)]), doc.MainBaseState[f])
	}

	slots, _ := asMap(raw["unitSlots"])
	for _, f := range models.Factions {
		if u, ok := decodeUnitSlots(slots[string(f)]); ok {
			doc.UnitSlots[f] = u
		}
	}

	doc.SavedBuilds = decodeSavedBuilds(raw["savedBuilds"])

	if name, ok := raw["currentBuildName"].(string); ok && strings.TrimSpace(name) != "" {
		doc.CurrentBuildName = strings.TrimSpace(name)
	} else {
		doc.CurrentBuildName = models.DefaultBuildName(doc.SelectedFaction, doc.SavedBuilds)
	}
	if id, ok := raw["currentBuildId"].(string); ok && doc.FindSavedBuild(id) >= 0 {
		doc.CurrentBuildID = id
	}
	if snap, ok := raw["lastSavedSnapshot"].(string); ok {
		doc.LastSavedSnapshot = snap
	}
	return doc
}

// decodeBaseStates reads a grid for every faction. It fails as a whole when
// any faction is missing or does not conform to its layout.
func decodeBaseStates(v any) (map[models.Faction]models.BaseState, bool) {
	m, ok := asMap(v)
	if !ok {
		return nil, false
	}
	out := make(map[models.Faction]models.BaseState, len(models.Factions))
	for _, f := range models.Factions {
		state, ok := decodeBaseState(m[string(f)])
		if !ok || !state.Conforms(models.LayoutFor(f)) {
			return nil, false
		}
		out[f] = state
	}
	return out, true
}

// decodeBaseState reads one grid. Cells that are not strings read as empty.
func decodeBaseState(v any) (models.BaseState, bool) {
	rows, ok := v.([]any)
	if !ok {
		return nil, false
	}
	state := make(models.BaseState, len(rows))
	for r, rowValue := range rows {
		groups, ok := rowValue.([]any)
		if !ok {
			return nil, false
		}
		state[r] = make([][]string, len(groups))
		for g, groupValue := range groups {
			cells, ok := groupValue.([]any)
			if !ok {
				return nil, false
			}
			state[r][g] = make([]string, len(cells))
			for c, cell := range cells {
				if id, ok := cell.(string); ok {
					state[r][g][c] = id
				}
			}
		}
	}
	return state, true
}

// decodeOrder reads coordinates stored either as [row, group, cell] or as
// {rowIndex, groupIndex, cellIndex}. Unreadable entries are dropped.
func decodeOrder(v any) models.BuildingOrder {
	list, _ := v.([]any)
	out := models.BuildingOrder{}
	for _, item := range list {
		if c, ok := decodeCoord(item); ok {
			out = append(out, c)
		}
	}
	return out
}

func decodeCoord(v any) (models.Coord, bool) {
	if triple, ok := v.([]any); ok {
		if len(triple) != 3 {
			return models.Coord{}, false
		}
		r, ok1 := asInt(triple[0])
		g, ok2 := asInt(triple[1])
		c, ok3 := asInt(triple[2])
		return models.Coord{Row: r, Group: g, Cell: c}, ok1 && ok2 && ok3
	}
	if m, ok := asMap(v); ok {
		r, ok1 := asInt(m["rowIndex"])
		g, ok2 := asInt(m["groupIndex"])
		c, ok3 := asInt(m["cellIndex"])
		return models.Coord{Row: r, Group: g, Cell: c}, ok1 && ok2 && ok3
	}
	return models.Coord{}, false
}

func decodeUnitSlots(v any) (models.UnitSlots, bool) {
	m, ok := asMap(v)
	if !ok {
		return models.UnitSlots{}, false
	}
	count, ok := asInt(m["count"])
	if !ok {
		return models.UnitSlots{}, false
	}
	count = min(max(count, models.HeroSlotIndex+1), models.MaxUnitSlotCount)
	units := make([]string, count)
	list, _ := m["units"].([]any)
	for i, item := range list {
		if i >= count || i == models.AddSlotIndex {
			continue
		}
		if id, ok := item.(string); ok {
			units[i] = id
		}
	}
	return models.UnitSlots{Count: count, Units: units}, true
}

// decodeSavedBuilds keeps every readable build. A build without a usable
// grid map is dropped; a single misshaped faction grid inside an otherwise
// readable build is reset to empty.
func decodeSavedBuilds(v any) []models.SavedBuild {
	list, _ := v.([]any)
	out := make([]models.SavedBuild, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, item := range list {
		b, ok := decodeSavedBuild(item, out)
		if !ok || seen[b.ID] {
			continue
		}
		seen[b.ID] = true
		out = append(out, b)
	}
	return out
}

func decodeSavedBuild(v any, existing []models.SavedBuild) (models.SavedBuild, bool) {
	m, ok := asMap(v)
	if !ok {
		return models.SavedBuild{}, false
	}
	states, ok := asMap(m["mainBaseState"])
	if !ok {
		return models.SavedBuild{}, false
	}
	orders, _ := asMap(m["buildingOrder"])

	b := models.SavedBuild{
		SelectedFaction: models.DefaultFaction,
		MainBaseState:   make(map[models.Faction]models.BaseState, len(models.Factions)),
		BuildingOrder:   make(map[models.Faction]models.BuildingOrder, len(models.Factions)),
		CreatedAt:       decodeTime(m["createdAt"]),
	}
	if f := factionOf(m["selectedFaction"]); f.Valid() {
		b.SelectedFaction = f
	}
	for _, f := range models.Factions {
		state, ok := decodeBaseState(states[string(f)])
		if !ok || !state.Conforms(models.LayoutFor(f)) {
			state = models.InitializeBaseState(models.LayoutFor(f))
		}
		b.MainBaseState[f] = state
		b.BuildingOrder[f] = models.ReconcileOrder(decodeOrder(orders[string(f)]), state)
	}
	if id, ok := m["id"].(string); ok && strings.TrimSpace(id) != "" {
		b.ID = id
	} else {
		b.ID = uuid.NewString()
	}
	if name, ok := m["name"].(string); ok && strings.TrimSpace(name) != "" {
		b.Name = strings.TrimSpace(name)
	} else {
		b.Name = models.DefaultBuildName(b.SelectedFaction, existing)
	}
	return b, true
}

// decodeTime accepts RFC 3339 text, a decoded time, or Unix milliseconds.
func decodeTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err == nil {
			return parsed.UTC()
		}
	case int:
		return time.UnixMilli(int64(t)).UTC()
	case int64:
		return time.UnixMilli(t).UTC()
	case float64:
		if !math.IsNaN(t) && !math.IsInf(t, 0) {
			return time.UnixMilli(int64(t)).UTC()
		}
	}
	return time.Time{}
}

func factionOf(v any) models.Faction {
	s, _ := v.(string)
	return models.Faction(s)
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		if n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.Abs(n) > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
