package models

import (
	"fmt"
	"regexp"
	"strconv"
)

var layouts = map[Faction]Layout{
	Harkonnen: {{3, 2}, {1, 2}, {3}},
	Atreides:  {{1, 2}, {3}, {2, 1, 1}},
	Ecaz:      {{1, 3}, {2}, {3, 1}},
	Smuggler:  {{3}, {2, 1, 1}, {1, 1}},
	Vernius:   {{3}, {3}, {3}},
	Fremen:    {{2, 2}, {3}, {2, 1}},
	Corrino:   {{3, 1}, {2, 2}, {3}},
}

// LayoutFor returns a copy of the faction's base layout, or nil for an
// unknown faction.
func LayoutFor(f Faction) Layout {
	src, ok := layouts[f]
	if !ok {
		return nil
	}
	out := make(Layout, len(src))
	for i, row := range src {
		out[i] = append([]int(nil), row...)
	}
	return out
}

// InitializeBaseState turns every group size n of the layout into n empty
// cells. It is the only way an empty BaseState is built.
func InitializeBaseState(layout Layout) BaseState {
	state := make(BaseState, len(layout))
	for r, row := range layout {
		state[r] = make([][]string, len(row))
		for g, count := range row {
			if count < 0 {
				count = 0
			}
			state[r][g] = make([]string, count)
		}
	}
	return state
}

// Conforms reports whether state has exactly the shape of layout.
func (s BaseState) Conforms(layout Layout) bool {
	if len(s) != len(layout) {
		return false
	}
	for r, row := range layout {
		if len(s[r]) != len(row) {
			return false
		}
		for g, count := range row {
			if len(s[r][g]) != count {
				return false
			}
		}
	}
	return true
}

// Contains reports whether c addresses a cell inside s.
func (s BaseState) Contains(c Coord) bool {
	if c.Row < 0 || c.Row >= len(s) {
		return false
	}
	if c.Group < 0 || c.Group >= len(s[c.Row]) {
		return false
	}
	return c.Cell >= 0 && c.Cell < len(s[c.Row][c.Group])
}

// At returns the building id at c, or "" when c is empty or out of range.
func (s BaseState) At(c Coord) string {
	if !s.Contains(c) {
		return ""
	}
	return s[c.Row][c.Group][c.Cell]
}

// DefaultBaseStates returns an empty grid for every faction.
func DefaultBaseStates() map[Faction]BaseState {
	out := make(map[Faction]BaseState, len(Factions))
	for _, f := range Factions {
		out[f] = InitializeBaseState(layouts[f])
	}
	return out
}

// DefaultBuildingOrders returns an empty order for every faction.
func DefaultBuildingOrders() map[Faction]BuildingOrder {
	out := make(map[Faction]BuildingOrder, len(Factions))
	for _, f := range Factions {
		out[f] = BuildingOrder{}
	}
	return out
}

// DefaultUnitSlots returns the add and hero slots for every faction.
func DefaultUnitSlots() map[Faction]UnitSlots {
	out := make(map[Faction]UnitSlots, len(Factions))
	for _, f := range Factions {
		out[f] = NewUnitSlots()
	}
	return out
}

// NewUnitSlots returns a roster holding only the add and hero slots.
func NewUnitSlots() UnitSlots {
	return UnitSlots{Count: defaultSlotCount, Units: make([]string, defaultSlotCount)}
}

// DefaultDocument returns a fresh document on the default faction.
func DefaultDocument() *Document {
	return &Document{
		SelectedFaction:  DefaultFaction,
		MainBaseState:    DefaultBaseStates(),
		BuildingOrder:    DefaultBuildingOrders(),
		UnitSlots:        DefaultUnitSlots(),
		CurrentBuildName: DefaultBuildName(DefaultFaction, nil),
		SavedBuilds:      []SavedBuild{},
	}
}

// DefaultBuildName returns "<faction> <n>" where n is one more than the
// highest suffix already used by a saved build named that way.
func DefaultBuildName(f Faction, saved []SavedBuild) string {
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(string(f)) + `\s+(\d+)$`)
	highest := 0
	for _, b := range saved {
		m := pattern.FindStringSubmatch(b.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s %d", f, highest+1)
}
