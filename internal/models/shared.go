package models

// SharedBuild is the part of a build that travels in a share link: one
// faction's grid and placement order.
type SharedBuild struct {
	Faction Faction
	State   BaseState
	Order   BuildingOrder
}

// ShareableOf extracts the selected faction's shareable build as a deep copy.
func ShareableOf(d *Document) SharedBuild {
	return SharedBuild{
		Faction: d.SelectedFaction,
		State:   CurrentBaseState(d).Clone(),
		Order:   CurrentBuildingOrder(d).Clone(),
	}
}

// Valid reports whether b names a known faction, conforms to that faction's
// layout, and has an order consistent with its occupied cells.
func (b SharedBuild) Valid() bool {
	if !b.Faction.Valid() || !b.State.Conforms(LayoutFor(b.Faction)) {
		return false
	}
	reconciled := ReconcileOrder(b.Order, b.State)
	if len(reconciled) != len(b.Order) {
		return false
	}
	for i := range reconciled {
		if reconciled[i] != b.Order[i] {
			return false
		}
	}
	return true
}

// TotalUnitCost sums the cost of every filled slot except the hero slot.
func TotalUnitCost(u UnitSlots, cost func(unitID string) int) int {
	if cost == nil {
		return 0
	}
	total := 0
	for i, id := range u.Units {
		if i == AddSlotIndex || i == HeroSlotIndex || id == "" {
			continue
		}
		total += cost(id)
	}
	return total
}
