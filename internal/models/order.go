package models

// Without returns the order with every entry for c removed.
func (o BuildingOrder) Without(c Coord) BuildingOrder {
	out := make(BuildingOrder, 0, len(o))
	for _, entry := range o {
		if entry != c {
			out = append(out, entry)
		}
	}
	return out
}

// ReconcileOrder makes order agree with state: entries for empty or
// out-of-range cells and repeated entries are dropped, and occupied cells
// missing from the order are appended row-major.
func ReconcileOrder(order BuildingOrder, state BaseState) BuildingOrder {
	seen := make(map[Coord]bool, len(order))
	out := BuildingOrder{}
	for _, c := range order {
		if seen[c] || state.At(c) == "" {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	for r, row := range state {
		for g, group := range row {
			for i, cell := range group {
				c := Coord{Row: r, Group: g, Cell: i}
				if cell != "" && !seen[c] {
					seen[c] = true
					out = append(out, c)
				}
			}
		}
	}
	return out
}
