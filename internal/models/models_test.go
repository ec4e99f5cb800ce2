package models

import (
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestInitializeBaseState(t *testing.T) {
	t.Parallel()

	for _, f := range Factions {
		layout := LayoutFor(f)
		state := InitializeBaseState(layout)
		if !state.Conforms(layout) {
			t.Errorf("%s: state does not conform to its layout", f)
		}
		for _, row := range state {
			for _, group := range row {
				for _, cell := range group {
					if cell != "" {
						t.Errorf("%s: expected empty cell, got %q", f, cell)
					}
				}
			}
		}
	}

	state := InitializeBaseState(Layout{{2, 0}, {1}})
	if len(state[0][1]) != 0 || len(state[0][0]) != 2 || len(state[1][0]) != 1 {
		t.Errorf("unexpected shape %v", state)
	}
}

func TestLayoutForReturnsCopy(t *testing.T) {
	t.Parallel()

	l := LayoutFor(Vernius)
	l[0][0] = 99
	if LayoutFor(Vernius)[0][0] == 99 {
		t.Fatal("LayoutFor leaked the shared layout")
	}
	if LayoutFor("mentat") != nil {
		t.Error("Expected nil layout for unknown faction")
	}
}

func TestConformsAndContains(t *testing.T) {
	t.Parallel()

	layout := LayoutFor(Atreides)
	state := InitializeBaseState(layout)
	state[2] = state[2][:2]
	if state.Conforms(layout) {
		t.Error("Expected truncated row not to conform")
	}

	state = InitializeBaseState(layout)
	tests := []struct {
		c    Coord
		want bool
	}{
		{Coord{0, 0, 0}, true},
		{Coord{0, 1, 1}, true},
		{Coord{0, 0, 1}, false},
		{Coord{-1, 0, 0}, false},
		{Coord{3, 0, 0}, false},
		{Coord{2, 3, 0}, false},
	}
	for _, tt := range tests {
		if got := state.Contains(tt.c); got != tt.want {
			t.Errorf("Contains(%s) = %v, want %v", tt.c, got, tt.want)
		}
	}
	if got := state.At(Coord{9, 9, 9}); got != "" {
		t.Errorf("At out of range = %q, want empty", got)
	}
}

func TestDefaultBuildName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		saved []string
		want  string
	}{
		{"no builds", nil, "atreides 1"},
		{"gap is not filled", []string{"atreides 1", "atreides 3"}, "atreides 4"},
		{"other factions ignored", []string{"fremen 7", "atreides 2"}, "atreides 3"},
		{"custom names ignored", []string{"atreides rush", "my atreides 9"}, "atreides 1"},
		{"copies ignored", []string{"atreides 2 #1"}, "atreides 1"},
		{"extra spaces accepted", []string{"atreides   5"}, "atreides 6"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var saved []SavedBuild
			for _, n := range tt.saved {
				saved = append(saved, SavedBuild{Name: n})
			}
			if got := DefaultBuildName(Atreides, saved); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestReconcileOrder(t *testing.T) {
	t.Parallel()

	state := InitializeBaseState(LayoutFor(Atreides))
	state[0][0][0] = "palace"
	state[1][0][2] = "barracks"
	state[2][0][1] = "market"

	order := BuildingOrder{
		{2, 0, 1},
		{0, 1, 0}, // empty cell
		{2, 0, 1}, // repeat
		{7, 0, 0}, // out of range
		{1, 0, 2},
	}
	got := ReconcileOrder(order, state)
	want := BuildingOrder{{2, 0, 1}, {1, 0, 2}, {0, 0, 0}}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	if empty := ReconcileOrder(nil, InitializeBaseState(LayoutFor(Ecaz))); empty == nil || len(empty) != 0 {
		t.Errorf("Expected non-nil empty order, got %#v", empty)
	}
}

func TestBuildingOrderWithout(t *testing.T) {
	t.Parallel()

	order := BuildingOrder{{0, 0, 0}, {1, 0, 0}, {0, 0, 0}}
	got := order.Without(Coord{0, 0, 0})
	if len(got) != 1 || got[0] != (Coord{1, 0, 0}) {
		t.Errorf("Expected [1/0/0], got %v", got)
	}
	if len(order) != 3 {
		t.Error("Without modified its receiver")
	}
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	d := DefaultDocument()
	first := Snapshot(d)
	if first != Snapshot(d.Clone()) {
		t.Fatal("Expected equal documents to share a snapshot")
	}

	d.SavedBuilds = append(d.SavedBuilds, SavedBuild{ID: "x", Name: "kept"})
	d.CurrentBuildID = "x"
	d.LastSavedSnapshot = "anything"
	d.UnitSlots[Atreides] = UnitSlots{Count: 3, Units: []string{"", "hero", "unit"}}
	if Snapshot(d) != first {
		t.Error("Snapshot changed for bookkeeping-only edits")
	}

	d.CurrentBuildName = "renamed"
	if Snapshot(d) == first {
		t.Error("Snapshot ignored the build name")
	}
	d.CurrentBuildName = DefaultBuildName(DefaultFaction, nil)
	d.MainBaseState[Fremen][0][0][0] = "palace"
	if Snapshot(d) == first {
		t.Error("Snapshot ignored another faction's grid")
	}
}

func TestSnapshotTreatsNilOrderAsEmpty(t *testing.T) {
	t.Parallel()

	d := DefaultDocument()
	withEmpty := Snapshot(d)
	d.BuildingOrder[Smuggler] = nil
	if Snapshot(d) != withEmpty {
		t.Error("Expected nil and empty orders to snapshot the same")
	}
}

func TestIsBuildUpToDate(t *testing.T) {
	t.Parallel()

	d := DefaultDocument()
	if IsBuildUpToDate(d) {
		t.Error("A build that was never saved cannot be up to date")
	}
	d.LastSavedSnapshot = Snapshot(d)
	if !IsBuildUpToDate(d) {
		t.Error("Expected build to be up to date right after snapshot")
	}
	d.MainBaseState[Atreides][0][0][0] = "palace"
	if IsBuildUpToDate(d) {
		t.Error("Expected an edit to make the build dirty")
	}
}

func TestOrderNumberAndUsedBuildings(t *testing.T) {
	t.Parallel()

	d := DefaultDocument()
	d.MainBaseState[Atreides][1][0][0] = "barracks"
	d.MainBaseState[Atreides][0][0][0] = "palace"
	d.BuildingOrder[Atreides] = BuildingOrder{{1, 0, 0}, {0, 0, 0}}

	if n := OrderNumber(d, Coord{0, 0, 0}); n != 2 {
		t.Errorf("Expected order number 2, got %d", n)
	}
	if n := OrderNumber(d, Coord{2, 0, 0}); n != 0 {
		t.Errorf("Expected order number 0 for an empty cell, got %d", n)
	}
	used := UsedBuildingIDs(d)
	if strings.Join(used, ",") != "palace,barracks" {
		t.Errorf("Expected row-major ids, got %v", used)
	}
	if IsBuildEmpty(d) {
		t.Error("Expected build not to be empty")
	}
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	d := DefaultDocument()
	d.SavedBuilds = []SavedBuild{{
		ID:            "a",
		Name:          "a",
		MainBaseState: DefaultBaseStates(),
		BuildingOrder: DefaultBuildingOrders(),
	}}
	c := d.Clone()
	c.MainBaseState[Atreides][0][0][0] = "palace"
	c.SavedBuilds[0].MainBaseState[Atreides][0][0][0] = "palace"
	c.UnitSlots[Atreides].Units[1] = "hero"
	c.BuildingOrder[Atreides] = append(c.BuildingOrder[Atreides], Coord{0, 0, 0})

	if d.MainBaseState[Atreides][0][0][0] != "" ||
		d.SavedBuilds[0].MainBaseState[Atreides][0][0][0] != "" ||
		d.UnitSlots[Atreides].Units[1] != "" ||
		len(d.BuildingOrder[Atreides]) != 0 {
		t.Error("Clone shares state with the original")
	}
}

func TestSharedBuildValid(t *testing.T) {
	t.Parallel()

	d := DefaultDocument()
	d.MainBaseState[Atreides][0][0][0] = "palace"
	d.BuildingOrder[Atreides] = BuildingOrder{{0, 0, 0}}
	b := ShareableOf(d)
	if !b.Valid() {
		t.Fatal("Expected a live build to be shareable")
	}

	bad := b
	bad.Order = BuildingOrder{{0, 1, 0}}
	if bad.Valid() {
		t.Error("Expected an order naming an empty cell to be invalid")
	}
	bad = b
	bad.Faction = Ecaz
	if bad.Valid() {
		t.Error("Expected a grid on the wrong layout to be invalid")
	}
}

func TestTotalUnitCost(t *testing.T) {
	t.Parallel()

	u := UnitSlots{Count: 4, Units: []string{"ignored", "hero", "a", "b"}}
	cost := func(id string) int { return map[string]int{"a": 10, "b": 7, "hero": 100, "ignored": 100}[id] }
	if got := TotalUnitCost(u, cost); got != 17 {
		t.Errorf("Expected 17, got %d", got)
	}
	if got := TotalUnitCost(u, nil); got != 0 {
		t.Errorf("Expected 0 without a cost func, got %d", got)
	}
}

func TestEnvelopeYAML(t *testing.T) {
	t.Parallel()

	d := DefaultDocument()
	d.MainBaseState[Atreides][0][1][1] = "windtrap"
	d.BuildingOrder[Atreides] = BuildingOrder{{0, 1, 1}}
	d.SavedBuilds = []SavedBuild{{
		ID:              "b1",
		Name:            "atreides 1",
		CreatedAt:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		SelectedFaction: Atreides,
		MainBaseState:   DefaultBaseStates(),
		BuildingOrder:   DefaultBuildingOrders(),
	}}

	data, err := EncodeEnvelope(d)
	if err != nil {
		t.Fatalf("Failed to encode envelope: %v", err)
	}
	if !strings.Contains(string(data), "- [0, 1, 1]") {
		t.Errorf("Expected coordinates as flow sequences, got:\n%s", data)
	}

	version, state, err := DecodeRawEnvelope(data)
	if err != nil {
		t.Fatalf("Failed to decode envelope: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("Expected version %d, got %d", SchemaVersion, version)
	}
	if _, ok := state.(map[string]any); !ok {
		t.Fatalf("Expected untyped state map, got %T", state)
	}

	var env Envelope
	if err := yaml.Unmarshal(data, &env); err != nil {
		t.Fatalf("Failed to unmarshal typed envelope: %v", err)
	}
	if got := env.State.BuildingOrder[Atreides]; len(got) != 1 || got[0] != (Coord{0, 1, 1}) {
		t.Errorf("Expected order [0/1/1], got %v", got)
	}
}

func TestDecodeRawEnvelopeWithoutVersion(t *testing.T) {
	t.Parallel()

	version, state, err := DecodeRawEnvelope([]byte("state: {selectedFaction: ecaz}\n"))
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if version != 0 || state == nil {
		t.Errorf("Expected version 0 and a state, got %d %v", version, state)
	}
	if _, _, err := DecodeRawEnvelope([]byte("{not yaml")); err == nil {
		t.Error("Expected an error for malformed input")
	}
}
