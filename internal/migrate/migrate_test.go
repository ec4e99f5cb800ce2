package migrate

import (
	"reflect"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tatianab/spice-planner/internal/models"
)

// parse decodes a YAML state the way the store reads it from disk.
func parse(t *testing.T, doc string) any {
	t.Helper()
	var v any
	if err := yaml.Unmarshal([]byte(doc), &v); err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return v
}

// roundTrip encodes and decodes doc through the persisted envelope.
func roundTrip(t *testing.T, doc *models.Document) (int, any) {
	t.Helper()
	data, err := models.EncodeEnvelope(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	version, state, err := models.DecodeRawEnvelope(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return version, state
}

const v1Grids = `
mainBaseState:
  harkonnen: [[["", "", ""], ["", ""]], [[""], ["", ""]], [["", "", ""]]]
  atreides: [[["palace"], ["windtrap", ""]], [["", "", "barracks"]], [["", ""], [""], [""]]]
  ecaz: [[[""], ["", "", ""]], [["", ""]], [["", "", ""], [""]]]
  smuggler: [[["", "", ""]], [["", ""], [""], [""]], [[""], [""]]]
  vernius: [[["", "", ""]], [["", "", ""]], [["", "", ""]]]
  fremen: [[["", ""], ["", ""]], [["", "", ""]], [["", ""], [""]]]
  corrino: [[["", "", ""], [""]], [["", ""], ["", ""]], [["", "", ""]]]
`

func TestMigrateFreshInputs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		state   any
		version int
	}{
		{"nil state", nil, 3},
		{"version zero", parse(t, v1Grids), 0},
		{"negative version", parse(t, v1Grids), -4},
		{"scalar state", "hello", 2},
		{"list state", []any{1, 2}, 7},
	}
	fresh := models.Snapshot(models.DefaultDocument())
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Migrate(tt.state, tt.version)
			if models.Snapshot(got) != fresh {
				t.Errorf("Expected a fresh document, got %+v", got)
			}
		})
	}
}

func TestMigrateFromV1(t *testing.T) {
	t.Parallel()

	raw := parse(t, "selectedFaction: atreides\n"+v1Grids)
	doc := Migrate(raw, 1)

	if doc.SelectedFaction != models.Atreides {
		t.Errorf("Expected atreides, got %s", doc.SelectedFaction)
	}
	if got := doc.MainBaseState[models.Atreides][0][0][0]; got != "palace" {
		t.Errorf("Expected palace to survive, got %q", got)
	}
	want := models.BuildingOrder{{Row: 0, Group: 0, Cell: 0}, {Row: 0, Group: 1, Cell: 0}, {Row: 1, Group: 0, Cell: 2}}
	if !reflect.DeepEqual(doc.BuildingOrder[models.Atreides], want) {
		t.Errorf("Expected row-major order %v, got %v", want, doc.BuildingOrder[models.Atreides])
	}
	if doc.CurrentBuildName != "atreides 1" {
		t.Errorf("Expected default name, got %q", doc.CurrentBuildName)
	}
	if len(doc.SavedBuilds) != 0 || doc.CurrentBuildID != "" || doc.LastSavedSnapshot != "" {
		t.Errorf("Expected empty bookkeeping, got %+v", doc)
	}
	for _, f := range models.Factions {
		if u := doc.UnitSlots[f]; u.Count != 2 || len(u.Units) != 2 {
			t.Errorf("%s: expected default unit slots, got %+v", f, u)
		}
	}
}

func TestMigrateResetsMisshapedGrid(t *testing.T) {
	t.Parallel()

	raw := parse(t, `
selectedFaction: fremen
currentBuildName: keep me
mainBaseState:
  atreides: [[["palace"]]]
buildingOrder:
  atreides: [[0, 0, 0]]
`)
	doc := Migrate(raw, 5)
	fresh := models.DefaultBaseStates()
	if !reflect.DeepEqual(doc.MainBaseState, fresh) {
		t.Errorf("Expected every grid reset, got %v", doc.MainBaseState)
	}
	if len(doc.BuildingOrder[models.Atreides]) != 0 {
		t.Errorf("Expected order to follow the reset grid, got %v", doc.BuildingOrder[models.Atreides])
	}
	if doc.SelectedFaction != models.Fremen || doc.CurrentBuildName != "keep me" {
		t.Errorf("Expected unrelated fields to survive, got %s %q", doc.SelectedFaction, doc.CurrentBuildName)
	}
}

func TestMigrateWrongShapeInOneFactionResetsAll(t *testing.T) {
	t.Parallel()

	raw := parse(t, v1Grids).(map[string]any)
	grids := raw["mainBaseState"].(map[string]any)
	grids["vernius"] = []any{[]any{[]any{"", ""}}}
	doc := Migrate(raw, 7)
	if got := doc.MainBaseState[models.Atreides][0][0][0]; got != "" {
		t.Errorf("Expected atreides grid reset along with vernius, got %q", got)
	}
	if !doc.MainBaseState[models.Vernius].Conforms(models.LayoutFor(models.Vernius)) {
		t.Error("Expected vernius grid to fit its layout")
	}
}

func TestMigrateSavedBuilds(t *testing.T) {
	t.Parallel()

	raw := parse(t, "selectedFaction: atreides\ncurrentBuildId: gone\n"+v1Grids+`
savedBuilds:
  - id: a
    name: ""
    selectedFaction: ecaz
    createdAt: 1714564800000
    mainBaseState:
      ecaz: [[["palace"], ["", "", ""]], [["", ""]], [["", "", ""], [""]]]
      atreides: [[["x"]]]
    buildingOrder:
      ecaz: [{rowIndex: 0, groupIndex: 0, cellIndex: 0}]
  - name: no id
    selectedFaction: fremen
    createdAt: "2024-05-01T12:00:00Z"
    mainBaseState: {}
  - id: broken
    name: no grids
  - id: a
    name: duplicate id
    mainBaseState: {}
`)
	doc := Migrate(raw, 5)

	if len(doc.SavedBuilds) != 2 {
		t.Fatalf("Expected 2 saved builds, got %d: %+v", len(doc.SavedBuilds), doc.SavedBuilds)
	}
	a := doc.SavedBuilds[0]
	if a.ID != "a" || a.Name != "ecaz 1" {
		t.Errorf("Expected id a named ecaz 1, got %q %q", a.ID, a.Name)
	}
	if a.MainBaseState[models.Ecaz][0][0][0] != "palace" {
		t.Errorf("Expected ecaz grid to survive, got %v", a.MainBaseState[models.Ecaz])
	}
	if !reflect.DeepEqual(a.BuildingOrder[models.Ecaz], models.BuildingOrder{{Row: 0, Group: 0, Cell: 0}}) {
		t.Errorf("Expected legacy map coordinate to decode, got %v", a.BuildingOrder[models.Ecaz])
	}
	if !a.MainBaseState[models.Atreides].Conforms(models.LayoutFor(models.Atreides)) {
		t.Error("Expected misshaped atreides grid inside a saved build to be reset")
	}
	if want := time.UnixMilli(1714564800000).UTC(); !a.CreatedAt.Equal(want) {
		t.Errorf("Expected created at %v, got %v", want, a.CreatedAt)
	}

	b := doc.SavedBuilds[1]
	if b.ID == "" {
		t.Error("Expected a generated id for a build stored without one")
	}
	if want := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC); !b.CreatedAt.Equal(want) {
		t.Errorf("Expected created at %v, got %v", want, b.CreatedAt)
	}
	if doc.CurrentBuildID != "" {
		t.Errorf("Expected dangling current build id to be cleared, got %q", doc.CurrentBuildID)
	}
}

func TestMigrateKeepsValidCurrentBuildID(t *testing.T) {
	t.Parallel()

	raw := parse(t, "currentBuildId: a\n"+v1Grids+`
savedBuilds:
  - {id: a, name: first, mainBaseState: {}}
`)
	doc := Migrate(raw, 6)
	if doc.CurrentBuildID != "a" {
		t.Errorf("Expected current build id a, got %q", doc.CurrentBuildID)
	}
}

func TestMigrateUnitSlots(t *testing.T) {
	t.Parallel()

	raw := parse(t, v1Grids+`
unitSlots:
  fremen: {count: 40, units: [fr_warrior, fr_stilgar, fr_fedaykin, 7]}
  ecaz: {count: 0, units: []}
  vernius: nonsense
`)
	doc := Migrate(raw, 7)

	fr := doc.UnitSlots[models.Fremen]
	if fr.Count != models.MaxUnitSlotCount || len(fr.Units) != fr.Count {
		t.Errorf("Expected count clamped to %d, got %+v", models.MaxUnitSlotCount, fr)
	}
	if fr.Units[0] != "" || fr.Units[1] != "fr_stilgar" || fr.Units[2] != "fr_fedaykin" || fr.Units[3] != "" {
		t.Errorf("Unexpected fremen units %v", fr.Units[:4])
	}
	if ec := doc.UnitSlots[models.Ecaz]; ec.Count != 2 {
		t.Errorf("Expected ecaz count raised to 2, got %d", ec.Count)
	}
	if ve := doc.UnitSlots[models.Vernius]; ve.Count != 2 || len(ve.Units) != 2 {
		t.Errorf("Expected default vernius slots, got %+v", ve)
	}
}

func TestMigrateUnknownFactionFallsBack(t *testing.T) {
	t.Parallel()

	doc := Migrate(parse(t, "selectedFaction: mentat\n"+v1Grids), 7)
	if doc.SelectedFaction != models.DefaultFaction {
		t.Errorf("Expected default faction, got %s", doc.SelectedFaction)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	t.Parallel()

	raw := parse(t, "selectedFaction: atreides\n"+v1Grids+`
savedBuilds:
  - {id: a, name: rush, selectedFaction: atreides, createdAt: 1714564800000, mainBaseState: {}}
`)
	once := Migrate(raw, 2)
	once.LastSavedSnapshot = models.Snapshot(once)

	version, state := roundTrip(t, once)
	twice := Migrate(state, version)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Expected migration of a current document to be a no-op\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestMigrateCurrentDocumentRoundTrip(t *testing.T) {
	t.Parallel()

	d := models.DefaultDocument()
	d.SelectedFaction = models.Smuggler
	d.MainBaseState[models.Smuggler][1][0][1] = "market"
	d.BuildingOrder[models.Smuggler] = models.BuildingOrder{{Row: 1, Group: 0, Cell: 1}}
	d.UnitSlots[models.Smuggler] = models.UnitSlots{Count: 3, Units: []string{"", "sm_esmar", "sm_gunner"}}
	d.SavedBuilds = []models.SavedBuild{{
		ID:              "s",
		Name:            "smuggler 1",
		CreatedAt:       time.Date(2025, 1, 2, 3, 4, 5, 6000, time.UTC),
		SelectedFaction: models.Smuggler,
		MainBaseState:   models.DefaultBaseStates(),
		BuildingOrder:   models.DefaultBuildingOrders(),
	}}
	d.CurrentBuildID = "s"
	d.CurrentBuildName = "smuggler 1"
	d.LastSavedSnapshot = models.Snapshot(d)

	version, state := roundTrip(t, d)
	got := Migrate(state, version)
	if !reflect.DeepEqual(d, got) {
		t.Errorf("Expected round trip to preserve the document\nwant: %+v\ngot:  %+v", d, got)
	}
}

func TestMigrateNeverPanics(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"mainBaseState: 5",
		"mainBaseState: {atreides: [[1, 2]]}",
		"buildingOrder: {atreides: [[0], [a, b, c], {rowIndex: x}]}",
		"savedBuilds: [1, [], {mainBaseState: 3}, {mainBaseState: {atreides: nope}}]",
		"unitSlots: {atreides: {count: x, units: 9}}",
		"currentBuildName: [1]\ncurrentBuildId: {}\nlastSavedSnapshot: 3",
		"savedBuilds: {}",
		"~",
	}
	for _, in := range inputs {
		for version := 1; version <= models.SchemaVersion+1; version++ {
			doc := Migrate(parse(t, in), version)
			if doc == nil {
				t.Fatalf("Migrate(%q, %d) returned nil", in, version)
			}
			for _, f := range models.Factions {
				if !doc.MainBaseState[f].Conforms(models.LayoutFor(f)) {
					t.Errorf("Migrate(%q, %d): %s grid does not conform", in, version, f)
				}
			}
		}
	}
}
