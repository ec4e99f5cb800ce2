package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/tatianab/spice-planner/internal/advisor"
	"github.com/tatianab/spice-planner/internal/catalog"
	"github.com/tatianab/spice-planner/internal/config"
	"github.com/tatianab/spice-planner/internal/models"
	"github.com/tatianab/spice-planner/internal/share"
	"github.com/tatianab/spice-planner/internal/storage"
	"github.com/tatianab/spice-planner/internal/store"
)

// placements is the scripted build: buildings in the order they are placed.
var placements = []struct {
	row, group, cell int
	building         string
}{
	{0, 0, 0, "palace"},
	{0, 1, 0, "windtrap"},
	{0, 1, 1, "refinery"},
	{1, 0, 0, "barracks"},
	{1, 0, 1, "research_center"},
}

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))

	cat, err := catalog.Load()
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	mem := storage.NewMemory()
	s := store.Open(ctx, mem, store.WithLogger(logger), store.WithUnitCost(cat.UnitCost))
	changes := 0
	unsubscribe := s.Subscribe(func(*models.Document) { changes++ })
	defer unsubscribe()

	// 1. Lay out a base
	fmt.Println("--- Step 1: Placing buildings ---")
	for _, p := range placements {
		s.SetMainBaseCell(p.row, p.group, p.cell, p.building)
		fmt.Printf("Placed %s at %d.%d.%d\n", cat.BuildingName(p.building), p.row, p.group, p.cell)
	}

	// 2. Fill the army
	fmt.Println("\n--- Step 2: Recruiting ---")
	doc := s.Document()
	data := cat.Factions[doc.SelectedFaction]
	if len(data.Heroes) > 0 {
		if err := s.SetUnitSlot(models.HeroSlotIndex, data.Heroes[0].ID); err != nil {
			log.Fatalf("Failed to set hero: %v", err)
		}
	}
	for _, u := range data.Units {
		if err := s.AddUnitSlot(); err != nil {
			break
		}
		slot := s.Document().UnitSlots[doc.SelectedFaction].Count - 1
		if err := s.SetUnitSlot(slot, u.ID); err != nil {
			fmt.Printf("Skipped %s: %v\n", u.Name, err)
			_ = s.RemoveUnitSlot(slot)
			continue
		}
		fmt.Printf("Recruited %s (%d CP)\n", u.Name, u.CP)
	}
	fmt.Printf("Budget left: %d CP\n", s.RemainingUnitBudget())

	// 3. Save, then share
	fmt.Println("\n--- Step 3: Saving and sharing ---")
	saved := s.SaveCurrentBuild("")
	fmt.Printf("Saved %q (%s)\n", saved.Name, saved.ID)
	doc = s.Document()
	token := share.Encode(models.ShareableOf(doc))
	link, err := share.ShareURL(cfg.ShareBaseURL, token)
	if err != nil {
		log.Fatalf("Failed to build share link: %v", err)
	}
	fmt.Printf("Share link: %s\n", link)

	// 4. Load the link into a fresh store
	other := store.Open(ctx, nil, store.WithLogger(logger))
	b, ok := share.Decode(link)
	if !ok || !other.LoadSharedBuild(b) {
		log.Fatalf("Share link did not decode")
	}
	if models.Snapshot(other.Document()) == "" {
		log.Fatalf("Empty snapshot after loading share link")
	}
	fmt.Printf("Round trip ok: %v\n", models.ShareableOf(other.Document()).Valid())
	fmt.Printf("Store changes: %d, writes: %d\n", changes, mem.Saves())

	// 5. Ask for a review
	if !cfg.AdvisorEnabled() {
		return
	}
	fmt.Println("\n--- Step 4: Requesting a review ---")
	adv, err := advisor.NewAdvisor(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("Failed to create advisor: %v", err)
	}
	defer adv.Close()

	req := advisor.Request{
		Faction:    string(doc.SelectedFaction),
		BuildName:  doc.CurrentBuildName,
		UnitCP:     models.UnitBudgetCP - s.RemainingUnitBudget(),
		UnitBudget: models.UnitBudgetCP,
	}
	state := models.CurrentBaseState(doc)
	for _, c := range models.CurrentBuildingOrder(doc) {
		req.Buildings = append(req.Buildings, cat.BuildingName(state.At(c)))
	}
	for i, id := range doc.UnitSlots[doc.SelectedFaction].Units {
		switch {
		case id == "":
		case i == models.HeroSlotIndex:
			req.Hero = cat.UnitName(doc.SelectedFaction, id)
		default:
			req.Units = append(req.Units, cat.UnitName(doc.SelectedFaction, id))
		}
	}
	review, err := adv.ReviewBuild(ctx, req)
	if err != nil {
		log.Fatalf("Failed to review build: %v", err)
	}
	fmt.Println(review.Summary)
	for _, sug := range review.Suggestions {
		fmt.Printf("- %s\n", sug)
	}
}
