package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/spice-planner/internal/advisor"
	"github.com/tatianab/spice-planner/internal/models"
	"github.com/tatianab/spice-planner/internal/research"
)

func (m model) View() string {
	var s string

	switch m.state {
	case stateBase, stateInput:
		main := lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderGrid(),
			m.renderSide(),
		)
		parts := []string{m.renderHeader(), main}
		if m.state == stateInput {
			parts = append(parts, "\n"+m.textInput.View())
		}
		parts = append(parts, "\n"+m.renderStatus(),
			helpStyle.Render("arrows: move  enter: place  x: clear  f/F: faction  s/S: save  n: new  b: builds  u: units  r: research  p: share  a: review  q: quit"))
		s = lipgloss.JoinVertical(lipgloss.Left, parts...)

	case statePickBuilding:
		options := m.opts.Catalog.AvailableBuildings(models.UsedBuildingIDs(m.doc))
		labels := make([]string, len(options))
		for i, b := range options {
			labels[i] = b.Name
		}
		s = titleStyle.Render("PLACE BUILDING") + "\n\n" + renderList(labels, m.pickIndex, "(every building is placed)") +
			"\n" + helpStyle.Render("enter: place  esc: back")

	case stateBuilds:
		s = titleStyle.Render("SAVED BUILDS") + "\n\n" + m.renderBuilds() +
			"\n" + m.renderStatus() +
			"\n" + helpStyle.Render("enter: load  e: rename  d: delete  esc: back")

	case stateUnits:
		s = titleStyle.Render("UNITS") + "\n\n" + m.renderUnits() +
			"\n" + m.renderStatus() +
			"\n" + helpStyle.Render("left/right: slot  enter: choose  x: clear  +: add slot  D: remove slot  esc: back")

	case statePickUnit:
		_, labels := m.unitChoices()
		s = titleStyle.Render("CHOOSE UNIT") + "\n\n" + renderList(labels, m.pickIndex, "(no units for this faction)") +
			"\n" + helpStyle.Render("enter: choose  esc: back")

	case stateResearch:
		s = titleStyle.Render("RESEARCH") + "\n\n" + m.renderResearch() +
			"\n" + helpStyle.Render("enter: add/remove  c: clear  esc: back")

	case stateReview:
		s = titleStyle.Render("BUILD REVIEW") + "\n\n" + m.viewport.View() +
			"\n" + helpStyle.Render("esc: back")
	}

	return "\n" + s + "\n"
}

func (m model) renderHeader() string {
	marker := dirtyStyle.Render("unsaved")
	if models.IsBuildUpToDate(m.doc) {
		marker = savedStyle.Render("saved")
	}
	return fmt.Sprintf("%s  %s  [%s]\n",
		titleStyle.Render(strings.ToUpper(string(m.doc.SelectedFaction))),
		m.doc.CurrentBuildName,
		marker,
	)
}

func (m model) renderGrid() string {
	state := models.CurrentBaseState(m.doc)
	cells := cellsOf(models.CurrentLayout(m.doc))
	var focus models.Coord
	if m.cursor < len(cells) {
		focus = cells[m.cursor]
	}

	rows := make([]string, 0, len(state))
	for r, row := range state {
		groups := make([]string, 0, len(row))
		for g, group := range row {
			boxes := make([]string, 0, len(group))
			for c, id := range group {
				coord := models.Coord{Row: r, Group: g, Cell: c}
				label := "·"
				if id != "" {
					label = fmt.Sprintf("%d. %s", models.OrderNumber(m.doc, coord), m.opts.Catalog.BuildingName(id))
				}
				style := cellStyle
				if coord == focus {
					style = cursorStyle
				}
				boxes = append(boxes, style.Render(label))
			}
			groups = append(groups, groupStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, boxes...)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, groups...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m model) renderSide() string {
	var b strings.Builder
	state := models.CurrentBaseState(m.doc)

	b.WriteString(titleStyle.Render("BUILD ORDER") + "\n")
	order := models.CurrentBuildingOrder(m.doc)
	if len(order) == 0 {
		b.WriteString("(empty)\n")
	}
	for i, c := range order {
		fmt.Fprintf(&b, "%2d. %s\n", i+1, m.opts.Catalog.BuildingName(state.At(c)))
	}

	b.WriteString("\n" + titleStyle.Render("ARMY") + "\n")
	fmt.Fprintf(&b, "%d / %d CP left\n", m.opts.Store.RemainingUnitBudget(), models.UnitBudgetCP)
	fmt.Fprintf(&b, "%d saved builds\n", len(m.doc.SavedBuilds))

	return sideStyle.Render(b.String())
}

func (m model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	return m.status
}

func (m model) renderBuilds() string {
	labels := make([]string, len(m.doc.SavedBuilds))
	for i, b := range m.doc.SavedBuilds {
		current := ""
		if b.ID == m.doc.CurrentBuildID {
			current = " *"
		}
		labels[i] = fmt.Sprintf("%s (%s, %s)%s", b.Name, b.SelectedFaction, b.CreatedAt.Local().Format("2006-01-02 15:04"), current)
	}
	return renderList(labels, m.buildIndex, "(no saved builds)")
}

func (m model) renderUnits() string {
	f := m.doc.SelectedFaction
	slots := m.doc.UnitSlots[f]
	var b strings.Builder
	for i := models.HeroSlotIndex; i < slots.Count; i++ {
		label := "(empty)"
		if id := slots.Units[i]; id != "" {
			label = m.opts.Catalog.UnitName(f, id)
			if i != models.HeroSlotIndex {
				label = fmt.Sprintf("%s (%d CP)", label, m.opts.Catalog.UnitCost(f, id))
			}
		}
		if i == models.HeroSlotIndex {
			label = "Hero: " + label
		}
		if i == m.slotIndex {
			b.WriteString(selectedStyle.Render(label) + "\n")
			continue
		}
		b.WriteString("  " + label + "\n")
	}
	fmt.Fprintf(&b, "\n%d / %d CP left\n", m.opts.Store.RemainingUnitBudget(), models.UnitBudgetCP)
	return b.String()
}

func (m model) renderResearch() string {
	devs := m.opts.Catalog.Developments
	lookup := m.opts.Catalog.Development
	picked := make(map[string]int, len(m.research))
	for i, id := range m.research {
		picked[id] = i + 1
	}

	labels := make([]string, len(devs))
	for i, d := range devs {
		mark := "   "
		if n, ok := picked[d.ID]; ok {
			mark = fmt.Sprintf("%2d.", n)
		}
		next := research.CostToResearchNext(d, m.research, lookup)
		labels[i] = fmt.Sprintf("%s %s (tier %d, next %.0f)", mark, d.Name, d.Tier, next)
	}

	var b strings.Builder
	b.WriteString(renderList(labels, m.researchIdx, "(no developments)"))

	total := research.TotalCostOfOrder(m.research, lookup)
	days := research.CostToDays(total, research.DefaultKnowledgePerDay)
	fmt.Fprintf(&b, "\nPlanned: %.0f knowledge, about %s\n", total, formatDays(days))

	if m.researchIdx < len(devs) {
		target := devs[m.researchIdx]
		path := research.MinimumPathOrder(target.ID, lookup)
		if len(path) > 0 {
			names := make([]string, len(path))
			for i, id := range path {
				d, _ := lookup(id)
				names[i] = d.Name
			}
			cost := research.TotalCostOfOrder(append(path, target.ID), lookup)
			fmt.Fprintf(&b, "Shortest path to %s: %s (%.0f knowledge, %s)\n",
				target.Name, strings.Join(names, " > "), cost,
				research.FormatDaysShort(int(math.Ceil(research.CostToDays(cost, research.DefaultKnowledgePerDay)))))
		}
	}
	return b.String()
}

func formatDays(days float64) string {
	if math.IsInf(days, 0) {
		return "never"
	}
	return research.FormatDays(int(math.Ceil(days)))
}

func renderReview(r *advisor.Review, width int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Width(width).Render(r.Summary))
	b.WriteString("\n\n")
	for _, s := range r.Suggestions {
		b.WriteString(lipgloss.NewStyle().Width(width).Render("- " + s))
		b.WriteString("\n")
	}
	return b.String()
}

func renderList(labels []string, selected int, empty string) string {
	if len(labels) == 0 {
		return empty + "\n"
	}
	var b strings.Builder
	for i, label := range labels {
		if i == selected {
			b.WriteString(selectedStyle.Render(label) + "\n")
			continue
		}
		b.WriteString("  " + label + "\n")
	}
	return b.String()
}
