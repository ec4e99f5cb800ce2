package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/spice-planner/internal/advisor"
	"github.com/tatianab/spice-planner/internal/catalog"
	"github.com/tatianab/spice-planner/internal/models"
	"github.com/tatianab/spice-planner/internal/share"
	"github.com/tatianab/spice-planner/internal/store"
)

type sessionState int

const (
	stateBase sessionState = iota
	statePickBuilding
	stateBuilds
	stateUnits
	statePickUnit
	stateResearch
	stateInput
	stateReview
)

type inputPurpose int

const (
	inputSaveAs inputPurpose = iota
	inputRename
)

// Options wires the TUI to its collaborators. Advisor and Shortener may be nil.
type Options struct {
	Store        *store.Store
	Catalog      *catalog.Catalog
	Advisor      *advisor.Advisor
	Shortener    share.Shortener
	ShareBaseURL string
	Logger       *slog.Logger
}

type model struct {
	opts  Options
	state sessionState
	doc   *models.Document

	cursor      int
	pickIndex   int
	buildIndex  int
	slotIndex   int
	researchIdx int
	research    []string

	purpose   inputPurpose
	renameID  string
	textInput textinput.Model
	viewport  viewport.Model

	status  string
	width   int
	height  int
	pending int
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	cellStyle = lipgloss.NewStyle().
			Width(18).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			Foreground(lipgloss.Color("#EEEEEE"))

	cursorStyle = cellStyle.
			BorderForeground(lipgloss.Color("#FFA500")).
			Bold(true)

	groupStyle = lipgloss.NewStyle().
			PaddingRight(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	sideStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	dirtyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#D75F5F"))
	savedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAF5F"))
)

func NewModel(opts Options) model {
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 40

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return model{
		opts:      opts,
		state:     stateBase,
		doc:       opts.Store.Document(),
		textInput: ti,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

type shareReadyMsg struct {
	seq int
	url string
}

type reviewMsg struct {
	seq    int
	review *advisor.Review
	err    error
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-4, 20)
		m.viewport.Height = max(msg.Height-8, 5)
		return m, nil

	case shareReadyMsg:
		if msg.seq != m.pending {
			return m, nil
		}
		if err := clipboard.WriteAll(msg.url); err != nil {
			m.opts.Logger.Debug("clipboard write failed", "error", err)
			m.status = "Share link: " + msg.url
		} else {
			m.status = "Share link copied: " + msg.url
		}
		return m, nil

	case reviewMsg:
		if msg.seq != m.pending {
			return m, nil
		}
		if msg.err != nil {
			m.opts.Logger.Warn("build review failed", "error", msg.err)
			m.status = fmt.Sprintf("Review failed: %v", msg.err)
			m.state = stateBase
			return m, nil
		}
		if m.viewport.Width == 0 {
			m.viewport = viewport.New(max(m.width-4, 60), max(m.height-8, 10))
		}
		m.viewport.SetContent(renderReview(msg.review, m.viewport.Width))
		m.state = stateReview
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateInput:
		return m.updateInput(msg)
	case statePickBuilding:
		return m.updatePickBuilding(msg)
	case stateBuilds:
		return m.updateBuilds(msg)
	case stateUnits:
		return m.updateUnits(msg)
	case statePickUnit:
		return m.updatePickUnit(msg)
	case stateResearch:
		return m.updateResearch(msg)
	case stateReview:
		if msg.Type == tea.KeyEsc || msg.String() == "q" {
			m.state = stateBase
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m.updateBase(msg)
}

func (m model) updateBase(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cells := cellsOf(models.CurrentLayout(m.doc))
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "left", "h", "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "right", "l", "down", "j":
		if m.cursor < len(cells)-1 {
			m.cursor++
		}
	case "enter":
		m.pickIndex = 0
		m.state = statePickBuilding
	case "x", "backspace", "delete":
		if m.cursor < len(cells) {
			c := cells[m.cursor]
			m.opts.Store.SetMainBaseCell(c.Row, c.Group, c.Cell, "")
		}
	case "f", "F":
		m.opts.Store.SwitchFaction(nextFaction(m.doc.SelectedFaction, msg.String() == "F"))
		m.cursor = 0
		m.status = ""
	case "s":
		saved := m.opts.Store.SaveCurrentBuild("")
		m.status = fmt.Sprintf("Saved %q", saved.Name)
	case "S":
		m.purpose = inputSaveAs
		return m.beginInput("Save as", m.doc.CurrentBuildName)
	case "n":
		m.opts.Store.ResetToDefault()
		m.cursor = 0
		m.status = "Started a new build"
	case "b":
		m.buildIndex = 0
		m.state = stateBuilds
	case "u":
		m.slotIndex = models.HeroSlotIndex
		m.state = stateUnits
	case "r":
		m.state = stateResearch
	case "p":
		return m.share()
	case "a":
		return m.review()
	}
	return m.refresh(), nil
}

func (m model) updatePickBuilding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	options := m.opts.Catalog.AvailableBuildings(models.UsedBuildingIDs(m.doc))
	switch msg.String() {
	case "esc", "q":
		m.state = stateBase
	case "up", "k":
		if m.pickIndex > 0 {
			m.pickIndex--
		}
	case "down", "j":
		if m.pickIndex < len(options)-1 {
			m.pickIndex++
		}
	case "enter":
		cells := cellsOf(models.CurrentLayout(m.doc))
		if m.pickIndex < len(options) && m.cursor < len(cells) {
			c := cells[m.cursor]
			m.opts.Store.SetMainBaseCell(c.Row, c.Group, c.Cell, options[m.pickIndex].ID)
		}
		m.state = stateBase
	}
	return m.refresh(), nil
}

func (m model) updateBuilds(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	builds := m.doc.SavedBuilds
	switch msg.String() {
	case "esc", "q":
		m.state = stateBase
	case "up", "k":
		if m.buildIndex > 0 {
			m.buildIndex--
		}
	case "down", "j":
		if m.buildIndex < len(builds)-1 {
			m.buildIndex++
		}
	case "enter":
		if m.buildIndex < len(builds) {
			m.opts.Store.LoadBuild(builds[m.buildIndex].ID)
			m.status = fmt.Sprintf("Loaded %q", builds[m.buildIndex].Name)
			m.cursor = 0
			m.state = stateBase
		}
	case "d":
		if m.buildIndex < len(builds) {
			m.opts.Store.DeleteBuild(builds[m.buildIndex].ID)
			m.status = fmt.Sprintf("Deleted %q", builds[m.buildIndex].Name)
		}
	case "e":
		if m.buildIndex < len(builds) {
			m.purpose = inputRename
			m.renameID = builds[m.buildIndex].ID
			return m.beginInput("Rename", builds[m.buildIndex].Name)
		}
	}
	m = m.refresh()
	m.buildIndex = min(m.buildIndex, max(len(m.doc.SavedBuilds)-1, 0))
	return m, nil
}

func (m model) updateUnits(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	slots := m.doc.UnitSlots[m.doc.SelectedFaction]
	switch msg.String() {
	case "esc", "q":
		m.state = stateBase
	case "left", "h":
		if m.slotIndex > models.HeroSlotIndex {
			m.slotIndex--
		}
	case "right", "l":
		if m.slotIndex < slots.Count-1 {
			m.slotIndex++
		}
	case "+", "a":
		if err := m.opts.Store.AddUnitSlot(); err != nil {
			m.status = "Roster is full"
		}
	case "x", "backspace":
		_ = m.opts.Store.SetUnitSlot(m.slotIndex, "")
	case "D":
		if err := m.opts.Store.RemoveUnitSlot(m.slotIndex); err == nil && m.slotIndex > models.HeroSlotIndex {
			m.slotIndex--
		}
	case "enter":
		m.pickIndex = 0
		m.state = statePickUnit
	}
	return m.refresh(), nil
}

func (m model) updatePickUnit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ids, _ := m.unitChoices()
	switch msg.String() {
	case "esc", "q":
		m.state = stateUnits
	case "up", "k":
		if m.pickIndex > 0 {
			m.pickIndex--
		}
	case "down", "j":
		if m.pickIndex < len(ids)-1 {
			m.pickIndex++
		}
	case "enter":
		if m.pickIndex < len(ids) {
			if err := m.opts.Store.SetUnitSlot(m.slotIndex, ids[m.pickIndex]); err != nil {
				m.status = fmt.Sprintf("Cannot place unit: %v", err)
			}
		}
		m.state = stateUnits
	}
	return m.refresh(), nil
}

func (m model) updateResearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	devs := m.opts.Catalog.Developments
	switch msg.String() {
	case "esc", "q":
		m.state = stateBase
	case "up", "k":
		if m.researchIdx > 0 {
			m.researchIdx--
		}
	case "down", "j":
		if m.researchIdx < len(devs)-1 {
			m.researchIdx++
		}
	case "enter":
		if m.researchIdx < len(devs) {
			m.research = toggle(m.research, devs[m.researchIdx].ID)
		}
	case "c":
		m.research = nil
	}
	return m, nil
}

func (m model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.textInput.Blur()
		m.state = m.afterInput()
		return m, nil
	case tea.KeyEnter:
		value := m.textInput.Value()
		m.textInput.Blur()
		switch m.purpose {
		case inputSaveAs:
			saved := m.opts.Store.SaveCurrentBuild(value)
			m.status = fmt.Sprintf("Saved %q", saved.Name)
		case inputRename:
			if m.opts.Store.RenameBuild(m.renameID, value) {
				m.status = fmt.Sprintf("Renamed to %q", strings.TrimSpace(value))
			}
		}
		m.state = m.afterInput()
		return m.refresh(), nil
	}
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m model) beginInput(prompt, value string) (tea.Model, tea.Cmd) {
	m.textInput.Prompt = prompt + ": "
	m.textInput.SetValue(value)
	m.textInput.CursorEnd()
	m.state = stateInput
	return m, m.textInput.Focus()
}

func (m model) afterInput() sessionState {
	if m.purpose == inputRename {
		return stateBuilds
	}
	return stateBase
}

func (m model) refresh() model {
	m.doc = m.opts.Store.Document()
	if cells := cellsOf(models.CurrentLayout(m.doc)); m.cursor >= len(cells) {
		m.cursor = max(len(cells)-1, 0)
	}
	return m
}

// share encodes the live build and resolves a link, preferring a short one.
func (m model) share() (tea.Model, tea.Cmd) {
	token := share.Encode(models.ShareableOf(m.doc))
	longURL, err := share.ShareURL(m.opts.ShareBaseURL, token)
	if err != nil {
		m.status = fmt.Sprintf("Share failed: %v", err)
		return m, nil
	}
	m.pending++
	seq := m.pending
	m.status = "Preparing share link..."
	shortener, logger := m.opts.Shortener, m.opts.Logger
	return m, func() tea.Msg {
		return shareReadyMsg{seq: seq, url: share.PreferShort(context.Background(), shortener, longURL, logger)}
	}
}

func (m model) review() (tea.Model, tea.Cmd) {
	if m.opts.Advisor == nil {
		m.status = "Build review is disabled (set GEMINI_API_KEY)"
		return m, nil
	}
	m.pending++
	seq := m.pending
	m.status = "Asking for a review..."
	req := m.reviewRequest()
	adv := m.opts.Advisor
	return m, func() tea.Msg {
		r, err := adv.ReviewBuild(context.Background(), req)
		return reviewMsg{seq: seq, review: r, err: err}
	}
}

func (m model) reviewRequest() advisor.Request {
	f := m.doc.SelectedFaction
	state := models.CurrentBaseState(m.doc)
	req := advisor.Request{
		Faction:    string(f),
		BuildName:  m.doc.CurrentBuildName,
		UnitBudget: models.UnitBudgetCP,
	}
	for _, c := range models.CurrentBuildingOrder(m.doc) {
		req.Buildings = append(req.Buildings, m.opts.Catalog.BuildingName(state.At(c)))
	}
	slots := m.doc.UnitSlots[f]
	for i, id := range slots.Units {
		switch {
		case id == "":
		case i == models.HeroSlotIndex:
			req.Hero = m.opts.Catalog.UnitName(f, id)
		default:
			req.Units = append(req.Units, m.opts.Catalog.UnitName(f, id))
		}
	}
	req.UnitCP = models.UnitBudgetCP - m.opts.Store.RemainingUnitBudget()
	return req
}

// unitChoices lists the ids and labels selectable for the focused slot.
func (m model) unitChoices() ([]string, []string) {
	f := m.doc.SelectedFaction
	data := m.opts.Catalog.Factions[f]
	var ids, labels []string
	if m.slotIndex == models.HeroSlotIndex {
		for _, h := range data.Heroes {
			ids = append(ids, h.ID)
			labels = append(labels, h.Name)
		}
		return ids, labels
	}
	for _, u := range data.Units {
		ids = append(ids, u.ID)
		labels = append(labels, fmt.Sprintf("%s (%d CP)", u.Name, u.CP))
	}
	return ids, labels
}

func cellsOf(layout models.Layout) []models.Coord {
	var out []models.Coord
	for r, row := range layout {
		for g, count := range row {
			for c := 0; c < count; c++ {
				out = append(out, models.Coord{Row: r, Group: g, Cell: c})
			}
		}
	}
	return out
}

func nextFaction(f models.Faction, backwards bool) models.Faction {
	i := f.Index()
	n := len(models.Factions)
	if backwards {
		return models.Factions[(i-1+n)%n]
	}
	return models.Factions[(i+1)%n]
}

func toggle(list []string, id string) []string {
	for i, v := range list {
		if v == id {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return append(list, id)
}

// Run starts the TUI and blocks until the user quits.
func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
