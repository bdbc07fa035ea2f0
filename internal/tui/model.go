// Package tui provides the Bubble Tea explore interface.
package tui

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/bigramfilter/internal/bigram"
	"github.com/verte-zerg/bigramfilter/internal/stats"
)

const (
	tabScore = iota
	tabTransitions
)

const (
	maxHistory     = 100
	transitionRows = 20
)

var (
	commonStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	rareStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	foreignStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	startStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	clearStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	hashStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))

	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
)

// Options configures the explore UI.
type Options struct {
	// Source labels the model in the header.
	Source string
	// Policy produces the cleartext verdict.
	Policy bigram.Policy
	// PairThreshold marks a transition as rare when highlighting.
	PairThreshold float64
}

type verdict struct {
	word     string
	weighted float64
	joint    float64
	rare     int
	clear    bool
}

// Model implements the Bubble Tea explore UI.
type Model struct {
	scorer *bigram.CachedScorer
	opts   Options

	tabs      []string
	activeTab int

	input        textinput.Model
	history      []verdict
	historyTable table.Model
	transitions  viewport.Model

	width  int
	height int
}

// NewModel constructs an explore UI model.
func NewModel(scorer *bigram.CachedScorer, opts Options) *Model {
	if opts.Policy == nil {
		opts.Policy = bigram.WeightedPolicy{MinProbability: bigram.DefaultMinProbability}
	}
	m := &Model{
		scorer: scorer,
		opts:   opts,
		tabs:   []string{"Score", "Transitions"},
	}
	m.input = textinput.New()
	m.input.Prompt = "Word: "
	m.input.Placeholder = "type a word or paste a hash"
	m.input.CharLimit = 0
	m.input.Cursor.SetMode(cursor.CursorBlink)
	m.input.Focus()
	m.historyTable = table.New(
		table.WithColumns(historyColumns()),
		table.WithHeight(5),
		table.WithFocused(true),
	)
	m.historyTable.SetStyles(historyTableStyles())
	m.transitions = viewport.New(0, 0)
	m.renderTransitions()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyTab, tea.KeyShiftTab:
			m.moveTab()
			return m, tea.ClearScreen
		}
		if m.activeTab == tabTransitions {
			if msg.String() == "q" {
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.transitions, cmd = m.transitions.Update(msg)
			return m, cmd
		}
		switch msg.Type {
		case tea.KeyEnter:
			m.commit()
			return m, nil
		case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.historyTable, cmd = m.historyTable.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	header := padLines(m.renderTabs(), m.width) + "\n" + m.renderSummary()
	footer := headerStyle.Render("enter: keep  tab: switch view  up/down: scroll  esc: quit")
	var body string
	if m.activeTab == tabTransitions {
		body = m.transitions.View()
	} else {
		body = m.renderScore()
	}
	if m.width == 0 || m.height == 0 {
		return strings.Join([]string{header, body, footer}, "\n")
	}
	headerHeight := lipgloss.Height(header)
	bodyHeight := maxInt(1, m.height-headerHeight-1)
	return strings.Join([]string{
		fitLines(header, m.width, headerHeight),
		fitLines(body, m.width, bodyHeight),
		fitLines(footer, m.width, 1),
	}, "\n")
}

func (m *Model) evaluate(word string) verdict {
	bm := m.scorer.Model()
	v := verdict{
		word:     word,
		weighted: m.scorer.WeightedSliceProbability(word),
		joint:    bm.JointSliceProbability(word),
		rare:     bm.RareTransitions(word, m.opts.PairThreshold),
	}
	if p, ok := m.opts.Policy.(bigram.WeightedPolicy); ok {
		v.clear = m.scorer.IsWordCleartext(word, p.MinProbability)
	} else {
		v.clear = m.opts.Policy.Cleartext(bm, word)
	}
	return v
}

func (m *Model) commit() {
	word := m.input.Value()
	if word == "" {
		return
	}
	m.history = append([]verdict{m.evaluate(word)}, m.history...)
	if len(m.history) > maxHistory {
		m.history = m.history[:maxHistory]
	}
	m.historyTable.SetRows(historyRows(m.history))
	m.input.Reset()
}

func (m *Model) moveTab() {
	m.activeTab = (m.activeTab + 1) % len(m.tabs)
	if m.activeTab == tabScore {
		m.input.Focus()
		m.historyTable.Focus()
		return
	}
	m.input.Blur()
	m.historyTable.Blur()
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	promptWidth := lipgloss.Width(m.input.Prompt)
	m.input.Width = maxInt(10, m.width-promptWidth-2)
	m.historyTable.SetWidth(m.width)
	m.historyTable.SetHeight(maxInt(3, m.height-12))
	m.transitions.Width = m.width
	m.transitions.Height = maxInt(1, m.height-5)
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderSummary() string {
	bm := m.scorer.Model()
	summary := fmt.Sprintf("Model: %s  charset=%d  transitions=%d  policy=%s",
		m.opts.Source, bm.Charset().Len(), bm.Total(), m.opts.Policy)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderScore() string {
	lines := []string{m.input.View(), ""}
	word := m.input.Value()
	if word != "" {
		contentWidth := m.width
		if contentWidth > 0 {
			contentWidth = maxInt(1, contentWidth-2)
		}
		lines = append(lines,
			wrapStyledRunes(buildStyledRunes(m.scorer.Model(), word, m.opts.PairThreshold), contentWidth),
			renderVerdict(m.evaluate(word)),
		)
	} else {
		lines = append(lines, "", "")
	}
	lines = append(lines, "")
	if len(m.history) == 0 {
		lines = append(lines, headerStyle.Render("No words kept yet."))
	} else {
		lines = append(lines, m.historyTable.View())
	}
	return strings.Join(lines, "\n")
}

func renderVerdict(v verdict) string {
	label := hashStyle.Render("HASHED")
	if v.clear {
		label = clearStyle.Render("CLEARTEXT")
	}
	return fmt.Sprintf("Weighted %.6f · Joint %.3g · Rare %d · %s", v.weighted, v.joint, v.rare, label)
}

func (m *Model) renderTransitions() {
	bm := m.scorer.Model()
	var buf bytes.Buffer
	if err := stats.RenderTopTable(&buf, "Most frequent", stats.TopTransitions(bm, transitionRows), bm.HasCounts()); err != nil {
		m.transitions.SetContent("Failed to render transitions.")
		return
	}
	if err := stats.RenderTopTable(&buf, "Least frequent (seen)", stats.WeakTransitions(bm, transitionRows), bm.HasCounts()); err != nil {
		m.transitions.SetContent("Failed to render transitions.")
		return
	}
	m.transitions.SetContent(buf.String())
}

func historyColumns() []table.Column {
	return []table.Column{
		{Title: "Word", Width: 28},
		{Title: "Weighted", Width: 10},
		{Title: "Joint", Width: 10},
		{Title: "Rare", Width: 5},
		{Title: "Verdict", Width: 9},
	}
}

func historyRows(history []verdict) []table.Row {
	rows := make([]table.Row, 0, len(history))
	for _, v := range history {
		label := "hash"
		if v.clear {
			label = "clear"
		}
		rows = append(rows, table.Row{
			truncateLine(v.word, 28),
			strconv.FormatFloat(v.weighted, 'f', 6, 64),
			strconv.FormatFloat(v.joint, 'g', 3, 64),
			strconv.Itoa(v.rare),
			label,
		})
	}
	return rows
}

func historyTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}
