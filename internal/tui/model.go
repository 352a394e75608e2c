// Package tui provides the Bubble Tea training interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuivocab/internal/grader"
	"github.com/verte-zerg/tuivocab/internal/model"
	"github.com/verte-zerg/tuivocab/internal/stats"
	"github.com/verte-zerg/tuivocab/internal/training"
)

const eventBuffer = 16

type mode int

const (
	modePicker mode = iota
	modeSettings
	modeTraining
)

var (
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#73D13D"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	termStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	resultStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	clockStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

// Catalog provides the word sets offered for training.
type Catalog interface {
	ListWordSets(ctx context.Context) (map[string]model.SetInfo, error)
	LoadWordSet(ctx context.Context, name string) (*model.WordSet, error)
}

// Options configures the training UI.
type Options struct {
	Catalog    Catalog
	Recorder   training.Recorder
	Logger     *slog.Logger
	Config     model.SchedulerConfig
	InitialSet string
	// SaveConfig persists settings edited in the UI. Nil disables saving.
	SaveConfig func(model.SchedulerConfig) error
}

type setsLoadedMsg struct {
	names []string
	sets  map[string]model.SetInfo
}

type startedMsg struct {
	session *training.Session
	events  <-chan training.Event
	set     *model.WordSet
}

type eventMsg struct {
	events <-chan training.Event
	event  training.Event
}

type eventsClosedMsg struct {
	events <-chan training.Event
}

type gradedMsg struct {
	seq    int
	score  model.Score
	review []reviewItem
	err    error
}

type configSavedMsg struct {
	err error
}

type errMsg struct {
	err error
}

// Model implements the Bubble Tea training UI.
type Model struct {
	opts Options
	cfg  model.SchedulerConfig
	mode mode

	width  int
	height int

	sets     map[string]model.SetInfo
	picker   table.Model
	settings []textinput.Model
	focus    int

	session *training.Session
	events  <-chan training.Event
	setName string
	elapsed int
	batch   *model.Batch
	graded  bool
	answers []textinput.Model
	result  string
	review  []reviewItem

	status string
	errMsg string
}

// NewModel constructs a training TUI model.
func NewModel(opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	m := &Model{
		opts:   opts,
		cfg:    opts.Config,
		picker: newPicker(),
	}
	m.settings = []textinput.Model{
		newInput("Interval (seconds): "),
		newInput("Batch size (0 = whole set): "),
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.loadSets()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.picker.SetWidth(msg.Width)
		m.picker.SetHeight(max(3, msg.Height-6))
		return m, nil
	case setsLoadedMsg:
		m.sets = msg.sets
		m.picker.SetRows(pickerRows(msg.names, msg.sets))
		if m.opts.InitialSet != "" {
			name := m.opts.InitialSet
			m.opts.InitialSet = ""
			return m, m.startTraining(name)
		}
		return m, nil
	case startedMsg:
		m.stopTraining()
		m.session = msg.session
		m.events = msg.events
		m.setName = msg.set.Name
		m.mode = modeTraining
		m.elapsed = 0
		m.batch = nil
		m.result = ""
		m.review = nil
		m.errMsg = ""
		return m, waitForEvent(msg.events)
	case eventMsg:
		if msg.events != m.events {
			return m, nil
		}
		switch msg.event.Type {
		case training.EventBatchReady:
			cmd := m.showBatch(msg.event.Batch)
			return m, tea.Batch(cmd, waitForEvent(m.events))
		case training.EventElapsedTick:
			m.elapsed = msg.event.Elapsed
		}
		return m, waitForEvent(m.events)
	case eventsClosedMsg:
		return m, nil
	case gradedMsg:
		if m.batch == nil || msg.seq != m.batch.Seq {
			return m, nil
		}
		if msg.err != nil {
			if errors.Is(msg.err, training.ErrBatchExpired) {
				m.status = "That batch expired before it was submitted."
				return m, nil
			}
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.graded = true
		m.result = formatResult(msg.score)
		m.review = msg.review
		for i := range m.answers {
			m.answers[i].Blur()
		}
		return m, nil
	case configSavedMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("failed to save settings: %v", msg.err)
		} else {
			m.status = "Settings saved."
		}
		return m, nil
	case errMsg:
		m.errMsg = msg.err.Error()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.stopTraining()
			return m, tea.Quit
		}
		switch m.mode {
		case modeSettings:
			return m.updateSettings(msg)
		case modeTraining:
			return m.updateTraining(msg)
		default:
			return m.updatePicker(msg)
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.mode {
	case modeSettings:
		body = m.viewSettings()
	case modeTraining:
		body = m.viewTraining()
	default:
		body = m.viewPicker()
	}
	var b strings.Builder
	b.WriteString(body)
	if m.status != "" {
		b.WriteString("\n\n" + footerStyle.Render(m.status))
	}
	if m.errMsg != "" {
		b.WriteString("\n\n" + errorStyle.Render(m.errMsg))
	}
	b.WriteString("\n\n" + m.renderFooter())
	if m.width == 0 || m.height == 0 {
		return b.String()
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Left, lipgloss.Top, b.String())
}

// Close releases the running session, if any.
func (m *Model) Close() {
	m.stopTraining()
}

func (m *Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "s":
		return m, m.openSettings()
	case "r":
		return m, m.loadSets()
	case "enter":
		row := m.picker.SelectedRow()
		if len(row) == 0 {
			m.errMsg = training.ErrNoSetSelected.Error()
			return m, nil
		}
		m.errMsg = ""
		m.status = ""
		return m, m.startTraining(row[0])
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m *Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modePicker
		m.errMsg = ""
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.setSettingsFocus(m.focus + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.setSettingsFocus(m.focus - 1)
	case tea.KeyEnter:
		cfg, err := parseSettings(m.settings[0].Value(), m.settings[1].Value())
		if err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.cfg = cfg
		m.mode = modePicker
		m.errMsg = ""
		m.status = fmt.Sprintf("Settings updated: %s.", describeConfig(cfg))
		if m.opts.SaveConfig != nil {
			save := m.opts.SaveConfig
			return m, func() tea.Msg {
				return configSavedMsg{err: save(cfg)}
			}
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.settings[m.focus], cmd = m.settings[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) updateTraining(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.stopTraining()
		m.mode = modePicker
		m.status = fmt.Sprintf("Training stopped after %s.", stats.FormatElapsed(m.elapsed))
		return m, nil
	case tea.KeyCtrlS:
		return m, m.submit()
	case tea.KeyTab, tea.KeyDown:
		return m, m.setAnswerFocus(m.focus + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.setAnswerFocus(m.focus - 1)
	case tea.KeyEnter:
		if m.focus < len(m.answers)-1 {
			return m, m.setAnswerFocus(m.focus + 1)
		}
		return m, m.submit()
	}
	if m.graded || len(m.answers) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.answers[m.focus], cmd = m.answers[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) loadSets() tea.Cmd {
	catalog := m.opts.Catalog
	return func() tea.Msg {
		sets, err := catalog.ListWordSets(context.Background())
		if err != nil {
			return errMsg{err: fmt.Errorf("failed to list word sets: %w", err)}
		}
		names := make([]string, 0, len(sets))
		for name := range sets {
			names = append(names, name)
		}
		sort.Strings(names)
		return setsLoadedMsg{names: names, sets: sets}
	}
}

// startTraining runs outside Update: Start delivers the first batch into the
// subscription before returning.
func (m *Model) startTraining(name string) tea.Cmd {
	m.stopTraining()
	opts := training.Options{Recorder: m.opts.Recorder, Logger: m.opts.Logger}
	catalog := m.opts.Catalog
	cfg := m.cfg
	return func() tea.Msg {
		set, err := catalog.LoadWordSet(context.Background(), name)
		if err != nil {
			return errMsg{err: fmt.Errorf("failed to load word set: %w", err)}
		}
		session := training.New(opts)
		events := session.Subscribe(eventBuffer)
		if err := session.Start(set, cfg); err != nil {
			session.Close()
			return errMsg{err: fmt.Errorf("cannot train %q: %w", name, err)}
		}
		return startedMsg{session: session, events: events, set: set}
	}
}

func (m *Model) stopTraining() {
	if m.session == nil {
		return
	}
	m.session.Close()
	m.session = nil
	m.events = nil
	m.batch = nil
	m.answers = nil
}

func (m *Model) showBatch(batch model.Batch) tea.Cmd {
	m.batch = &batch
	m.graded = false
	m.review = nil
	m.status = ""
	m.answers = make([]textinput.Model, len(batch.Pairs))
	for i, p := range batch.Pairs {
		m.answers[i] = newInput(p.Term + ": ")
		m.answers[i].PromptStyle = termStyle
	}
	m.focus = 0
	return m.setAnswerFocus(0)
}

func (m *Model) submit() tea.Cmd {
	if m.session == nil || m.batch == nil || m.graded {
		return nil
	}
	session := m.session
	batch := *m.batch
	answers := make(map[string]string, len(m.answers))
	for i, p := range batch.Pairs {
		answers[p.Term] = strings.TrimSpace(m.answers[i].Value())
	}
	return func() tea.Msg {
		score, err := session.SubmitBatch(batch.Seq, answers)
		if err != nil {
			return gradedMsg{seq: batch.Seq, err: err}
		}
		review := buildReview(batch.Pairs, answers, grader.Outcomes(batch.Pairs, answers))
		return gradedMsg{seq: batch.Seq, score: score, review: review}
	}
}

func (m *Model) openSettings() tea.Cmd {
	m.mode = modeSettings
	m.errMsg = ""
	m.settings[0].SetValue(strconv.Itoa(m.cfg.IntervalSeconds))
	m.settings[1].SetValue(strconv.Itoa(m.cfg.BatchSize))
	return m.setSettingsFocus(0)
}

func (m *Model) setSettingsFocus(idx int) tea.Cmd {
	m.focus = wrapIndex(idx, len(m.settings))
	return focusOnly(m.settings, m.focus)
}

func (m *Model) setAnswerFocus(idx int) tea.Cmd {
	if len(m.answers) == 0 || m.graded {
		return nil
	}
	m.focus = wrapIndex(idx, len(m.answers))
	return focusOnly(m.answers, m.focus)
}

func focusOnly(inputs []textinput.Model, idx int) tea.Cmd {
	var cmd tea.Cmd
	for i := range inputs {
		if i == idx {
			cmd = inputs[i].Focus()
		} else {
			inputs[i].Blur()
		}
	}
	return cmd
}

func wrapIndex(idx, count int) int {
	if count == 0 {
		return 0
	}
	return ((idx % count) + count) % count
}

func (m *Model) viewPicker() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Word sets"))
	b.WriteString("\n\n")
	if len(m.sets) == 0 {
		b.WriteString("No word sets yet. Create one with `tuivocab set add` or `tuivocab import`.")
	} else {
		b.WriteString(m.picker.View())
	}
	b.WriteString("\n\n")
	b.WriteString(clockStyle.Render("Settings: " + describeConfig(m.cfg)))
	return b.String()
}

func (m *Model) viewSettings() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Training settings"))
	b.WriteString("\n\n")
	for _, input := range m.settings {
		b.WriteString(input.View())
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) viewTraining() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.setName))
	b.WriteString("  ")
	b.WriteString(clockStyle.Render(stats.FormatElapsed(m.elapsed)))
	b.WriteString("\n\n")
	if m.batch == nil {
		b.WriteString("Waiting for the next batch...")
		return b.String()
	}
	if m.graded {
		b.WriteString(renderReview(m.review, m.contentWidth()))
		b.WriteString("\n\n")
		b.WriteString(resultStyle.Render(m.result))
		b.WriteString("\n")
		b.WriteString(clockStyle.Render(fmt.Sprintf("Next batch in up to %ds.", m.cfg.IntervalSeconds)))
		return b.String()
	}
	for _, input := range m.answers {
		b.WriteString(input.View())
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderFooter() string {
	var help string
	switch m.mode {
	case modeSettings:
		help = "tab next · enter apply · esc cancel"
	case modeTraining:
		help = "tab next · enter/ctrl+s submit · esc stop · ctrl+c quit"
	default:
		help = "↑/↓ select · enter train · s settings · r reload · q quit"
	}
	return footerStyle.Render(help)
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 0
	}
	return max(20, m.width-2)
}

func newPicker() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Name", Width: 24},
			{Title: "Description", Width: 48},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#F0F0F0")).
		Background(lipgloss.Color("#3A3A3A")).
		Bold(true)
	t.SetStyles(styles)
	return t
}

func pickerRows(names []string, sets map[string]model.SetInfo) []table.Row {
	rows := make([]table.Row, 0, len(names))
	for _, name := range names {
		rows = append(rows, table.Row{name, sets[name].Description})
	}
	return rows
}

func newInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	return input
}

func waitForEvent(events <-chan training.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return eventsClosedMsg{events: events}
		}
		return eventMsg{events: events, event: event}
	}
}

func parseSettings(intervalInput, batchInput string) (model.SchedulerConfig, error) {
	interval, err := strconv.Atoi(strings.TrimSpace(intervalInput))
	if err != nil {
		return model.SchedulerConfig{}, fmt.Errorf("interval must be a whole number of seconds")
	}
	batch, err := strconv.Atoi(strings.TrimSpace(batchInput))
	if err != nil {
		return model.SchedulerConfig{}, fmt.Errorf("batch size must be a whole number")
	}
	cfg := model.SchedulerConfig{IntervalSeconds: interval, BatchSize: batch}
	if err := training.ValidateConfig(cfg); err != nil {
		return model.SchedulerConfig{}, err
	}
	return cfg, nil
}

func describeConfig(cfg model.SchedulerConfig) string {
	size := "whole set"
	if cfg.BatchSize > 0 {
		size = fmt.Sprintf("%d words", cfg.BatchSize)
	}
	return fmt.Sprintf("every %ds, %s per batch", cfg.IntervalSeconds, size)
}

func formatResult(score model.Score) string {
	return fmt.Sprintf("You got %d out of %d correct.", score.Correct, score.Total)
}
