package main

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vea-lang/vea/vea"
)

var (
	accentColor    = lipgloss.Color("#3B82F6")
	successColor   = lipgloss.Color("#10B981")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	highlightColor = lipgloss.Color("#F59E0B")

	promptStyle   = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	resultStyle   = lipgloss.NewStyle().Foreground(successColor)
	errorStyle    = lipgloss.NewStyle().Foreground(errorColor)
	mutedStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	titleStyle    = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	headerStyle   = titleStyle.Padding(0, 1)
	helpKeyStyle  = lipgloss.NewStyle().Foreground(highlightColor)
	helpDescStyle = lipgloss.NewStyle().Foreground(mutedColor)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)
)

type entryKind int

const (
	entryResult entryKind = iota
	entryError
	entryNote
)

type transcriptEntry struct {
	input  string
	output string
	kind   entryKind
}

// replModel is the full-screen REPL. Statements that end early (an open
// block, a dangling operator) are held in pending until they complete.
type replModel struct {
	input      textinput.Model
	config     cliConfig
	session    *vea.Session
	transcript []transcriptEntry
	recall     []string
	recallIdx  int
	pending    []string
	width      int
	height     int
	showHelp   bool
	showVars   bool
	quitting   bool
	ready      bool
}

type keyMap struct {
	Prev     key.Binding
	Next     key.Binding
	Submit   key.Binding
	Quit     key.Binding
	Clear    key.Binding
	Complete key.Binding
	Vars     key.Binding
	Help     key.Binding
}

var keys = keyMap{
	Prev:     key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "previous input")),
	Next:     key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "next input")),
	Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
	Quit:     key.NewBinding(key.WithKeys("ctrl+c", "ctrl+d"), key.WithHelp("ctrl+c", "quit")),
	Clear:    key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
	Complete: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "complete")),
	Vars:     key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "vars")),
	Help:     key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "help")),
}

func (k keyMap) footer() []key.Binding {
	return []key.Binding{k.Help, k.Vars, k.Clear, k.Quit}
}

func (k keyMap) all() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Submit, k.Complete, k.Vars, k.Help, k.Clear, k.Quit}
}

var replCommands = []struct {
	name string
	desc string
}{
	{":help", "toggle this panel"},
	{":vars", "toggle the variables panel"},
	{":load <file>", "run a file in this session"},
	{":clear", "clear the transcript"},
	{":reset", "drop every binding"},
	{":quit", "exit"},
}

func newREPLModel(cfg cliConfig) replModel {
	in := textinput.New()
	in.Placeholder = "let x = 1"
	in.Focus()
	in.CharLimit = 500
	in.Width = 60
	in.PromptStyle = promptStyle
	in.Prompt = promptMain

	// the full-screen UI owns the terminal, so engine logs are dropped
	engine := vea.MustNewEngine(cfg.engineConfig(slog.New(slog.DiscardHandler)))

	return replModel{
		input:     in,
		config:    cfg,
		session:   engine.NewSession(),
		recallIdx: -1,
	}
}

func (m replModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(10, msg.Width-10)
		m.ready = true
		return m, nil
	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m replModel) handleKey(msg tea.KeyMsg) (replModel, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit, true
	case key.Matches(msg, keys.Submit):
		next, cmd := m.submit()
		return next, cmd, true
	case key.Matches(msg, keys.Clear):
		m.transcript = nil
	case key.Matches(msg, keys.Vars):
		m.showVars = !m.showVars
	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, keys.Prev):
		m = m.recallStep(-1)
	case key.Matches(msg, keys.Next):
		m = m.recallStep(1)
	case key.Matches(msg, keys.Complete):
		m = m.handleAutocomplete()
	default:
		return m, nil, false
	}
	return m, nil, true
}

func (m replModel) submit() (replModel, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	m.recallIdx = -1
	if line == "" && len(m.pending) == 0 {
		return m, nil
	}
	if len(m.pending) == 0 && strings.HasPrefix(line, ":") {
		return m.handleCommand(line)
	}

	m.pending = append(m.pending, line)
	src := strings.Join(m.pending, "\n")
	if !compiles(completeStatement(src)) && needsMoreInput(src) {
		m.input.Prompt = promptCont
		return m, nil
	}
	m.pending = nil
	m.input.Prompt = promptMain

	output, isErr := m.evaluate(src)
	kind := entryResult
	if isErr {
		kind = entryError
	}
	m.transcript = append(m.transcript, transcriptEntry{input: src, output: output, kind: kind})
	m.recall = append(m.recall, src)
	return m, nil
}

// recallStep moves through earlier inputs; stepping past the newest one
// clears the prompt.
func (m replModel) recallStep(dir int) replModel {
	if len(m.recall) == 0 || (m.recallIdx == -1 && dir > 0) {
		return m
	}
	if m.recallIdx == -1 {
		m.recallIdx = len(m.recall)
	}
	m.recallIdx = max(0, m.recallIdx+dir)
	if m.recallIdx >= len(m.recall) {
		m.recallIdx = -1
		m.input.SetValue("")
		return m
	}
	m.input.SetValue(m.recall[m.recallIdx])
	m.input.CursorEnd()
	return m
}

func (m replModel) handleCommand(input string) (replModel, tea.Cmd) {
	parts := strings.Fields(input)
	note := func(text string, kind entryKind) {
		m.transcript = append(m.transcript, transcriptEntry{input: input, output: text, kind: kind})
	}

	switch parts[0] {
	case ":help", ":h":
		m.showHelp = !m.showHelp
	case ":vars", ":v":
		m.showVars = !m.showVars
	case ":clear", ":c":
		m.transcript = nil
	case ":reset", ":r":
		m.session.Reset()
		note("Environment reset", entryNote)
	case ":load", ":l":
		_, source, err := readScript("repl :load", parts[1:])
		if err != nil {
			note(err.Error(), entryError)
			break
		}
		output, isErr := m.evaluate(source)
		kind := entryResult
		if isErr {
			kind = entryError
		}
		note(output, kind)
	case ":quit", ":q":
		m.quitting = true
		return m, tea.Quit
	default:
		note(fmt.Sprintf("Unknown command: %s", parts[0]), entryError)
	}
	return m, nil
}

func (m replModel) handleAutocomplete() replModel {
	value := m.input.Value()
	start := len(value)
	for start > 0 && isWordRune(rune(value[start-1])) {
		start--
	}
	word := value[start:]
	if word == "" {
		return m
	}

	matches := completionsFor(word, m.session.Names())
	switch len(matches) {
	case 0:
	case 1:
		m.input.SetValue(value[:start] + matches[0])
		m.input.CursorEnd()
	default:
		m.transcript = append(m.transcript, transcriptEntry{
			output: "Completions: " + strings.Join(matches, ", "),
			kind:   entryNote,
		})
	}
	return m
}

// completionsFor returns keywords and bound names starting with prefix.
func completionsFor(prefix string, names []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, candidate := range append(vea.Keywords(), names...) {
		if !strings.HasPrefix(candidate, prefix) {
			continue
		}
		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
	}
	sort.Strings(out)
	return out
}

// evaluate runs source in the session. A missing trailing semicolon is
// supplied, so `let x = 1` works as typed.
func (m replModel) evaluate(source string) (string, bool) {
	ctx, cancel := m.config.runContext()
	defer cancel()

	output, err := m.session.Eval(ctx, completeStatement(source))
	if err != nil {
		if output != "" {
			return output + "\n" + err.Error(), true
		}
		return err.Error(), true
	}
	if output == "" {
		return "ok", false
	}
	return output, false
}

func completeStatement(input string) string {
	trimmed := strings.TrimSpace(input)
	if strings.HasSuffix(trimmed, ";") || strings.HasSuffix(trimmed, "}") {
		return trimmed
	}
	return trimmed + ";"
}

func (m replModel) View() string {
	if m.quitting {
		return mutedStyle.Render("bye\n")
	}
	if !m.ready {
		return "starting vea..."
	}

	bindings := m.session.Bindings()
	var panels []string
	if m.showVars {
		panels = append(panels, renderVarsPanel(bindings))
	}
	if m.showHelp {
		panels = append(panels, renderHelpPanel())
	}
	panelHeight := 0
	for _, panel := range panels {
		panelHeight += lipgloss.Height(panel)
	}

	rule := mutedStyle.Render(strings.Repeat("─", max(0, min(m.width-2, 60))))
	sections := []string{
		headerStyle.Render("vea") + mutedStyle.Render(m.session.Engine().ConfigSummary()),
		rule,
		m.renderTranscript(max(1, m.height-panelHeight-6)),
	}
	sections = append(sections, panels...)

	input := m.input.View()
	if len(m.pending) > 0 {
		input = mutedStyle.Render(strings.Join(m.pending, "\n")) + "\n" + input
	}
	sections = append(sections, input, renderFooter(keys.footer()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderTranscript draws the newest entries that fit in height lines.
func (m replModel) renderTranscript(height int) string {
	var lines []string
	for _, entry := range m.transcript {
		if entry.input != "" {
			for i, line := range strings.Split(entry.input, "\n") {
				marker := "  › "
				if i > 0 {
					marker = "  · "
				}
				lines = append(lines, mutedStyle.Render(marker)+line)
			}
		}
		switch entry.kind {
		case entryError:
			lines = append(lines, "  "+errorStyle.Render("✗ "+entry.output))
		case entryNote:
			lines = append(lines, "  "+mutedStyle.Render(entry.output))
		default:
			lines = append(lines, "  "+resultStyle.Render("→ "+entry.output))
		}
	}
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	return strings.Join(lines, "\n")
}

func renderFooter(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		help := b.Help()
		parts = append(parts, helpKeyStyle.Render(help.Key)+" "+helpDescStyle.Render(help.Desc))
	}
	return strings.Join(parts, "  ")
}

func renderVarsPanel(bindings map[string]vea.Value) string {
	if len(bindings) == 0 {
		return panelStyle.Render(mutedStyle.Render("No variables defined"))
	}

	names := make([]string, 0, len(bindings))
	width := 0
	for name := range bindings {
		names = append(names, name)
		width = max(width, len(name))
	}
	sort.Strings(names)

	nameStyle := lipgloss.NewStyle().Foreground(highlightColor).Width(width)
	kindStyle := mutedStyle.Width(8)
	lines := []string{titleStyle.Render("Variables")}
	for _, name := range names {
		value := bindings[name]
		lines = append(lines, fmt.Sprintf("  %s  %s %s",
			nameStyle.Render(name), kindStyle.Render(value.Kind().String()), value.Inspect()))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func renderHelpPanel() string {
	lines := []string{titleStyle.Render("Keys")}
	for _, b := range keys.all() {
		help := b.Help()
		lines = append(lines, fmt.Sprintf("  %s %s", helpKeyStyle.Render(fmt.Sprintf("%-14s", help.Key)), helpDescStyle.Render(help.Desc)))
	}
	lines = append(lines, "", titleStyle.Render("Commands"))
	for _, c := range replCommands {
		lines = append(lines, fmt.Sprintf("  %s %s", helpKeyStyle.Render(fmt.Sprintf("%-14s", c.name)), helpDescStyle.Render(c.desc)))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func runREPL(cfg cliConfig) error {
	_, err := tea.NewProgram(newREPLModel(cfg), tea.WithAltScreen()).Run()
	return err
}
