// Package tui provides a Bubble Tea terminal user interface for cdm-audio-downloader.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/jwhitmer/cdm-audio-downloader/internal/audio"
	"github.com/jwhitmer/cdm-audio-downloader/internal/config"
	"github.com/jwhitmer/cdm-audio-downloader/internal/download"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateSearching
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state      State
	queryInput textinput.Model
	spinner    spinner.Model
	progress   progress.Model
	settings   *config.Settings
	logs       []LogEntry
	err        error

	ctx    context.Context
	cancel context.CancelFunc

	manager *download.Manager

	// Channel carrying progress events from the manager goroutine.
	events chan download.ProgressEvent

	stats download.Stats

	// Options
	mp3Only bool
	dryRun  bool
	verbose bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(settings *config.Settings) Model {
	ti := textinput.New()
	ti.Placeholder = "fiddle tunes"
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:      StateInput,
		queryInput: ti,
		spinner:    sp,
		progress:   prog,
		settings:   settings,
		logs:       make([]LogEntry, 0),
		mp3Only:    !settings.AcceptAnyAudio(),
		verbose:    settings.Verbose,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries one progress event from the manager.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// SearchDoneMsg is sent when the collection search completes.
	SearchDoneMsg struct {
		Manager *download.Manager
		Found   int
		Err     error
	}

	// RunDoneMsg is sent when the whole batch completes.
	RunDoneMsg struct {
		Stats download.Stats
		Err   error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateSearching || m.state == StateDownloading {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter":
			if m.state == StateInput && m.queryInput.Value() != "" {
				m.state = StateSearching
				return m, tea.Batch(m.startSearch(), m.spinner.Tick)
			}

		case "m":
			if m.state == StateInput {
				m.mp3Only = !m.mp3Only
			}

		case "n":
			if m.state == StateInput {
				m.dryRun = !m.dryRun
			}

		case "v":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a new search
				m.state = StateInput
				m.logs = nil
				m.err = nil
				m.manager = nil
				m.events = nil
				m.stats = download.Stats{}
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.queryInput.SetValue("")
				m.queryInput.Focus()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			cmds = append(cmds, m.waitForEvent())
			break
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		// Keep only last 10 logs
		if len(m.logs) > 10 {
			m.logs = m.logs[len(m.logs)-10:]
		}
		cmds = append(cmds, m.waitForEvent())

	case SearchDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.manager = msg.Manager
			m.state = StateDownloading
			cmds = append(cmds, m.startRun(), m.tickProgress())
		}

	case RunDoneMsg:
		m.stats = msg.Stats
		if msg.Err != nil && m.ctx.Err() == nil {
			m.state = StateError
			m.err = msg.Err
		} else if m.ctx.Err() != nil {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		} else {
			m.state = StateComplete
		}

	case TickMsg:
		if m.manager != nil && m.state == StateDownloading {
			m.stats = m.manager.Stats()

			var percent float64
			if m.stats.Found > 0 {
				processed := m.stats.Resolved + m.stats.Skipped
				percent = float64(processed) / float64(m.stats.Found)
			}
			progressCmd := m.progress.SetPercent(percent)
			cmds = append(cmds, progressCmd, m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.queryInput, cmd = m.queryInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent blocks on the manager event channel and converts the
// next event into a ProgressMsg.
func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: event}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("CONTENTdm Audio Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Collection: %s @ %s", m.settings.DefaultCollection, m.settings.BaseURL)))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateSearching:
		b.WriteString(m.viewSearching())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter search query:"))
	b.WriteString("\n\n")
	b.WriteString(m.queryInput.View())
	b.WriteString("\n\n")

	mp3Check := "[ ]"
	if m.mp3Only {
		mp3Check = "[x]"
	}
	dryRunCheck := "[ ]"
	if m.dryRun {
		dryRunCheck = "[x]"
	}
	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[x]"
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s MP3 only (m)\n", mp3Check))
	b.WriteString(fmt.Sprintf("  %s Dry run (n)\n", dryRunCheck))
	b.WriteString(fmt.Sprintf("  %s Verbose output (v)\n", verboseCheck))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output: %s", m.settings.OutputRoot)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewSearching() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Searching collection..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	processed := m.stats.Resolved + m.stats.Skipped
	var percent float64
	if m.stats.Found > 0 {
		percent = float64(processed) / float64(m.stats.Found)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Records: %d/%d | Downloaded: %d (%s) | Skipped: %d",
		processed,
		m.stats.Found,
		m.stats.Downloaded,
		humanize.Bytes(uint64(m.stats.ReceivedBytes)),
		m.stats.Skipped,
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	tagged := m.stats.TaggedUpdated + m.stats.TaggedOverwritten
	box := boxStyle.Render(fmt.Sprintf(
		"Batch complete.\n\n"+
			"Records found: %d\n"+
			"Downloaded: %d (%s)\n"+
			"Tagged: %d (failures: %d)\n"+
			"Skipped: %d",
		m.stats.Found,
		m.stats.Downloaded,
		humanize.Bytes(uint64(m.stats.ReceivedBytes)),
		tagged,
		m.stats.TagFailures,
		m.stats.Skipped,
	))
	b.WriteString(box)

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: search • m: mp3 only • n: dry run • v: verbose • esc: quit"
	case StateSearching, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new search • q: quit"
	}
	return ""
}

// startSearch builds the manager and runs the collection search.
func (m *Model) startSearch() tea.Cmd {
	query := m.queryInput.Value()

	settings := *m.settings
	if m.mp3Only {
		settings.MediaMode = "mp3"
	} else {
		settings.MediaMode = "audio"
	}
	settings.Verbose = m.verbose

	policy, err := audio.ParsePolicy(settings.RetagPolicy)
	if err != nil {
		return func() tea.Msg { return SearchDoneMsg{Err: err} }
	}

	events := make(chan download.ProgressEvent, 64)
	m.events = events

	manager := download.NewManager(&settings, policy, download.Options{DryRun: m.dryRun},
		func(event download.ProgressEvent) {
			select {
			case events <- event:
			default:
				// Drop rather than block the pipeline when the UI
				// falls behind.
			}
		})

	ctx := m.ctx
	search := func() tea.Msg {
		if err := manager.Initialize(ctx, settings.DefaultCollection, query); err != nil {
			return SearchDoneMsg{Err: err}
		}
		return SearchDoneMsg{Manager: manager, Found: manager.Stats().Found}
	}

	return tea.Batch(search, m.waitForEvent())
}

// startRun runs the batch in the background.
func (m *Model) startRun() tea.Cmd {
	manager := m.manager
	ctx := m.ctx
	events := m.events
	return func() tea.Msg {
		if manager == nil {
			return RunDoneMsg{Err: fmt.Errorf("no manager")}
		}
		err := manager.Run(ctx)
		close(events)
		return RunDoneMsg{Stats: manager.Stats(), Err: err}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
