package tui

import (
	"time"

	"sysmetryd/internal/bus"
	"sysmetryd/internal/config"
	"sysmetryd/internal/engine"
	"sysmetryd/internal/model"
	"sysmetryd/ui/tui/components"
	"sysmetryd/ui/tui/state"
	"sysmetryd/ui/tui/views"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// MainModel is the Bubble Tea Model acting as the Controller. Unlike the
// teacher's pull-based version, it never fetches metrics itself: it
// subscribes to the orchestrator's Snapshot bus (§6) and re-renders
// whenever a new Snapshot arrives.
type MainModel struct {
	snapshots <-chan any
	cfg       *config.Store

	state          state.AppState
	spinner        spinner.Model
	cpuWidget      *components.CPUWidget
	menuCursor     int
	animCursor     float64
	velocity       float64 // Physics velocity
	spring         harmonica.Spring
	consoleScrollY int
	mouseX         int
	mouseY         int
	quitting       bool
	width          int
	height         int
}

// Messages
type AnimateMsg time.Time

// SnapshotMsg carries one Snapshot delivered from the bus.
type SnapshotMsg model.Snapshot

func InitialModel(snapshots <-chan any, cfg *config.Store) MainModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	widget := components.NewCPUWidget(30, 10)

	// Increased frequency (12.0) for faster response and damping (0.9) to
	// prevent overshoot on the menu cursor's spring animation.
	spring := harmonica.NewSpring(harmonica.FPS(60), 12.0, 0.9)

	return MainModel{
		snapshots: snapshots,
		cfg:       cfg,
		spinner:   s,
		cpuWidget: widget,
		spring:    spring,
		state: state.AppState{
			CPUHistory:  widget.History,
			CurrentPage: state.PageMenu,
		},
	}
}

func (m MainModel) Init() tea.Cmd {
	zone.NewGlobal()
	return tea.Batch(
		m.spinner.Tick,
		waitForSnapshot(m.snapshots),
		animateCmd(),
	)
}

func animateCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*16, func(t time.Time) tea.Msg {
		return AnimateMsg(t)
	})
}

// waitForSnapshot blocks on the bus channel and re-arms itself from
// Update, the standard Bubble Tea pattern for an externally-driven
// channel (§6): the program never polls, it just waits.
func waitForSnapshot(ch <-chan any) tea.Cmd {
	return func() tea.Msg {
		payload, ok := <-ch
		if !ok {
			return nil
		}
		snap, ok := payload.(model.Snapshot)
		if !ok {
			return nil
		}
		return SnapshotMsg(snap)
	}
}

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

		if m.state.CurrentPage == state.PageMenu {
			switch msg.String() {
			case "up", "k":
				if m.menuCursor > 0 {
					m.menuCursor--
				}
			case "down", "j":
				if m.menuCursor < 5 {
					m.menuCursor++
				}
			case "enter":
				switch m.menuCursor {
				case 0:
					m.state.CurrentPage = state.PageConsole
				case 1:
					m.state.CurrentPage = state.PageDashboard
				case 2:
					m.state.CurrentPage = state.PageCPU
				case 3:
					m.state.CurrentPage = state.PageDisk
				case 4:
					m.state.CurrentPage = state.PageNetwork
				case 5:
					m.state.CurrentPage = state.PageRAM
				}
			}
			return m, nil
		}

		if m.state.CurrentPage == state.PageConsole {
			switch msg.String() {
			case "up", "k":
				if m.consoleScrollY > 0 {
					m.consoleScrollY--
				}
			case "down", "j":
				m.consoleScrollY++
			}
		}

		if msg.String() == "b" || msg.String() == "esc" || msg.String() == "backspace" {
			m.state.CurrentPage = state.PageMenu
			m.consoleScrollY = 0
			return m, nil
		}

	case AnimateMsg:
		var v float64 = m.velocity
		m.animCursor, v = m.spring.Update(m.animCursor, float64(m.menuCursor), v)
		m.velocity = v
		return m, animateCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		newW := msg.Width/2 - 6
		if newW > 10 {
			m.cpuWidget.Resize(newW, 10)
		}

	case SnapshotMsg:
		snap := model.Snapshot(msg)
		m.state.Stats = snap
		m.state.Results = engine.Evaluate(snap)
		m.state.LastUpdate = time.Now()

		m.cpuWidget.Push(snap.CPU.UsagePercent)
		m.state.CPUHistory = m.cpuWidget.History

		logLine := views.FormatLogLine(snap)
		m.state.ConsoleLogs = append(m.state.ConsoleLogs, logLine)
		if len(m.state.ConsoleLogs) > 100 {
			m.state.ConsoleLogs = m.state.ConsoleLogs[1:]
		}
		return m, waitForSnapshot(m.snapshots)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		m.mouseX = msg.X
		m.mouseY = msg.Y

		if msg.Action == tea.MouseActionRelease && m.state.CurrentPage == state.PageMenu {
			for i := 0; i <= 5; i++ {
				if zone.Get(zoneID(i)).InBounds(msg) {
					m.menuCursor = i
					switch m.menuCursor {
					case 0:
						m.state.CurrentPage = state.PageConsole
					case 1:
						m.state.CurrentPage = state.PageDashboard
					case 2:
						m.state.CurrentPage = state.PageCPU
					case 3:
						m.state.CurrentPage = state.PageDisk
					case 4:
						m.state.CurrentPage = state.PageNetwork
					case 5:
						m.state.CurrentPage = state.PageRAM
					}
					return m, nil
				}
			}
		}
	}

	return m, nil
}

func zoneID(i int) string {
	return views.MenuZoneID(i)
}

func (m MainModel) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	switch m.state.CurrentPage {
	case state.PageMenu:
		return views.RenderMenu(m.width, m.height, m.menuCursor, m.animCursor, m.mouseX, m.mouseY)
	case state.PageDashboard:
		cfg := config.Default()
		if m.cfg != nil {
			cfg = m.cfg.Get()
		}
		return views.RenderDashboard(m.state, m.spinner.View(), m.cpuWidget.View(), cfg)
	case state.PageConsole:
		return views.RenderRawConsole(m.state, m.width, m.height, m.consoleScrollY)
	case state.PageCPU:
		return views.RenderCPU(m.state, m.cpuWidget.View(), m.width, m.height)
	default:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			lipgloss.NewStyle().Bold(true).Render("Detailed View Under Construction\n\nPress 'b' to go back"),
		)
	}
}

// Start runs the Bubble Tea program, subscribing to the bus's Snapshot
// topic for the lifetime of the program and unsubscribing on exit.
func Start(b *bus.Bus, cfg *config.Store) error {
	ch := b.Subscribe(bus.TopicSnapshot)
	defer b.Unsubscribe(bus.TopicSnapshot, ch)

	p := tea.NewProgram(
		InitialModel(ch, cfg),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
