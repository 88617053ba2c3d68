package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/poolhouse/arcticspa/client"
	"github.com/poolhouse/arcticspa/internal/ui"
	"github.com/poolhouse/arcticspa/payload"
	"github.com/poolhouse/arcticspa/protocol"
)

// Watch command flags
var (
	watchInterval time.Duration
	watchOnzen    bool
)

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 2*time.Second, "Refresh interval")
	watchCmd.Flags().BoolVar(&watchOnzen, "onzen", false, "Start with the water chemistry panel open")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live dashboard of spa status",
	Long: `Show a continuously refreshing dashboard of the spa's live status.

The dashboard polls the controller on a fixed interval and renders water
temperature, equipment state, and (toggled with 'o') the Onzen water
chemistry readings. It needs an interactive terminal; for scripting use
'arcticspa status --json' instead.`,
	Example: `  arcticspa watch
  arcticspa watch --spa backyard --interval 5s
  arcticspa watch --onzen`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("watch needs an interactive terminal, use 'arcticspa status --json' for scripting")
	}

	c, err := dialController(cmd)
	if err != nil {
		ui.PrintFailure("Watch", err, connectTroubleshooting())
		return err
	}
	defer c.Disconnect()

	p := tea.NewProgram(newWatchModel(c, watchInterval, watchOnzen), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	return nil
}

// statusMsg carries one poll's results (or its error) into the model.
type statusMsg struct {
	live  *payload.Live
	onzen *payload.OnzenLive
	err   error
	at    time.Time
}

// tickMsg fires when the refresh interval elapses.
type tickMsg time.Time

// watchKeyMap defines keybindings for the dashboard.
type watchKeyMap struct {
	Refresh key.Binding
	Onzen   key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings shown in the mini help view.
func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Onzen, k.Quit}
}

// FullHelp returns keybindings for the expanded help view.
func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Refresh, k.Onzen, k.Quit},
	}
}

var watchKeys = watchKeyMap{
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Onzen: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "chemistry"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Dashboard styles
var (
	watchTitleStyle = lipgloss.NewStyle().
			Foreground(ui.PrimaryColor).
			Bold(true)

	watchStatusStyle = lipgloss.NewStyle().
				Foreground(ui.MutedColor)

	watchErrStyle = lipgloss.NewStyle().
			Foreground(ui.ErrorColor)

	watchLabelStyle = lipgloss.NewStyle().
			Foreground(ui.MutedColor).
			Width(14)

	watchValueStyle = lipgloss.NewStyle().
			Foreground(ui.TextColor)

	watchTempStyle = lipgloss.NewStyle().
			Foreground(ui.SuccessColor).
			Bold(true)

	watchBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.MutedColor).
			Padding(0, 1)
)

// watchModel is the bubbletea model for the live dashboard.
type watchModel struct {
	client   *client.Client
	interval time.Duration

	spinner spinner.Model
	help    help.Model
	keys    watchKeyMap

	width  int
	height int

	showOnzen  bool
	fetching   bool
	live       *payload.Live
	onzen      *payload.OnzenLive
	err        error
	lastUpdate time.Time
}

func newWatchModel(c *client.Client, interval time.Duration, showOnzen bool) watchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ui.PrimaryColor)

	return watchModel{
		client:    c,
		interval:  interval,
		spinner:   s,
		help:      help.New(),
		keys:      watchKeys,
		showOnzen: showOnzen,
		fetching:  true, // Init fires the first poll
	}
}

// Init starts the spinner, the first poll, and the refresh timer.
func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchStatus(), m.tick())
}

// fetchStatus polls the controller off the UI goroutine. The client
// serializes wire access internally, so a timed poll and a user-triggered
// refresh cannot interleave.
func (m watchModel) fetchStatus() tea.Cmd {
	c := m.client
	withOnzen := m.showOnzen
	return func() tea.Msg {
		types := []protocol.MessageType{protocol.MsgTypeLive}
		if withOnzen {
			types = append(types, protocol.MsgTypeOnzenLive)
		}

		msgs, err := c.Poll(context.Background(), client.DefaultPollTimeout, types...)
		if err != nil {
			return statusMsg{err: err, at: time.Now()}
		}

		result := statusMsg{at: time.Now()}
		result.live, _ = msgs[protocol.MsgTypeLive].Body.(*payload.Live)
		if om, ok := msgs[protocol.MsgTypeOnzenLive]; ok {
			result.onzen, _ = om.Body.(*payload.OnzenLive)
		}
		return result
	}
}

// tick schedules the next refresh.
func (m watchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model.
func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Refresh):
			if m.fetching {
				return m, nil
			}
			m.fetching = true
			return m, m.fetchStatus()

		case key.Matches(msg, m.keys.Onzen):
			m.showOnzen = !m.showOnzen
			if !m.showOnzen {
				m.onzen = nil
				return m, nil
			}
			if m.fetching {
				return m, nil
			}
			m.fetching = true
			return m, m.fetchStatus()
		}
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{m.tick()}
		if !m.fetching {
			m.fetching = true
			cmds = append(cmds, m.fetchStatus())
		}
		return m, tea.Batch(cmds...)

	case statusMsg:
		m.fetching = false
		m.lastUpdate = msg.at
		m.err = msg.err
		if msg.err == nil {
			m.live = msg.live
			// A poll answered after a toggle-off must not reopen the panel
			if m.showOnzen {
				m.onzen = msg.onzen
			}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the dashboard.
func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(watchTitleStyle.Render("ARCTIC SPA — " + m.client.Host()))
	b.WriteString("  ")
	switch {
	case m.fetching:
		b.WriteString(m.spinner.View() + watchStatusStyle.Render("refreshing"))
	case m.err != nil:
		b.WriteString(watchErrStyle.Render(ui.FailureMarker + " " + m.err.Error()))
	case !m.lastUpdate.IsZero():
		age := time.Since(m.lastUpdate).Round(time.Second)
		b.WriteString(watchStatusStyle.Render(fmt.Sprintf("updated %s ago", age)))
	}
	b.WriteString("\n\n")

	if m.live != nil {
		panels := []string{m.renderWater(), m.renderEquipment()}
		if m.showOnzen && m.onzen != nil {
			panels = append(panels, m.renderChemistry())
		}
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left, panels...))
		b.WriteString("\n")
	} else if m.err == nil {
		b.WriteString(watchStatusStyle.Render("  Waiting for the first report..."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m watchModel) renderWater() string {
	live := m.live
	temperature := watchLabelStyle.Render("Temperature") + " " +
		watchTempStyle.Render(fmt.Sprintf("%d°F", live.TemperatureFahrenheit)) +
		watchValueStyle.Render(fmt.Sprintf("  (set %d°F)", live.TemperatureSetpointFahrenheit))

	rows := []string{
		temperature,
		watchRow("Heater 1", ui.FormatOnOff(live.Heater1 != 0)),
		watchRow("Heater 2", ui.FormatOnOff(live.Heater2 != 0)),
		watchRow("Economy", ui.FormatOnOff(live.Economy)),
	}
	return watchPanel("Water", rows)
}

func (m watchModel) renderEquipment() string {
	live := m.live
	rows := []string{
		watchRow("Pump 1", pumpValue(live.Pump1)),
		watchRow("Pump 2", pumpValue(live.Pump2)),
		watchRow("Pump 3", pumpValue(live.Pump3)),
		watchRow("Pump 4", pumpValue(live.Pump4)),
		watchRow("Pump 5", pumpValue(live.Pump5)),
		watchRow("Blower 1", pumpValue(live.Blower1)),
		watchRow("Blower 2", pumpValue(live.Blower2)),
		watchRow("Lights", ui.FormatOnOff(live.Lights)),
		watchRow("Stereo", ui.FormatOnOff(live.Stereo)),
		watchRow("Filter", ui.FormatOnOff(live.Filter != 0)),
		watchRow("Onzen", ui.FormatOnOff(live.Onzen)),
		watchRow("Ozone", ui.FormatOnOff(live.Ozone != 0)),
		watchRow("Exhaust Fan", ui.FormatOnOff(live.ExhaustFan)),
		watchRow("Sauna", live.Sauna.String()),
		watchRow("Fogger", ui.FormatOnOff(live.Fogger)),
	}
	return watchPanel("Equipment", rows)
}

func (m watchModel) renderChemistry() string {
	onzen := m.onzen
	rows := []string{
		watchRow("pH", chemStyle(onzen.PHColor).Render(fmt.Sprintf("%.2f", float64(onzen.PH100)/100))),
		watchRow("ORP", chemStyle(onzen.ORPColor).Render(fmt.Sprintf("%d mV", onzen.ORP))),
		watchRow("Current", fmt.Sprintf("%d", onzen.Current)),
		watchRow("Voltage", fmt.Sprintf("%d", onzen.Voltage)),
		watchRow("Wear", fmt.Sprintf("%d", onzen.ElectrodeWear)),
	}
	return watchPanel("Water Chemistry", rows)
}

func watchPanel(title string, rows []string) string {
	content := watchTitleStyle.Render(title) + "\n" + strings.Join(rows, "\n")
	return watchBoxStyle.Render(content)
}

func watchRow(label, value string) string {
	return watchLabelStyle.Render(label) + " " + watchValueStyle.Render(value)
}

func pumpValue(s payload.PumpState) string {
	if s == payload.PumpOff {
		return ui.OffStyle.Render(s.String())
	}
	return ui.OnStyle.Render(s.String())
}

// chemStyle picks a color from the controller's traffic-light rating for a
// chemistry reading: 1 is good, 2 marginal, 3 bad, anything else unrated.
func chemStyle(color uint32) lipgloss.Style {
	switch color {
	case 1:
		return lipgloss.NewStyle().Foreground(ui.SuccessColor)
	case 2:
		return lipgloss.NewStyle().Foreground(ui.WarningColor)
	case 3:
		return lipgloss.NewStyle().Foreground(ui.ErrorColor)
	}
	return lipgloss.NewStyle().Foreground(ui.TextColor)
}
