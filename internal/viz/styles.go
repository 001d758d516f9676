package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/qgsim/internal/sim"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	subtle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	activeName  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	activeValue = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff")).Bold(true)
	idleName    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	idleValue   = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Bold(true)

	statsPanel = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2)

	statusIdle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899"))
	statusRunning = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
)

// outcomeStyle gives each end state its own badge.
var outcomeStyle = map[sim.Outcome]lipgloss.Style{
	sim.Exhausted: lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#00cc66")).Padding(0, 1),
	sim.Transitioned: lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#ff00ff")).Padding(0, 1),
	sim.Degenerate: lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#cc0000")).Padding(0, 1),
}

func keyHint(key, desc string) string {
	return keyStyle.Render(key) + subtle.Render(" "+desc+"  ")
}

func progressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return statusRunning.Render(strings.Repeat("█", filled)) + subtle.Render(strings.Repeat("░", width-filled))
}

func separator(width int) string {
	return subtle.Render(strings.Repeat("─", width))
}
