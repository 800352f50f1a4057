package styles

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Emerald   = lipgloss.Color("#10B981")
	ZincDark  = lipgloss.Color("#18181B")
	ZincMid   = lipgloss.Color("#27272A")
	ZincLight = lipgloss.Color("#3F3F46")
	DimGray   = lipgloss.Color("#71717A")
	LightGray = lipgloss.Color("#A1A1AA")
	White     = lipgloss.Color("#FAFAFA")
	Amber     = lipgloss.Color("#EAB308")
	Red       = lipgloss.Color("#EF4444")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Emerald)
)

// List item styles
var (
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(White).
				Background(ZincLight).
				Padding(0, 1)

	NormalItemStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Padding(0, 1)
)

// Tab styles
var (
	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(ZincDark).
			Background(Emerald).
			Padding(0, 2)

	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(LightGray).
				Background(ZincMid).
				Padding(0, 2)
)

// Badge styles
var (
	BadgeStyle = lipgloss.NewStyle().
			Foreground(ZincDark).
			Background(Emerald).
			Padding(0, 1)

	DimBadgeStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Background(ZincMid).
			Padding(0, 1)

	LiveBadgeStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(Red).
			Padding(0, 1).
			Bold(true)
)

// Player bar styles
var (
	PlayerBarStyle = lipgloss.NewStyle().
			Background(ZincMid).
			Padding(0, 1)

	PlayerTitleStyle = lipgloss.NewStyle().
				Foreground(White).
				Background(ZincMid).
				Bold(true)

	PlayerMetaStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Background(ZincMid)
)

// Notification banner styles
var (
	BannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Emerald).
			Padding(0, 1)

	BannerTitleStyle = lipgloss.NewStyle().
				Foreground(Emerald).
				Bold(true)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(Emerald)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Filter styles
var (
	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(Emerald).
				Bold(true)
)

// Truncate truncates a string to the given width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}

// Pad pads a string to the given width
func Pad(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + spaces(width-len(s))
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
