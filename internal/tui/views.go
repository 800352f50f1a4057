package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/wbell/sonora/internal/domain"
	"github.com/wbell/sonora/internal/importer"
	"github.com/wbell/sonora/internal/player"
	"github.com/wbell/sonora/internal/render"
	"github.com/wbell/sonora/internal/tui/styles"
)

// recentCount is how many recently added tracks the home screen shows
const recentCount = 10

// View implements tea.Model
func (a *App) View() string {
	if a.width == 0 {
		return "loading..."
	}

	var body string
	switch a.screen {
	case ScreenHome:
		body = a.viewHome()
	case ScreenLibrary:
		body = a.viewLibrary()
	case ScreenRadios:
		body = a.viewRadios()
	case ScreenSearch:
		body = a.viewSearch()
	}

	if a.showHelp {
		body = a.viewHelp()
	}

	sections := []string{a.viewHeader(), body}
	if a.importing {
		sections = append(sections, a.importInput.View())
	}
	if a.importActive {
		sections = append(sections, a.viewImportProgress())
	}
	sections = append(sections, a.viewPlayerBar())

	out := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return a.overlayBanner(out)
}

func (a *App) viewHeader() string {
	title := styles.AccentStyle.Bold(true).Render("Sonora")

	tabs := []string{
		a.tab("Home", a.screen == ScreenHome),
		a.tab("Songs", a.screen == ScreenLibrary && a.filter.Type == domain.ViewSongs),
		a.tab("Artists", a.screen == ScreenLibrary && a.filter.Type == domain.ViewArtists),
		a.tab("Albums", a.screen == ScreenLibrary && a.filter.Type == domain.ViewAlbums),
		a.tab("Radio", a.screen == ScreenRadios),
		a.tab("Search", a.screen == ScreenSearch),
	}

	return title + "  " + strings.Join(tabs, " ")
}

func (a *App) tab(label string, active bool) string {
	if active {
		return styles.ActiveTabStyle.Render(label)
	}
	return styles.InactiveTabStyle.Render(label)
}

func (a *App) viewHome() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Recently added"))
	b.WriteString("\n")

	recent := a.cache.Recent(recentCount)
	if len(recent) == 0 {
		b.WriteString(styles.DimStyle.Render("Your library is empty. Press i to import music."))
		b.WriteString("\n")
	}
	for i, t := range recent {
		line := t.DisplayTitle() + styles.DimStyle.Render("  "+t.DisplayArtist())
		b.WriteString(a.row(line, i == a.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.TitleStyle.Render("Radio"))
	b.WriteString("\n")
	for _, s := range a.stations {
		b.WriteString(styles.NormalItemStyle.Render(s.Title + styles.DimStyle.Render("  "+s.Artist)))
		b.WriteString("\n")
	}

	return b.String()
}

func (a *App) viewLibrary() string {
	var b strings.Builder

	title := a.browse.Title
	if title == "" {
		title = "Library"
	}
	b.WriteString(styles.TitleStyle.Render(title))
	if a.browse.Scoped {
		b.WriteString("  " + styles.DimStyle.Render("esc to clear filter"))
	}
	b.WriteString("\n")

	if a.filtering || a.filterInput.Value() != "" {
		b.WriteString(a.filterInput.View())
		b.WriteString("\n")
	}

	items := a.visibleItems()
	if a.browse.Empty {
		b.WriteString(styles.DimStyle.Render("Nothing here yet. Press i to import music."))
		b.WriteString("\n")
		return b.String()
	}

	start, end := a.window(len(items))
	for i := start; i < end; i++ {
		b.WriteString(a.renderRow(items[i], i == a.cursor))
		b.WriteString("\n")
	}

	if a.pager != nil && !a.pager.Done() && a.matches == nil {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("… %d more", a.pager.Remaining())))
		b.WriteString("\n")
	}

	return b.String()
}

func (a *App) renderRow(item render.ItemView, selected bool) string {
	textWidth := a.width/2 - 4
	if textWidth < 16 {
		textWidth = 16
	}

	var parts []string
	parts = append(parts, styles.Truncate(item.Title, textWidth))
	if item.Subtitle != "" {
		parts = append(parts, styles.DimStyle.Render(styles.Truncate(item.Subtitle, textWidth)))
	}
	if item.Badge != "" {
		badge := styles.DimBadgeStyle
		if selected {
			badge = styles.BadgeStyle
		}
		parts = append(parts, badge.Render(item.Badge))
	}
	return a.row(strings.Join(parts, "  "), selected)
}

func (a *App) row(content string, selected bool) string {
	if selected {
		return styles.SelectedItemStyle.Render("▸ " + content)
	}
	return styles.NormalItemStyle.Render("  " + content)
}

// window clamps the visible slice of the list around the cursor.
func (a *App) window(n int) (start, end int) {
	h := a.listHeight()
	if n <= h {
		return 0, n
	}
	start = a.cursor - h/2
	if start < 0 {
		start = 0
	}
	end = start + h
	if end > n {
		end = n
		start = end - h
	}
	return start, end
}

func (a *App) viewRadios() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Radio stations"))
	b.WriteString("\n")

	for i, s := range a.stations {
		line := s.Title + styles.DimStyle.Render("  "+s.Artist)
		if !s.Playable() {
			line += "  " + styles.DimBadgeStyle.Render("web only")
		}
		b.WriteString(a.row(line, i == a.cursor))
		b.WriteString("\n")
	}

	return b.String()
}

func (a *App) viewSearch() string {
	var b strings.Builder
	b.WriteString(a.searchInput.View())
	b.WriteString("\n\n")

	if a.searchInput.Value() == "" {
		b.WriteString(styles.DimStyle.Render("Type to search your library."))
		b.WriteString("\n")
		return b.String()
	}
	if len(a.searchResults) == 0 {
		b.WriteString(styles.DimStyle.Render("No matches."))
		b.WriteString("\n")
		return b.String()
	}

	for i, t := range a.searchResults {
		line := t.DisplayTitle() + styles.DimStyle.Render("  "+t.DisplayArtist())
		b.WriteString(a.row(line, i == a.searchCursor))
		b.WriteString("\n")
	}
	return b.String()
}

func (a *App) viewImportProgress() string {
	phase := "Reading files"
	if a.importPhase == importer.PhaseSaving {
		phase = "Saving"
	}
	return styles.AccentStyle.Render(
		fmt.Sprintf("%s… %d/%d", phase, a.importDone, a.importTotal))
}

func (a *App) viewPlayerBar() string {
	width := a.width
	title, artist, ok := a.ctl.NowPlaying()
	if !ok {
		return styles.PlayerBarStyle.Width(width).Render(
			styles.PlayerMetaStyle.Render("Nothing playing  ·  space play/pause · n next · p previous · ? help"))
	}

	icon := "▶"
	if a.ctl.State() == player.StatePaused {
		icon = "⏸"
	}

	left := icon + " " + styles.PlayerTitleStyle.Render(title)
	if artist != "" {
		left += styles.PlayerMetaStyle.Render(" · " + artist)
	}

	var right string
	if a.ctl.HasPosition() {
		right = styles.PlayerMetaStyle.Render(formatDuration(a.ctl.Position()))
	} else {
		right = styles.LiveBadgeStyle.Render("LIVE")
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return styles.PlayerBarStyle.Width(width).Render(
		left + strings.Repeat(" ", gap) + right)
}

func (a *App) viewHelp() string {
	rows := [][2]string{
		{"1-5", "home / songs / artists / albums / radio"},
		{"/", "search library"},
		{"f", "filter the visible list"},
		{"i", "import files (path or glob)"},
		{"enter", "open group or play"},
		{"space", "play / pause"},
		{"n / p", "next / previous track"},
		{"esc", "clear filter, go back"},
		{"q", "quit"},
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Keys"))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(styles.HelpKeyStyle.Render(styles.Pad(r[0], 8)))
		b.WriteString(styles.HelpDescStyle.Render(r[1]))
		b.WriteString("\n")
	}
	return b.String()
}

// overlayBanner draws the active notification on the top line.
func (a *App) overlayBanner(body string) string {
	n, ok := a.center.Current()
	if !ok {
		return body
	}

	text := styles.BannerTitleStyle.Render(n.Title)
	if n.Message != "" {
		text += styles.SubtitleStyle.Render(" " + n.Message)
	}
	banner := styles.BannerStyle.Render(text)

	return lipgloss.JoinVertical(lipgloss.Right, banner, body)
}

// formatDuration renders a position as m:ss.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func pluralTracks(n int) string {
	if n == 1 {
		return "1 track"
	}
	return fmt.Sprintf("%d tracks", n)
}

func homeDir() (string, error) {
	return os.UserHomeDir()
}
