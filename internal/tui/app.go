package tui

import (
	"log/slog"
	"path/filepath"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/wbell/sonora/internal/config"
	"github.com/wbell/sonora/internal/domain"
	"github.com/wbell/sonora/internal/importer"
	"github.com/wbell/sonora/internal/library"
	"github.com/wbell/sonora/internal/notify"
	"github.com/wbell/sonora/internal/player"
	"github.com/wbell/sonora/internal/render"
	"github.com/wbell/sonora/internal/tui/styles"
)

// Screen identifies the visible top-level view
type Screen int

const (
	ScreenHome Screen = iota
	ScreenLibrary
	ScreenRadios
	ScreenSearch
)

// searchLimit caps live search results
const searchLimit = 20

// batchSink collects revealed batches from the pager
type batchSink struct {
	views []render.ItemView
	done  bool
}

func (s *batchSink) Append(views []render.ItemView) { s.views = append(s.views, views...) }
func (s *batchSink) End()                           { s.done = true }

// App is the root bubbletea model
type App struct {
	cfg      *config.Config
	lib      *library.Service
	cache    *library.Cache
	imp      *importer.Service
	ctl      *player.Controller
	center   *notify.Center
	stations []domain.RadioStation
	logger   *slog.Logger

	// send pushes messages into the running program from callbacks
	// that live outside the update loop
	send func(tea.Msg)

	screen Screen
	width  int
	height int

	// library view state
	filter domain.LibraryFilter
	browse library.BrowseResult
	pager  *render.Pager[library.Item]
	sink   *batchSink
	cursor int

	// quick filter over revealed items
	filtering   bool
	filterInput textinput.Model
	matches     []int

	// search screen
	searchInput   textinput.Model
	searchResults []domain.Track
	searchCursor  int

	// import prompt
	importing    bool
	importInput  textinput.Model
	importPhase  importer.Phase
	importDone   int
	importTotal  int
	importActive bool

	showHelp bool
}

// NewApp wires the root model
func NewApp(
	cfg *config.Config,
	lib *library.Service,
	cache *library.Cache,
	imp *importer.Service,
	ctl *player.Controller,
	center *notify.Center,
	logger *slog.Logger,
) *App {
	if logger == nil {
		logger = slog.Default()
	}

	filterInput := textinput.New()
	filterInput.Prompt = "filter: "
	filterInput.PromptStyle = styles.FilterPromptStyle
	filterInput.CharLimit = 64

	searchInput := textinput.New()
	searchInput.Prompt = "search: "
	searchInput.PromptStyle = styles.FilterPromptStyle
	searchInput.Placeholder = "title, artist or album"
	searchInput.CharLimit = 64

	importInput := textinput.New()
	importInput.Prompt = "import: "
	importInput.PromptStyle = styles.FilterPromptStyle
	importInput.Placeholder = "path or glob, e.g. ~/Music/*.mp3"
	importInput.CharLimit = 256

	return &App{
		cfg:         cfg,
		lib:         lib,
		cache:       cache,
		imp:         imp,
		ctl:         ctl,
		center:      center,
		stations:    cfg.Radios,
		logger:      logger,
		screen:      ScreenHome,
		filter:      domain.DefaultFilter(),
		filterInput: filterInput,
		searchInput: searchInput,
		importInput: importInput,
	}
}

// SetSender registers the program's Send function. Must be called
// before the program runs; import progress and notifications use it.
func (a *App) SetSender(send func(tea.Msg)) { a.send = send }

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	a.cache.Refresh()
	return tea.Batch(
		BrowseCmd(a.lib, a.filter),
		PositionTickCmd(),
	)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case ViewLoadedMsg:
		a.browse = msg.Result
		a.sink = &batchSink{}
		a.pager = render.NewPager(msg.Result.Items, a.cfg.Library.BatchSize,
			a.lib.RenderItem, a.sink, a.logger)
		a.cursor = 0
		a.clearQuickFilter()
		a.pager.Trigger()
		a.revealAhead()
		return a, nil

	case PlaybackChangedMsg:
		return a, nil

	case TrackEndedMsg:
		a.ctl.OnTrackEnded()
		return a, nil

	case PositionTickMsg:
		return a, PositionTickCmd()

	case SearchResultsMsg:
		if msg.Term == a.searchInput.Value() {
			a.searchResults = msg.Results
			if a.searchCursor >= len(msg.Results) {
				a.searchCursor = 0
			}
		}
		return a, nil

	case NotificationMsg:
		return a, BannerExpiryCmd()

	case BannerExpiredMsg:
		// Current() drops the banner once its window passed
		return a, nil

	case ImportProgressMsg:
		a.importActive = true
		a.importPhase = msg.Phase
		a.importDone = msg.Done
		a.importTotal = msg.Total
		return a, nil

	case ImportFinishedMsg:
		a.importActive = false
		a.center.Notify("Import complete", pluralTracks(msg.Count)+" added")
		return a, tea.Batch(BrowseCmd(a.lib, a.filter), BannerExpiryCmd())

	case ErrMsg:
		a.logger.Error("ui error", "context", msg.Context, "error", msg.Err)
		// Playback and radio failures notify from inside the
		// controller; a failed import batch has no other surface.
		if msg.Context == importContext {
			a.importActive = false
			a.center.Notify("Import failed", "No tracks were added")
			return a, BannerExpiryCmd()
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	// Text entry modes swallow everything except escape and enter.
	if a.filtering {
		return a.handleFilterKey(msg)
	}
	if a.importing {
		return a.handleImportKey(msg)
	}
	if a.screen == ScreenSearch {
		return a.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, Keys.Help):
		a.showHelp = !a.showHelp
		return a, nil

	case key.Matches(msg, Keys.Home):
		a.screen = ScreenHome
		a.cursor = 0
		return a, nil

	case key.Matches(msg, Keys.Songs):
		return a.switchLibrary(domain.ViewSongs)

	case key.Matches(msg, Keys.Artists):
		return a.switchLibrary(domain.ViewArtists)

	case key.Matches(msg, Keys.Albums):
		return a.switchLibrary(domain.ViewAlbums)

	case key.Matches(msg, Keys.Radios):
		a.screen = ScreenRadios
		a.cursor = 0
		return a, nil

	case key.Matches(msg, Keys.Search):
		a.screen = ScreenSearch
		a.searchInput.Focus()
		a.searchInput.SetValue("")
		a.searchResults = nil
		a.searchCursor = 0
		return a, textinput.Blink

	case key.Matches(msg, Keys.PlayPause):
		a.ctl.TogglePlayPause()
		return a, nil

	case key.Matches(msg, Keys.Next):
		return a, SkipCmd(a.ctl, true)

	case key.Matches(msg, Keys.Previous):
		return a, SkipCmd(a.ctl, false)

	case key.Matches(msg, Keys.Import):
		a.importing = true
		a.importInput.Focus()
		a.importInput.SetValue("")
		return a, textinput.Blink

	case key.Matches(msg, Keys.Filter):
		if a.screen == ScreenLibrary {
			a.filtering = true
			a.filterInput.Focus()
			a.filterInput.SetValue("")
			a.matches = nil
			return a, textinput.Blink
		}
		return a, nil

	case key.Matches(msg, Keys.Escape), key.Matches(msg, Keys.Back):
		return a.handleBack()

	case key.Matches(msg, Keys.Up):
		a.moveCursor(-1)
		return a, nil

	case key.Matches(msg, Keys.Down):
		a.moveCursor(1)
		return a, nil

	case key.Matches(msg, Keys.HalfUp):
		a.moveCursor(-a.listHeight() / 2)
		return a, nil

	case key.Matches(msg, Keys.HalfDown):
		a.moveCursor(a.listHeight() / 2)
		return a, nil

	case key.Matches(msg, Keys.Top):
		a.cursor = 0
		return a, nil

	case key.Matches(msg, Keys.Bottom):
		a.cursorToEnd()
		return a, nil

	case key.Matches(msg, Keys.Enter):
		return a.handleEnter()
	}

	return a, nil
}

func (a *App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Escape):
		a.clearQuickFilter()
		return a, nil
	case key.Matches(msg, Keys.Enter):
		a.filtering = false
		a.filterInput.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.filterInput, cmd = a.filterInput.Update(msg)
	a.applyQuickFilter()
	return a, cmd
}

func (a *App) handleImportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Escape):
		a.importing = false
		a.importInput.Blur()
		return a, nil
	case key.Matches(msg, Keys.Enter):
		pattern := a.importInput.Value()
		a.importing = false
		a.importInput.Blur()
		if pattern == "" {
			return a, nil
		}
		paths, err := filepath.Glob(expandHome(pattern))
		if err != nil || len(paths) == 0 {
			a.center.Notify("Import", "No files matched "+pattern)
			return a, BannerExpiryCmd()
		}
		return a, ImportCmd(a.imp, a.cache, paths, a.send)
	}

	var cmd tea.Cmd
	a.importInput, cmd = a.importInput.Update(msg)
	return a, cmd
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Only arrows move the selection; letters go to the input.
	switch {
	case key.Matches(msg, Keys.Escape):
		a.screen = ScreenHome
		a.searchInput.Blur()
		return a, nil
	case msg.String() == "up":
		if a.searchCursor > 0 {
			a.searchCursor--
		}
		return a, nil
	case msg.String() == "down":
		if a.searchCursor < len(a.searchResults)-1 {
			a.searchCursor++
		}
		return a, nil
	case key.Matches(msg, Keys.Enter):
		if a.searchCursor < len(a.searchResults) {
			track := a.searchResults[a.searchCursor]
			return a, PlayTrackCmd(a.ctl, track.ID, nil)
		}
		return a, nil
	}

	before := a.searchInput.Value()
	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	term := a.searchInput.Value()
	if term == before {
		return a, cmd
	}
	if term == "" {
		a.searchResults = nil
		return a, cmd
	}
	return a, tea.Batch(cmd, SearchCmd(a.cache, term, searchLimit))
}

func (a *App) switchLibrary(view domain.ViewType) (tea.Model, tea.Cmd) {
	a.screen = ScreenLibrary
	a.filter = domain.LibraryFilter{Type: view}
	return a, BrowseCmd(a.lib, a.filter)
}

// handleBack dismisses a visible banner, then clears a scoped
// filter, then falls out to home.
func (a *App) handleBack() (tea.Model, tea.Cmd) {
	if _, ok := a.center.Current(); ok {
		a.center.Dismiss()
		return a, nil
	}

	switch a.screen {
	case ScreenLibrary:
		if a.filter.Scoped() {
			a.filter = domain.LibraryFilter{Type: a.filter.Type}
			return a, BrowseCmd(a.lib, a.filter)
		}
		a.screen = ScreenHome
		a.cursor = 0
	case ScreenRadios:
		a.screen = ScreenHome
		a.cursor = 0
	}
	return a, nil
}

// handleEnter acts on the selected row of the current screen.
func (a *App) handleEnter() (tea.Model, tea.Cmd) {
	switch a.screen {
	case ScreenHome:
		recent := a.cache.Recent(recentCount)
		if a.cursor < len(recent) {
			return a, PlayTrackCmd(a.ctl, recent[a.cursor].ID, nil)
		}
		return a, nil

	case ScreenRadios:
		if a.cursor < len(a.stations) {
			station := a.stations[a.cursor]
			if !station.Playable() {
				a.center.Notify(station.Title, "This station only has a web player")
				return a, BannerExpiryCmd()
			}
			return a, PlayRadioCmd(a.ctl, station)
		}
		return a, nil

	case ScreenLibrary:
		views := a.visibleItems()
		if a.cursor >= len(views) {
			return a, nil
		}
		item := views[a.cursor]
		switch item.Kind {
		case render.KindTrack:
			return a, PlayTrackCmd(a.ctl, item.TrackID, a.browse.Queue)
		case render.KindArtist:
			a.filter = domain.LibraryFilter{
				Type:  domain.ViewSongs,
				Key:   domain.FilterArtist,
				Value: item.NavValue,
			}
			return a, BrowseCmd(a.lib, a.filter)
		case render.KindAlbum:
			a.filter = domain.LibraryFilter{
				Type:  domain.ViewSongs,
				Key:   domain.FilterAlbum,
				Value: item.NavValue,
			}
			return a, BrowseCmd(a.lib, a.filter)
		}
	}
	return a, nil
}

// moveCursor shifts the selection and reveals the next batch when
// the cursor nears the rendered bottom.
func (a *App) moveCursor(delta int) {
	max := a.listLen() - 1
	a.cursor += delta
	if a.cursor < 0 {
		a.cursor = 0
	}
	if a.cursor > max {
		a.cursor = max
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
	a.revealAhead()
}

func (a *App) cursorToEnd() {
	// Jumping to the end reveals everything first.
	if a.screen == ScreenLibrary && a.pager != nil {
		for a.pager.Trigger() {
		}
	}
	if n := a.listLen(); n > 0 {
		a.cursor = n - 1
	}
}

// revealAhead is the list's load sentinel: when the selection is
// within the lookahead margin of the last revealed row, the next
// batch renders.
func (a *App) revealAhead() {
	if a.screen != ScreenLibrary || a.pager == nil || a.pager.Done() {
		return
	}
	lookahead := a.cfg.Library.LookaheadRows
	if lookahead <= 0 {
		lookahead = 12
	}
	for !a.pager.Done() && a.cursor >= len(a.sink.views)-lookahead {
		if !a.pager.Trigger() {
			break
		}
	}
}

func (a *App) listLen() int {
	switch a.screen {
	case ScreenHome:
		return len(a.cache.Recent(recentCount))
	case ScreenRadios:
		return len(a.stations)
	case ScreenLibrary:
		return len(a.visibleItems())
	}
	return 0
}

func (a *App) listHeight() int {
	h := a.height - 6 // header, tabs, player bar
	if h < 4 {
		h = 4
	}
	return h
}

// visibleItems returns the revealed rows, narrowed by the quick
// filter when active.
func (a *App) visibleItems() []render.ItemView {
	if a.sink == nil {
		return nil
	}
	if a.matches == nil {
		return a.sink.views
	}
	out := make([]render.ItemView, 0, len(a.matches))
	for _, i := range a.matches {
		out = append(out, a.sink.views[i])
	}
	return out
}

// applyQuickFilter fuzzy-matches the revealed rows against the
// filter input.
func (a *App) applyQuickFilter() {
	term := a.filterInput.Value()
	if term == "" || a.sink == nil {
		a.matches = nil
		a.cursor = 0
		return
	}

	titles := make([]string, len(a.sink.views))
	for i, v := range a.sink.views {
		titles[i] = v.Title + " " + v.Subtitle
	}

	ranked := fuzzy.Find(term, titles)
	a.matches = make([]int, len(ranked))
	for i, m := range ranked {
		a.matches[i] = m.Index
	}
	a.cursor = 0
}

func (a *App) clearQuickFilter() {
	a.filtering = false
	a.filterInput.Blur()
	a.filterInput.SetValue("")
	a.matches = nil
}

func expandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		if home, err := homeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
