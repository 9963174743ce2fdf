package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dem-News/demnews/internal/api"
	"github.com/Dem-News/demnews/internal/engine"
	"github.com/Dem-News/demnews/internal/news"
	"github.com/Dem-News/demnews/internal/store"
)

// refreshInterval drives the periodic re-fetch of the visible feed.
const refreshInterval = 60 * time.Second

// Backend is the slice of the engine the UI drives. Reads are served
// from the in-memory cache and are cheap to call during View.
type Backend interface {
	Item(id string) (*news.NewsItem, error)
	FeedItems(scope store.Scope) []*news.NewsItem
	FeedLoading(scope store.Scope) bool
	FeedErr(scope store.Scope) error
	Refresh(ctx context.Context, scope store.Scope, params store.FetchParams) error
	Create(ctx context.Context, req api.CreateNewsRequest, viewing store.Scope) (*news.NewsItem, error)
	Like(ctx context.Context, id string) (*news.NewsItem, error)
	Verify(ctx context.Context, id string, at news.GeoPoint) (*news.NewsItem, error)
	Flag(ctx context.Context, id, code, detail string) (*news.NewsItem, error)
	AddComment(ctx context.Context, id, content string) (*news.NewsItem, error)
	LoadComments(ctx context.Context, id string) error
}

var _ Backend = (*engine.Engine)(nil)

type mode int

const (
	modeFeed mode = iota
	modeDetail
	modeComment
	modeFlag
	modeFlagDetail
	modeCompose
	modeSearch
)

// App is the root Bubble Tea model.
type App struct {
	backend  Backend
	location news.GeoPoint
	params   map[store.Scope]store.FetchParams

	scope    store.Scope
	mode     mode
	cursor   int
	detailID string

	input      textinput.Model
	flagCursor int
	fromDetail bool

	err     error
	width   int
	height  int
	ready   bool
	loading bool
}

// NewApp creates the root model. location is the device position used
// for verifications; local and explore are the starting fetch params.
func NewApp(backend Backend, location news.GeoPoint, local, explore store.FetchParams) App {
	input := textinput.New()
	input.CharLimit = news.MaxCommentLength
	return App{
		backend:  backend,
		location: location,
		params: map[store.Scope]store.FetchParams{
			store.ScopeLocal:   local,
			store.ScopeExplore: explore,
		},
		scope: store.ScopeLocal,
		input: input,
	}
}

// Init starts the first fetch of both scopes and the refresh timer.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.refreshCmd(store.ScopeLocal),
		a.refreshCmd(store.ScopeExplore),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return RefreshTick{}
	})
}

func (a App) refreshCmd(scope store.Scope) tea.Cmd {
	backend, params := a.backend, a.params[scope]
	return func() tea.Msg {
		err := backend.Refresh(context.Background(), scope, params)
		return FeedLoaded{Scope: scope, Err: err}
	}
}

func (a App) likeCmd(id string) tea.Cmd {
	backend := a.backend
	return func() tea.Msg {
		_, err := backend.Like(context.Background(), id)
		return MutationDone{ID: id, Action: "like", Err: err}
	}
}

func (a App) verifyCmd(id string) tea.Cmd {
	backend, at := a.backend, a.location
	return func() tea.Msg {
		_, err := backend.Verify(context.Background(), id, at)
		return MutationDone{ID: id, Action: "verify", Err: err}
	}
}

func (a App) flagCmd(id, code, detail string) tea.Cmd {
	backend := a.backend
	return func() tea.Msg {
		_, err := backend.Flag(context.Background(), id, code, detail)
		return MutationDone{ID: id, Action: "flag", Err: err}
	}
}

func (a App) commentCmd(id, content string) tea.Cmd {
	backend := a.backend
	return func() tea.Msg {
		_, err := backend.AddComment(context.Background(), id, content)
		return MutationDone{ID: id, Action: "comment", Err: err}
	}
}

func (a App) loadCommentsCmd(id string) tea.Cmd {
	backend := a.backend
	return func() tea.Msg {
		return CommentsLoaded{ID: id, Err: backend.LoadComments(context.Background(), id)}
	}
}

func (a App) createCmd(content string) tea.Cmd {
	backend, scope := a.backend, a.scope
	req := api.CreateNewsRequest{Content: content, Location: &a.location}
	return func() tea.Msg {
		item, err := backend.Create(context.Background(), req, scope)
		if err != nil {
			return NewsCreated{Err: err}
		}
		return NewsCreated{ID: item.ID}
	}
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		return a, nil

	case FeedLoaded:
		if msg.Scope == a.scope {
			a.loading = false
		}
		if msg.Err != nil && msg.Scope == a.scope {
			a.err = msg.Err
		}
		a.clampCursor()
		return a, nil

	case MutationDone:
		if msg.Err != nil {
			a.err = msg.Err
		}
		return a, nil

	case CommentsLoaded:
		if msg.Err != nil {
			a.err = msg.Err
		}
		return a, nil

	case NewsCreated:
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		a.cursor = 0
		return a, nil

	case RefreshTick:
		if a.mode == modeFeed {
			return a, tea.Batch(a.refreshCmd(a.scope), tickCmd())
		}
		return a, tickCmd()
	}

	return a, nil
}

func (a *App) clampCursor() {
	n := len(a.backend.FeedItems(a.scope))
	if a.cursor >= n && n > 0 {
		a.cursor = n - 1
	}
	if n == 0 {
		a.cursor = 0
	}
}

func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.mode {
	case modeComment, modeCompose, modeSearch, modeFlagDetail:
		return a.handleInputKey(msg)
	case modeFlag:
		return a.handleFlagKey(msg)
	case modeDetail:
		return a.handleDetailKey(msg)
	default:
		return a.handleFeedKey(msg)
	}
}

func (a App) handleFeedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.err != nil {
		a.err = nil
	}

	items := a.backend.FeedItems(a.scope)

	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "j", "down":
		if a.cursor < len(items)-1 {
			a.cursor++
		}
		return a, nil

	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case "g", "home":
		a.cursor = 0
		return a, nil

	case "G", "end":
		if len(items) > 0 {
			a.cursor = len(items) - 1
		}
		return a, nil

	case "tab":
		if a.scope == store.ScopeLocal {
			a.scope = store.ScopeExplore
		} else {
			a.scope = store.ScopeLocal
		}
		a.cursor = 0
		a.loading = a.backend.FeedLoading(a.scope)
		return a, nil

	case "enter":
		if a.cursor < len(items) {
			a.mode = modeDetail
			a.detailID = items[a.cursor].ID
			return a, a.loadCommentsCmd(a.detailID)
		}
		return a, nil

	case "l":
		if a.cursor < len(items) {
			return a, a.likeCmd(items[a.cursor].ID)
		}
		return a, nil

	case "v":
		if a.cursor < len(items) {
			return a, a.verifyCmd(items[a.cursor].ID)
		}
		return a, nil

	case "f":
		if a.cursor < len(items) {
			a.mode = modeFlag
			a.detailID = items[a.cursor].ID
			a.flagCursor = 0
			a.fromDetail = false
		}
		return a, nil

	case "n":
		a.mode = modeCompose
		a.input = newInput("What's happening near you?", news.MaxCommentLength)
		return a, textinput.Blink

	case "/":
		if a.scope == store.ScopeExplore {
			a.mode = modeSearch
			a.input = newInput("Search news…", 100)
			return a, textinput.Blink
		}
		return a, nil

	case "r":
		a.loading = true
		return a, a.refreshCmd(a.scope)
	}

	return a, nil
}

func (a App) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.err != nil {
		a.err = nil
	}

	switch msg.String() {
	case "q", "esc":
		a.mode = modeFeed
		a.detailID = ""
		return a, nil

	case "ctrl+c":
		return a, tea.Quit

	case "l":
		return a, a.likeCmd(a.detailID)

	case "v":
		return a, a.verifyCmd(a.detailID)

	case "f":
		a.mode = modeFlag
		a.flagCursor = 0
		a.fromDetail = true
		return a, nil

	case "c":
		a.mode = modeComment
		a.input = newInput("Add a comment…", news.MaxCommentLength)
		a.fromDetail = true
		return a, textinput.Blink
	}

	return a, nil
}

func (a App) handleFlagKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = a.returnMode()
		return a, nil

	case "j", "down":
		if a.flagCursor < len(news.FlagReasons)-1 {
			a.flagCursor++
		}
		return a, nil

	case "k", "up":
		if a.flagCursor > 0 {
			a.flagCursor--
		}
		return a, nil

	case "enter":
		code := news.FlagReasons[a.flagCursor]
		if code == news.ReasonOther {
			a.mode = modeFlagDetail
			a.input = newInput("Describe the problem…", 200)
			return a, textinput.Blink
		}
		a.mode = a.returnMode()
		return a, a.flagCmd(a.detailID, code, "")
	}
	return a, nil
}

func (a App) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = a.returnMode()
		return a, nil

	case "enter":
		value := a.input.Value()
		from := a.mode
		a.mode = a.returnMode()
		switch from {
		case modeComment:
			if value == "" {
				return a, nil
			}
			return a, a.commentCmd(a.detailID, value)
		case modeCompose:
			if value == "" {
				return a, nil
			}
			return a, a.createCmd(value)
		case modeFlagDetail:
			if value == "" {
				return a, nil
			}
			return a, a.flagCmd(a.detailID, news.ReasonOther, value)
		case modeSearch:
			params := a.params[store.ScopeExplore]
			params.Query = value
			a.params[store.ScopeExplore] = params
			a.loading = true
			return a, a.refreshCmd(store.ScopeExplore)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// returnMode is where esc and submit land: the screen the overlay was
// opened from.
func (a App) returnMode() mode {
	switch a.mode {
	case modeFlag, modeFlagDetail, modeComment:
		if a.fromDetail {
			return modeDetail
		}
	}
	return modeFeed
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	switch a.mode {
	case modeDetail:
		return a.viewDetail()
	case modeFlag:
		return a.viewFlagPicker()
	case modeComment, modeCompose, modeSearch, modeFlagDetail:
		return a.viewInput()
	default:
		return a.viewFeed()
	}
}

func (a App) viewFeed() string {
	tabs := RenderTabs(a.scope)
	contentHeight := a.height - 3
	if a.err != nil {
		contentHeight--
	}

	feed := RenderFeed(a.backend.FeedItems(a.scope), a.cursor, a.width, contentHeight)

	errorBar := ""
	if a.err != nil {
		errorBar = ErrorStyle.Width(a.width).Render("Error: "+a.err.Error()+" (press any key to dismiss)") + "\n"
	}

	note := ""
	if a.loading {
		note = "fetching…"
	} else if err := a.backend.FeedErr(a.scope); err != nil {
		note = "showing cached results"
	}
	hints := [][2]string{
		{"tab", "scope"}, {"enter", "open"}, {"l", "like"}, {"v", "verify"},
		{"f", "flag"}, {"n", "report"}, {"r", "refresh"}, {"q", "quit"},
	}
	if a.scope == store.ScopeExplore {
		hints = append(hints, [2]string{"/", "search"})
	}
	status := RenderStatusBar(a.width, hints, note)

	return tabs + "\n" + feed + errorBar + status
}

func (a App) viewDetail() string {
	item, err := a.backend.Item(a.detailID)
	if err != nil {
		return ErrorStyle.Render("This item is no longer available.") + "\n" +
			RenderStatusBar(a.width, [][2]string{{"esc", "back"}}, "")
	}

	errorBar := ""
	if a.err != nil {
		errorBar = ErrorStyle.Width(a.width).Render("Error: "+a.err.Error()) + "\n"
	}
	hints := [][2]string{
		{"l", "like"}, {"v", "verify"}, {"f", "flag"}, {"c", "comment"}, {"esc", "back"},
	}
	return RenderDetail(item, a.width) + "\n" + errorBar + RenderStatusBar(a.width, hints, "")
}

func (a App) viewFlagPicker() string {
	var b strings.Builder
	b.WriteString(DetailHeader.Render("Why are you flagging this?") + "\n")
	for i, reason := range news.FlagReasons {
		line := "  " + reason
		if i == a.flagCursor {
			line = SelectedItem.Render("> " + reason)
		}
		b.WriteString(line + "\n")
	}
	return b.String() + RenderStatusBar(a.width, [][2]string{{"enter", "select"}, {"esc", "cancel"}}, "")
}

func (a App) viewInput() string {
	title := map[mode]string{
		modeComment:    "New comment",
		modeCompose:    "New report",
		modeSearch:     "Search",
		modeFlagDetail: "Flag reason",
	}[a.mode]
	return DetailHeader.Render(title) + "\n" + a.input.View() + "\n" +
		RenderStatusBar(a.width, [][2]string{{"enter", "submit"}, {"esc", "cancel"}}, "")
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Focus()
	return in
}

// Cursor returns the current cursor position (for testing).
func (a App) Cursor() int { return a.cursor }

// Scope returns the currently visible feed scope (for testing).
func (a App) Scope() store.Scope { return a.scope }
