// Package console is the brewdeck admin terminal UI: a bubbletea program
// with one screen per entity, each pairing a list view-model with the
// generic table, a delete confirmation dialog, and the shared notification
// center.
package console

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/draughtworks/brewdeck/internal/client"
	"github.com/draughtworks/brewdeck/internal/notify"
)

// Screen identifies the active top-level screen.
type Screen int

const (
	ScreenBeers Screen = iota
	ScreenCustomers
	ScreenOrders
	ScreenShipments
)

// dataMsg signals that a view-model settled and tables should re-sync.
type dataMsg struct{}

// tickMsg drives notification expiry.
type tickMsg time.Time

// runVM executes a synchronous view-model action off the update loop.
func runVM(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return dataMsg{}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type keyMap struct {
	NextScreen key.Binding
	Up         key.Binding
	Down       key.Binding
	PrevPage   key.Binding
	NextPage   key.Binding
	Select     key.Binding
	SelectAll  key.Binding
	Filter     key.Binding
	New        key.Binding
	Edit       key.Binding
	Delete     key.Binding
	Refresh    key.Binding
	Open       key.Binding
	Back       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextScreen: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next screen")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "cursor up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "cursor down")),
		PrevPage:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("left/h", "prev page")),
		NextPage:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("right/l", "next page")),
		Select:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select row")),
		SelectAll:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select page")),
		Filter:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		New:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Open:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextScreen, k.Filter, k.New, k.Edit, k.Delete, k.Refresh, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextScreen, k.Up, k.Down, k.PrevPage, k.NextPage},
		{k.Select, k.SelectAll, k.Filter, k.New, k.Edit, k.Delete},
		{k.Open, k.Back, k.Refresh, k.Quit},
	}
}

var (
	tabStyle       = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("243"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 2).Bold(true).Foreground(lipgloss.Color("170"))
	notifTitle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	notifBody      = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// App is the root bubbletea model.
type App struct {
	ctx    context.Context
	center *notify.Center
	keys   keyMap
	help   help.Model

	beers     *beerScreen
	customers *customerScreen
	orders    *orderScreen
	shipments *shipmentScreen // non-nil while an order's shipments are open

	active Screen
	width  int
}

// New builds the console over a configured API client.
func New(ctx context.Context, c *client.Client, pageSize int) *App {
	center := notify.NewCenter()
	return &App{
		ctx:       ctx,
		center:    center,
		keys:      defaultKeyMap(),
		help:      help.New(),
		beers:     newBeerScreen(ctx, c, center, pageSize),
		customers: newCustomerScreen(ctx, c, center, pageSize),
		orders:    newOrderScreen(ctx, c, center, pageSize),
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.beers.init(), a.customers.init(), a.orders.init(), tick())
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.help.Width = msg.Width
		return a, nil

	case tickMsg:
		// Active prunes expired notifications as a side effect.
		a.center.Active()
		return a, tick()

	case dataMsg:
		a.syncAll()
		return a, nil

	case shipmentsOpenedMsg:
		a.shipments = msg.screen
		a.active = ScreenShipments
		return a, a.shipments.init()

	case tea.KeyMsg:
		// Screens in filter-entry or confirm mode consume keys first.
		if a.currentCaptures() {
			return a, a.updateCurrent(msg)
		}
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.NextScreen):
			a.nextScreen()
			return a, nil
		case key.Matches(msg, a.keys.Back):
			if a.active == ScreenShipments {
				a.closeShipments()
				return a, nil
			}
		}
		return a, a.updateCurrent(msg)
	}
	return a, nil
}

func (a *App) nextScreen() {
	switch a.active {
	case ScreenBeers:
		a.active = ScreenCustomers
	case ScreenCustomers:
		a.active = ScreenOrders
	default:
		if a.active == ScreenShipments {
			a.closeShipments()
		}
		a.active = ScreenBeers
	}
}

func (a *App) closeShipments() {
	if a.shipments != nil {
		a.shipments.close()
		a.shipments = nil
	}
	a.active = ScreenOrders
}

func (a *App) currentCaptures() bool {
	switch a.active {
	case ScreenBeers:
		return a.beers.captures()
	case ScreenCustomers:
		return a.customers.captures()
	case ScreenOrders:
		return a.orders.captures()
	case ScreenShipments:
		return a.shipments != nil && a.shipments.captures()
	}
	return false
}

func (a *App) updateCurrent(msg tea.KeyMsg) tea.Cmd {
	switch a.active {
	case ScreenBeers:
		return a.beers.update(msg, a.keys)
	case ScreenCustomers:
		return a.customers.update(msg, a.keys)
	case ScreenOrders:
		return a.orders.update(msg, a.keys)
	case ScreenShipments:
		if a.shipments != nil {
			return a.shipments.update(msg, a.keys)
		}
	}
	return nil
}

func (a *App) syncAll() {
	a.beers.sync()
	a.customers.sync()
	a.orders.sync()
	if a.shipments != nil {
		a.shipments.sync()
	}
}

// View implements tea.Model.
func (a *App) View() string {
	var body string
	switch a.active {
	case ScreenBeers:
		body = a.beers.view()
	case ScreenCustomers:
		body = a.customers.view()
	case ScreenOrders:
		body = a.orders.view()
	case ScreenShipments:
		if a.shipments != nil {
			body = a.shipments.view()
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		a.tabBar(),
		body,
		a.notifications(),
		a.help.View(a.keys),
	)
}

func (a *App) tabBar() string {
	tabs := []struct {
		screen Screen
		label  string
	}{
		{ScreenBeers, "Beers"},
		{ScreenCustomers, "Customers"},
		{ScreenOrders, "Orders"},
	}

	parts := make([]string, 0, len(tabs)+1)
	for _, t := range tabs {
		style := tabStyle
		if a.active == t.screen || (a.active == ScreenShipments && t.screen == ScreenOrders) {
			style = activeTabStyle
		}
		parts = append(parts, style.Render(t.label))
	}
	if a.active == ScreenShipments && a.shipments != nil {
		parts = append(parts, activeTabStyle.Render(a.shipments.title()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a *App) notifications() string {
	active := a.center.Active()
	if len(active) == 0 {
		return ""
	}
	lines := make([]string, 0, len(active))
	for _, n := range active {
		line := notifTitle.Render(n.Title)
		if n.Description != "" {
			line += " " + notifBody.Render(n.Description)
		}
		lines = append(lines, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
