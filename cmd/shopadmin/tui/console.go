package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MikeMC777/customtees/internal/design"
	"github.com/MikeMC777/customtees/internal/export"
	"github.com/MikeMC777/customtees/internal/order"
	"github.com/MikeMC777/customtees/internal/product"
	"github.com/MikeMC777/customtees/internal/state"
)

type Tab int

const (
	TabProducts Tab = iota
	TabDesigns
	TabOrders
)

var tabNames = [...]string{"Products", "Designs", "Orders"}

// Mode is what currently owns the keyboard.
type Mode int

const (
	ModeBrowse Mode = iota
	ModeConfirm
	ModeProductForm
	ModeEmail
)

type Deps struct {
	Products  *state.Products
	Designs   *state.Designs
	Orders    *state.Orders
	Export    *export.Flow // nil disables bill export
	BasePrice decimal.Decimal
	Log       *zap.Logger
}

// Model is the admin console. Lists render from the state stores; every
// write goes through the controllers, which re-fetch on success.
type Model struct {
	deps    Deps
	ctx     context.Context
	tab     Tab
	mode    Mode
	lists   [3]list.Model
	spin    spinner.Model
	confirm ConfirmationDialog
	dialog  *ProductDialog
	email   textinput.Model
	target  order.Order
	stage   export.Stage

	notice    string
	noticeErr bool
	width     int
	height    int
}

// Messages
type storeChangedMsg struct{}

type opDoneMsg struct {
	notice string
	err    error
}

type formSavedMsg struct {
	ok  bool
	err error
}

type exportEventMsg struct{ ev export.Event }

type exportDoneMsg struct {
	link string
	err  error
}

func NewModel(ctx context.Context, deps Deps) Model {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	m := Model{deps: deps, ctx: ctx, stage: export.StageIdle}
	for i := range m.lists {
		l := list.New(nil, itemDelegate{}, 0, 0)
		l.Title = tabNames[i]
		l.Styles.Title = titleStyle
		l.SetShowStatusBar(false)
		l.SetShowHelp(false)
		l.SetFilteringEnabled(false)
		l.DisableQuitKeybindings()
		m.lists[i] = l
	}

	m.spin = spinner.New()
	m.spin.Spinner = spinner.Dot
	m.spin.Style = infoStyle

	m.email = textinput.New()
	m.email.Placeholder = "customer@example.com"
	m.email.CharLimit = 254
	m.email.Width = 40
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.refresh(TabProducts), m.refresh(TabDesigns), m.refresh(TabOrders))
}

// op runs fn off the UI loop and reports its outcome as a notice.
func (m Model) op(fn func(ctx context.Context) (string, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		notice, err := fn(ctx)
		return opDoneMsg{notice: notice, err: err}
	}
}

func (m Model) refresh(t Tab) tea.Cmd {
	return m.op(func(ctx context.Context) (string, error) {
		switch t {
		case TabProducts:
			return "", m.deps.Products.Fetch(ctx)
		case TabDesigns:
			return "", m.deps.Designs.Fetch(ctx)
		default:
			return "", m.deps.Orders.Fetch(ctx)
		}
	})
}

func (m *Model) syncLists() {
	products := m.deps.Products.Store.State().Items
	items := make([]list.Item, len(products))
	for i, p := range products {
		items[i] = productItem{p: p}
	}
	m.lists[TabProducts].SetItems(items)

	designs := m.deps.Designs.Store.State().Items
	items = make([]list.Item, len(designs))
	for i, s := range designs {
		items[i] = designItem{s: s, base: m.deps.BasePrice}
	}
	m.lists[TabDesigns].SetItems(items)

	orders := m.deps.Orders.Store.State().Items
	items = make([]list.Item, len(orders))
	for i, o := range orders {
		items[i] = orderItem{o: o}
	}
	m.lists[TabOrders].SetItems(items)
}

func (m *Model) setNotice(notice string, err error) {
	if err != nil {
		m.notice, m.noticeErr = err.Error(), true
		return
	}
	if notice != "" {
		m.notice, m.noticeErr = notice, false
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		for i := range m.lists {
			m.lists[i].SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case storeChangedMsg:
		m.syncLists()
		return m, nil

	case opDoneMsg:
		m.syncLists()
		m.setNotice(msg.notice, msg.err)
		return m, nil

	case formSavedMsg:
		if m.dialog == nil {
			return m, nil
		}
		m.dialog.saving = false
		if msg.err != nil || !msg.ok {
			err := msg.err
			if err == nil {
				err = errors.New("product was not saved")
			}
			m.setNotice("", err)
			return m, nil
		}
		m.dialog.Form.Reset()
		m.dialog, m.mode = nil, ModeBrowse
		m.syncLists()
		m.setNotice("Product saved", nil)
		return m, nil

	case exportEventMsg:
		m.stage = msg.ev.Stage
		return m, nil

	case exportDoneMsg:
		m.stage = m.exportStage()
		var serr *export.StageError
		switch {
		case errors.As(msg.err, &serr):
			m.setNotice("", errors.New(serr.UserMessage()))
		case msg.err != nil:
			m.setNotice("", msg.err)
		default:
			m.setNotice("Bill sent: "+msg.link, nil)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	return m.forward(msg)
}

// forward hands non-key messages (cursor blink and the like) to the active widget.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.mode {
	case ModeProductForm:
		cmd, _ = m.dialog.Update(msg)
	case ModeEmail:
		m.email, cmd = m.email.Update(msg)
	case ModeBrowse:
		m.lists[m.tab], cmd = m.lists[m.tab].Update(msg)
	}
	return m, cmd
}

func (m Model) exportStage() export.Stage {
	if m.deps.Export == nil {
		return export.StageIdle
	}
	return m.deps.Export.Stage()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeConfirm:
		cmd, done := m.confirm.Update(msg)
		if done {
			m.mode = ModeBrowse
		}
		return m, cmd

	case ModeProductForm:
		if msg.String() == "esc" && !m.dialog.saving {
			m.dialog, m.mode = nil, ModeBrowse
			return m, nil
		}
		cmd, submit := m.dialog.Update(msg)
		if !submit {
			return m, cmd
		}
		m.dialog.saving = true
		// the command goroutine works on a copy; Update owns the dialog form
		f, ctx, products := *m.dialog.Form, m.ctx, m.deps.Products
		return m, func() tea.Msg {
			ok, err := f.Submit(ctx, products)
			return formSavedMsg{ok: ok, err: err}
		}

	case ModeEmail:
		switch msg.String() {
		case "esc":
			m.email.Blur()
			m.mode = ModeBrowse
			return m, nil
		case "enter":
			m.email.Blur()
			m.mode = ModeBrowse
			return m.startExport(m.email.Value())
		}
		var cmd tea.Cmd
		m.email, cmd = m.email.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab", "right":
		m.tab = (m.tab + 1) % Tab(len(tabNames))
		return m, nil
	case "shift+tab", "left":
		m.tab = (m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
		return m, nil
	case "r":
		return m, m.refresh(m.tab)
	}

	switch m.tab {
	case TabProducts:
		switch msg.String() {
		case "a":
			m.dialog, m.mode = NewProductDialogCreate(), ModeProductForm
			return m, nil
		case "enter", "e":
			if it, ok := m.lists[TabProducts].SelectedItem().(productItem); ok {
				m.dialog, m.mode = NewProductDialogEdit(it.p), ModeProductForm
			}
			return m, nil
		case "d":
			if it, ok := m.lists[TabProducts].SelectedItem().(productItem); ok {
				m.askDelete(it.p)
			}
			return m, nil
		}

	case TabDesigns:
		switch msg.String() {
		case "enter", "p":
			if it, ok := m.lists[TabDesigns].SelectedItem().(designItem); ok {
				m.dialog, m.mode = NewProductDialogFromDesign(it.s, m.deps.BasePrice), ModeProductForm
			}
			return m, nil
		case "d", "x":
			if it, ok := m.lists[TabDesigns].SelectedItem().(designItem); ok {
				m.askReject(it.s)
			}
			return m, nil
		}

	case TabOrders:
		if s := msg.String(); s == "enter" || s == "e" {
			it, ok := m.lists[TabOrders].SelectedItem().(orderItem)
			switch {
			case !ok:
				return m, nil
			case m.deps.Export == nil:
				m.setNotice("", errors.New("bill export is not configured"))
				return m, nil
			case m.deps.Export.Busy():
				m.setNotice("", export.ErrBusy)
				return m, nil
			}
			m.target = it.o
			m.email.SetValue("")
			m.mode = ModeEmail
			return m, m.email.Focus()
		}
	}

	var cmd tea.Cmd
	m.lists[m.tab], cmd = m.lists[m.tab].Update(msg)
	return m, cmd
}

func (m *Model) askDelete(p product.Product) {
	m.confirm = NewConfirmationDialog("Delete product", fmt.Sprintf("Delete %q?", p.Title))
	m.confirm.OnConfirm = func() tea.Cmd {
		return m.op(func(ctx context.Context) (string, error) {
			removed, err := m.deps.Products.Delete(ctx, p.ID)
			if err != nil {
				return "", err
			}
			if !removed {
				return "Product was already removed", nil
			}
			return "Deleted " + p.Title, nil
		})
	}
	m.mode = ModeConfirm
}

func (m *Model) askReject(s design.Submission) {
	m.confirm = NewConfirmationDialog("Reject design", fmt.Sprintf("Reject %q from %s?", s.Title, s.Name))
	m.confirm.OnConfirm = func() tea.Cmd {
		return m.op(func(ctx context.Context) (string, error) {
			removed, err := m.deps.Designs.Reject(ctx, s.ID)
			if err != nil {
				return "", err
			}
			if !removed {
				return "Design was already removed", nil
			}
			return "Rejected " + s.Title, nil
		})
	}
	m.mode = ModeConfirm
}

func (m Model) startExport(recipient string) (tea.Model, tea.Cmd) {
	flow, ctx, o := m.deps.Export, m.ctx, m.target
	m.stage = export.StageCapturing
	m.notice = ""
	return m, func() tea.Msg {
		link, err := flow.Run(ctx, o, recipient)
		return exportDoneMsg{link: link, err: err}
	}
}

func (m Model) View() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		if Tab(i) == m.tab {
			tabs[i] = activeTabStyle.Render(name)
		} else {
			tabs[i] = inactiveTabStyle.Render(name)
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	var body string
	switch m.mode {
	case ModeConfirm:
		body = lipgloss.Place(m.width, m.height-6, lipgloss.Center, lipgloss.Center, m.confirm.View())
	case ModeProductForm:
		body = m.dialog.View()
	case ModeEmail:
		body = boxStyle.Render(titleStyle.Render("Export bill for "+m.target.ID) + "\n" +
			"Send to " + m.email.View() + "\n" +
			helpStyle.Render(FormatKey("enter", "send")+" • "+FormatKey("esc", "cancel")))
	default:
		body = m.browseView()
	}

	var footer []string
	if m.stage != "" && m.stage != export.StageIdle && m.stage != export.StageDone {
		footer = append(footer, m.spin.View()+" "+infoStyle.Render(fmt.Sprintf("exporting %s: %s", m.target.ID, m.stage)))
	}
	if m.notice != "" {
		if m.noticeErr {
			footer = append(footer, dangerStyle.Render("✗ "+m.notice))
		} else {
			footer = append(footer, successStyle.Render("✓ "+m.notice))
		}
	}
	footer = append(footer, helpStyle.Render(m.help()))

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, strings.Join(footer, "\n"))
}

func (m Model) browseView() string {
	var loading bool
	var err error
	switch m.tab {
	case TabProducts:
		st := m.deps.Products.Store.State()
		loading, err = st.Loading, st.Err
	case TabDesigns:
		st := m.deps.Designs.Store.State()
		loading, err = st.Loading, st.Err
	case TabOrders:
		st := m.deps.Orders.Store.State()
		loading, err = st.Loading, st.Err
	}
	view := m.lists[m.tab].View()
	if loading {
		view = m.spin.View() + " " + mutedStyle.Render("loading...") + "\n" + view
	}
	if err != nil {
		view += "\n" + dangerStyle.Render("could not load: "+err.Error())
	}
	return view
}

func (m Model) help() string {
	keys := []string{FormatKey("tab", "switch"), FormatKey("r", "refresh")}
	switch m.tab {
	case TabProducts:
		keys = append(keys, FormatKey("a", "add"), FormatKey("enter", "edit"), FormatKey("d", "delete"))
	case TabDesigns:
		keys = append(keys, FormatKey("enter", "add to products"), FormatKey("x", "reject"))
	case TabOrders:
		keys = append(keys, FormatKey("e", "export bill"))
	}
	return strings.Join(append(keys, FormatKey("q", "quit")), " • ")
}

// RunConsole starts the interactive console and blocks until it exits.
func RunConsole(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(NewModel(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))

	changed := func() { p.Send(storeChangedMsg{}) }
	unsubs := []func(){
		deps.Products.Store.Subscribe(func(state.ListState[product.Product]) { changed() }),
		deps.Designs.Store.Subscribe(func(state.ListState[design.Submission]) { changed() }),
		deps.Orders.Store.Subscribe(func(state.ListState[order.Order]) { changed() }),
	}
	if deps.Export != nil {
		unsubs = append(unsubs, deps.Export.Observe(func(ev export.Event) { p.Send(exportEventMsg{ev: ev}) }))
	}
	defer func() {
		for _, u := range unsubs {
			u()
		}
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
