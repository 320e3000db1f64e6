package ui

import (
	"errors"
	"fmt"
	"log"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/freightdesk/freight-terminal/internal/api"
	"github.com/freightdesk/freight-terminal/internal/collection"
	"github.com/freightdesk/freight-terminal/internal/editor"
	"github.com/freightdesk/freight-terminal/internal/models"
	"github.com/freightdesk/freight-terminal/internal/places"
)

// AppState represents the current state of the application
type AppState int

const (
	StateLoading       AppState = iota // Fetching the quote list
	StateList                          // Quote table with search/sort/pagination
	StateForm                          // Add/edit/view form
	StateEmail                         // Bulk email compose
	StateConfirmDelete                 // Bulk delete confirmation
	StateError                         // Blocking error (authentication)
)

// Model represents the application's state
type Model struct {
	state  AppState
	width  int
	height int
	err    error

	// Collaborators
	client   api.Client
	creds    TokenSource
	resolver places.Resolver
	logger   *log.Logger

	// List
	ctrl        *collection.Controller
	table       table.Model
	pager       paginator.Model
	searchInput textinput.Model
	searching   bool
	notice      string
	noticeOK    bool

	// Customer reference data
	customers       models.CustomerIndex
	customersLoaded bool

	// Form
	form *formState

	// Email compose
	emailSubject textinput.Model
	emailContent textinput.Model
	emailFocus   int
	emailSending bool

	spinner spinner.Model
}

// NewModel creates a new application model
func NewModel(client api.Client, creds TokenSource, resolver places.Resolver, logger *log.Logger) Model {
	si := textinput.New()
	si.Placeholder = "Search quotes..."
	si.CharLimit = 100
	si.Width = 40

	subject := textinput.New()
	subject.Placeholder = "Subject"
	subject.CharLimit = 200
	subject.Width = 60

	content := textinput.New()
	content.Placeholder = "Message body"
	content.CharLimit = 2000
	content.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ctrl := collection.NewController()

	return Model{
		state:        StateLoading,
		client:       client,
		creds:        creds,
		resolver:     resolver,
		logger:       logger,
		ctrl:         ctrl,
		table:        newQuoteTable(ctrl, 0, 12),
		pager:        paginator.New(),
		searchInput:  si,
		emailSubject: subject,
		emailContent: content,
		spinner:      sp,
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	m.ctrl.StartFetch()
	return tea.Batch(m.spinner.Tick, fetchQuotes(m.client, m.creds))
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width - 4)
		return m, nil
	}

	switch msg := msg.(type) {
	case quotesFetchedMsg:
		return m.handleQuotesFetched(msg)

	case customersFetchedMsg:
		if msg.err != nil {
			m.logf("loading customers: %v", msg.err)
			m.notice = "Failed to load customers."
			m.noticeOK = false
			return m, nil
		}
		m.customers = models.BuildCustomerIndex(msg.customers)
		m.customersLoaded = true
		if m.form != nil {
			m.form.draft = m.form.draft.WithCustomers(m.customers)
		}
		return m, nil

	case quoteCreatedMsg:
		return m.handleCreated(msg)

	case quoteUpdatedMsg:
		return m.handleUpdated(msg)

	case deleteCompletedMsg:
		return m.handleDeleteCompleted(msg)

	case emailSentMsg:
		m.emailSending = false
		if msg.err != nil {
			m.logf("sending emails: %v", msg.err)
			if errors.Is(msg.err, api.ErrUnauthorized) {
				return m.authError(msg.err)
			}
			// Selection and compose draft stay intact for a retry.
			m.notice = "Failed to send emails."
			m.noticeOK = false
			return m, nil
		}
		m.ctrl.ClearSelection()
		m.emailSubject.SetValue("")
		m.emailContent.SetValue("")
		m.state = StateList
		m.notice = "Emails have been sent."
		m.noticeOK = true
		m.refreshList()
		return m, nil

	case placeResolvedMsg:
		if msg.err != nil {
			m.logf("address lookup: %v", msg.err)
			if m.form != nil {
				m.form.notice = "Address lookup found nothing."
			}
			return m, nil
		}
		if m.form != nil && msg.place != nil {
			m.form.draft = m.form.draft.ApplyPlace(msg.dir, msg.index, *msg.place)
			m.form.syncInput()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.state {
		case StateList:
			return m.handleList(keyMsg)
		case StateForm:
			return m.handleForm(keyMsg)
		case StateEmail:
			return m.handleEmail(keyMsg)
		case StateConfirmDelete:
			return m.handleConfirmDelete(keyMsg)
		case StateError:
			// Blocking notice: any key quits.
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m Model) handleQuotesFetched(msg quotesFetchedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logf("loading quotes: %v", msg.err)
		if errors.Is(msg.err, api.ErrUnauthorized) {
			return m.authError(msg.err)
		}
		m.ctrl.SetError(msg.err)
		m.state = StateList
		m.notice = "Failed to load quotes."
		m.noticeOK = false
		m.refreshList()
		return m, nil
	}

	m.ctrl.SetQuotes(msg.quotes)
	m.state = StateList
	m.refreshList()
	return m, nil
}

func (m Model) handleCreated(msg quoteCreatedMsg) (tea.Model, tea.Cmd) {
	if m.form != nil {
		m.form.submitting = false
	}
	if msg.err != nil {
		m.logf("creating quote: %v", msg.err)
		if errors.Is(msg.err, api.ErrUnauthorized) {
			return m.authError(msg.err)
		}
		if m.form != nil {
			m.form.notice = "Failed to create quote."
		}
		return m, nil
	}

	m.ctrl.ApplyCreate(*msg.quote)
	m.form = nil
	m.state = StateList
	m.notice = "Quote created."
	m.noticeOK = true
	m.refreshList()
	return m, nil
}

func (m Model) handleUpdated(msg quoteUpdatedMsg) (tea.Model, tea.Cmd) {
	if m.form != nil {
		m.form.submitting = false
	}
	if msg.err != nil {
		m.logf("updating quote: %v", msg.err)
		if errors.Is(msg.err, api.ErrUnauthorized) {
			return m.authError(msg.err)
		}
		if m.form != nil {
			m.form.notice = "Failed to save quote."
		}
		return m, nil
	}

	m.ctrl.ApplyUpdate(*msg.quote)
	m.form = nil
	m.state = StateList
	m.notice = "Quote updated."
	m.noticeOK = true
	m.refreshList()
	return m, nil
}

func (m Model) handleDeleteCompleted(msg deleteCompletedMsg) (tea.Model, tea.Cmd) {
	// Per-item reconciliation: ids whose remote delete succeeded leave
	// the cache and the selection even when the batch partially failed.
	m.ctrl.ApplyDelete(msg.deleted)
	m.state = StateList

	if msg.err != nil {
		m.logf("deleting quotes: %v (failed ids %v)", msg.err, msg.failed)
		if errors.Is(msg.err, api.ErrUnauthorized) {
			return m.authError(msg.err)
		}
		m.notice = "Failed to delete selected quotes."
		m.noticeOK = false
	} else {
		m.notice = "Selected quotes have been deleted."
		m.noticeOK = true
	}

	m.refreshList()
	return m, nil
}

func (m Model) authError(err error) (tea.Model, tea.Cmd) {
	m.err = err
	m.state = StateError
	return m, nil
}

func (m Model) handleList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.Type {
		case tea.KeyEsc, tea.KeyEnter:
			m.searching = false
			m.searchInput.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			m.ctrl.SetSearch(m.searchInput.Value())
			m.refreshList()
			return m, cmd
		}
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "/":
		m.searching = true
		m.notice = ""
		m.searchInput.Focus()
		return m, textinput.Blink

	case "r":
		m.ctrl.StartFetch()
		m.state = StateLoading
		m.notice = ""
		return m, tea.Batch(m.spinner.Tick, fetchQuotes(m.client, m.creds))

	case "n":
		draft := editor.NewDraft().
			AddLocation(editor.Pickup).
			AddLocation(editor.Delivery).
			WithCustomers(m.customers)
		m.form = newFormState(formAdd, draft)
		m.state = StateForm
		m.notice = ""
		return m, m.ensureCustomers()

	case "e":
		if q, ok := m.cursorQuote(); ok {
			m.form = newFormState(formEdit, editor.DraftFrom(q).WithCustomers(m.customers))
			m.state = StateForm
			m.notice = ""
			return m, m.ensureCustomers()
		}
		return m, nil

	case "v":
		if q, ok := m.cursorQuote(); ok {
			m.form = newFormState(formView, editor.DraftFrom(q))
			m.state = StateForm
			m.notice = ""
		}
		return m, nil

	case " ":
		if q, ok := m.cursorQuote(); ok {
			m.ctrl.ToggleSelect(q.ID)
			m.refreshList()
		}
		return m, nil

	case "a":
		m.ctrl.ToggleSelectAll()
		m.refreshList()
		return m, nil

	case "d":
		if m.ctrl.SelectionCount() == 0 {
			m.notice = "No record selected. Please select a record to delete."
			m.noticeOK = false
			return m, nil
		}
		m.state = StateConfirmDelete
		return m, nil

	case "m":
		if m.ctrl.SelectionCount() == 0 {
			m.notice = "No quote selected. Please select quotes to send emails to."
			m.noticeOK = false
			return m, nil
		}
		m.state = StateEmail
		m.notice = ""
		m.emailFocus = 0
		m.emailSubject.Focus()
		m.emailContent.Blur()
		return m, textinput.Blink

	case "left", "h":
		m.ctrl.SetPage(m.ctrl.Page() - 1)
		m.refreshList()
		return m, nil

	case "right", "l":
		m.ctrl.SetPage(m.ctrl.Page() + 1)
		m.refreshList()
		return m, nil
	}

	// Number keys sort by column.
	if n := sortKeyIndex(msg.String()); n >= 0 && n < len(sortColumns) {
		m.ctrl.ToggleSort(sortColumns[n])
		m.refreshList()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func sortKeyIndex(key string) int {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return -1
	}
	return int(key[0] - '1')
}

func (m Model) handleConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		ids := m.ctrl.SelectedIDs()
		m.state = StateLoading
		return m, tea.Batch(m.spinner.Tick, deleteQuotes(m.client, m.creds, ids))
	default:
		m.state = StateList
		return m, nil
	}
}

func (m Model) handleForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	if f == nil {
		m.state = StateList
		return m, nil
	}

	if msg.Type == tea.KeyEsc {
		m.form = nil
		m.state = StateList
		m.refreshList()
		return m, nil
	}

	if f.mode == formView {
		switch msg.String() {
		case "up", "k":
			f.moveFocus(-1)
		case "down", "j":
			f.moveFocus(1)
		}
		return m, nil
	}

	if f.submitting {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyUp:
		f.moveFocus(-1)
		return m, nil

	case tea.KeyDown:
		f.moveFocus(1)
		return m, nil

	case tea.KeyLeft:
		f.cycle(-1)
		return m, nil

	case tea.KeyRight:
		f.cycle(1)
		return m, nil

	case tea.KeyEnter:
		return m.handleFormEnter()

	case tea.KeyCtrlL:
		field := f.current()
		if field.kind == fieldText && field.isLocation && field.key == "address" {
			query := f.input.Value()
			if query != "" {
				return m, resolvePlace(m.resolver, field.dir, field.index, query)
			}
		}
		return m, nil
	}

	if msg.String() == " " && f.current().kind == fieldFlag {
		f.cycle(1)
		return m, nil
	}

	if f.current().kind == fieldText {
		var cmd tea.Cmd
		f.input, cmd = f.input.Update(msg)
		f.applyInput()
		return m, cmd
	}

	return m, nil
}

func (m Model) handleFormEnter() (tea.Model, tea.Cmd) {
	f := m.form
	field := f.current()

	switch field.kind {
	case actionAddStop:
		f.draft = f.draft.AddLocation(field.dir)
		f.rebuild()
		f.syncInput()
		return m, nil

	case actionRemoveStop:
		// Destructive and immediate, matching the source form.
		f.draft = f.draft.RemoveLocation(field.dir, field.index)
		f.rebuild()
		f.syncInput()
		return m, nil

	case actionSubmit:
		// Field errors do not gate the submit; the server has the last
		// word and rejections surface as a generic failure.
		f.submitting = true
		f.notice = ""
		if f.mode == formAdd {
			return m, createQuote(m.client, m.creds, f.draft.Quote)
		}
		return m, updateQuote(m.client, m.creds, f.draft.Quote)

	case fieldFlag:
		f.cycle(1)
		return m, nil

	default:
		f.moveFocus(1)
		return m, nil
	}
}

func (m Model) handleEmail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.state = StateList
		return m, nil

	case tea.KeyTab, tea.KeyShiftTab:
		if m.emailFocus == 0 {
			m.emailFocus = 1
			m.emailSubject.Blur()
			m.emailContent.Focus()
		} else {
			m.emailFocus = 0
			m.emailContent.Blur()
			m.emailSubject.Focus()
		}
		return m, textinput.Blink

	case tea.KeyCtrlS:
		if m.emailSending {
			return m, nil
		}
		m.emailSending = true
		req := api.EmailRequest{
			IDs:     m.ctrl.SelectedIDs(),
			Subject: m.emailSubject.Value(),
			Content: m.emailContent.Value(),
		}
		return m, sendEmail(m.client, m.creds, req)
	}

	var cmd tea.Cmd
	if m.emailFocus == 0 {
		m.emailSubject, cmd = m.emailSubject.Update(msg)
	} else {
		m.emailContent, cmd = m.emailContent.Update(msg)
	}
	return m, cmd
}

// cursorQuote returns the quote under the table cursor.
func (m Model) cursorQuote() (models.Quote, bool) {
	rows := m.ctrl.PageRows()
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(rows) {
		return models.Quote{}, false
	}
	return rows[cursor], true
}

// refreshList re-renders the table rows and pager from the controller.
func (m *Model) refreshList() {
	m.table.SetRows(quoteTableRows(m.ctrl))
	m.pager.SetTotalPages(m.ctrl.TotalPages())
	m.pager.Page = m.ctrl.Page() - 1
}

func (m Model) ensureCustomers() tea.Cmd {
	if m.customersLoaded {
		return nil
	}
	return fetchCustomers(m.client, m.creds)
}

func (m Model) logf(format string, args ...interface{}) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
	}
}

// View renders the UI
func (m Model) View() string {
	switch m.state {
	case StateLoading:
		return m.viewLoading()
	case StateList:
		return m.viewList()
	case StateForm:
		return m.viewForm()
	case StateEmail:
		return m.viewEmail()
	case StateConfirmDelete:
		return m.viewConfirmDelete()
	case StateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewLoading() string {
	return fmt.Sprintf("\n %s Loading quotes...\n", m.spinner.View())
}

func (m Model) viewList() string {
	title := titleStyle.Render("🚚 Freight Terminal — Quotes")

	column, desc := m.ctrl.SortBy()
	dir := "↑"
	if desc {
		dir = "↓"
	}
	subtitle := mutedStyle.Render(fmt.Sprintf("%d of %d quotes • sort %s %s",
		len(m.ctrl.Filtered()), m.ctrl.Len(), column, dir))

	search := searchBoxStyle.Render(m.searchInput.View())

	pageInfo := mutedStyle.Render(fmt.Sprintf("Page %d/%d %s",
		m.ctrl.Page(), m.ctrl.TotalPages(), m.pager.View()))

	selection := ""
	if n := m.ctrl.SelectionCount(); n > 0 {
		selection = selectedMarkStyle.Render(fmt.Sprintf("%d selected", n))
	}

	var sections []string
	sections = append(sections, title, subtitle, "", search, "", m.table.View(), pageInfo)
	if selection != "" {
		sections = append(sections, selection)
	}
	if m.notice != "" {
		style := noticeStyle
		if m.noticeOK {
			style = successStyle
		}
		sections = append(sections, style.Render(m.notice))
	}

	help := helpStyle.Render("/: Search • 1-7: Sort • ←/→: Page • Space: Select • A: Page select • " +
		"N: New • E: Edit • V: View • D: Delete • M: Email • R: Refresh • Q: Quit")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewForm() string {
	if m.form == nil {
		return ""
	}

	title := "📝 New Quote"
	switch m.form.mode {
	case formEdit:
		title = fmt.Sprintf("📝 Edit Quote #%d", m.form.draft.Quote.ID)
	case formView:
		title = fmt.Sprintf("🔍 Quote #%d", m.form.draft.Quote.ID)
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		m.form.view(title),
		mutedStyle.Render(m.form.stopCount()))
	if m.form.submitting {
		body = lipgloss.JoinVertical(lipgloss.Left, body,
			fmt.Sprintf("%s Submitting...", m.spinner.View()))
	}
	return body
}

func (m Model) viewEmail() string {
	title := titleStyle.Render("✉ Email Selected Quotes")
	subtitle := mutedStyle.Render(fmt.Sprintf("Sending to %d selected quotes", m.ctrl.SelectionCount()))

	var sections []string
	sections = append(sections,
		title,
		subtitle,
		"",
		labelStyle.Render("Subject:"),
		m.emailSubject.View(),
		"",
		labelStyle.Render("Content:"),
		m.emailContent.View(),
	)

	if m.emailSending {
		sections = append(sections, "", fmt.Sprintf("%s Sending...", m.spinner.View()))
	}

	if m.notice != "" {
		sections = append(sections, "", noticeStyle.Render(m.notice))
	}

	sections = append(sections, helpStyle.Render("Tab: Switch field • Ctrl+S: Send • Esc: Cancel"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewConfirmDelete() string {
	title := errorStyle.Render("Are you sure?")
	text := fmt.Sprintf("Delete %d selected quote(s)? This action cannot be undone.", m.ctrl.SelectionCount())
	help := helpStyle.Render("Y: Yes, delete selected • N/Esc: Cancel")

	return lipgloss.JoinVertical(lipgloss.Left, title, "", text, "", help)
}

func (m Model) viewError() string {
	title := errorStyle.Render("✗ Unauthorized")

	msg := "An unknown error occurred"
	if m.err != nil {
		msg = m.err.Error()
	}

	help := helpStyle.Render("You need to log in to access this resource. Press any key to exit.")
	return lipgloss.JoinVertical(lipgloss.Left, title, "", msg, "", help)
}
