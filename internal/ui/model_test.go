package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/freightdesk/freight-terminal/internal/api"
	"github.com/freightdesk/freight-terminal/internal/models"
	"github.com/freightdesk/freight-terminal/internal/places"
)

type stubTokenSource struct {
	tok string
	err error
}

func (s stubTokenSource) Token() (string, error) { return s.tok, s.err }

type stubClient struct {
	quotes    []models.Quote
	customers []models.Customer
	deleted   []int
	emailReq  *api.EmailRequest
	err       error
}

func (s *stubClient) ListQuotes(ctx context.Context, token string) ([]models.Quote, error) {
	return s.quotes, s.err
}

func (s *stubClient) CreateQuote(ctx context.Context, token string, draft models.Quote) (*models.Quote, error) {
	if s.err != nil {
		return nil, s.err
	}
	draft.ID = 99
	return &draft, nil
}

func (s *stubClient) UpdateQuote(ctx context.Context, token string, quote models.Quote) (*models.Quote, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &quote, nil
}

func (s *stubClient) DeleteQuote(ctx context.Context, token string, id int) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubClient) ListCustomers(ctx context.Context, token string) ([]models.Customer, error) {
	return s.customers, s.err
}

func (s *stubClient) SendEmail(ctx context.Context, token string, req api.EmailRequest) error {
	s.emailReq = &req
	return s.err
}

type stubResolver struct {
	place *places.Place
	err   error
}

func (s stubResolver) Resolve(ctx context.Context, query string) (*places.Place, error) {
	return s.place, s.err
}

func testModel() Model {
	return NewModel(&stubClient{}, stubTokenSource{tok: "t"}, stubResolver{}, nil)
}

func loadedModel(quotes ...models.Quote) Model {
	m := testModel()
	updated, _ := m.Update(quotesFetchedMsg{quotes: quotes})
	return updated.(Model)
}

func sampleQuotes(n int) []models.Quote {
	quotes := make([]models.Quote, n)
	for i := range quotes {
		quotes[i] = models.Quote{
			ID:       i + 1,
			Type:     "FTL",
			Customer: "Acme Logistics",
		}
	}
	return quotes
}

func TestNewModel(t *testing.T) {
	m := testModel()

	if m.state != StateLoading {
		t.Errorf("NewModel() state = %v, want StateLoading", m.state)
	}

	if m.ctrl == nil {
		t.Fatal("NewModel() controller should not be nil")
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	m := testModel()

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(Model)

	if m.width != 120 {
		t.Errorf("After WindowSizeMsg, width = %d, want 120", m.width)
	}

	if m.height != 40 {
		t.Errorf("After WindowSizeMsg, height = %d, want 40", m.height)
	}
}

func TestModel_QuotesFetched(t *testing.T) {
	m := testModel()

	updated, _ := m.Update(quotesFetchedMsg{quotes: sampleQuotes(3)})
	m = updated.(Model)

	if m.state != StateList {
		t.Errorf("After fetch, state = %v, want StateList", m.state)
	}

	if m.ctrl.Len() != 3 {
		t.Errorf("After fetch, controller has %d quotes, want 3", m.ctrl.Len())
	}
}

func TestModel_QuotesFetched_Unauthorized(t *testing.T) {
	m := testModel()

	updated, _ := m.Update(quotesFetchedMsg{err: api.ErrUnauthorized})
	m = updated.(Model)

	if m.state != StateError {
		t.Errorf("After 401, state = %v, want StateError", m.state)
	}

	if m.err == nil {
		t.Error("After 401, err should not be nil")
	}
}

func TestModel_QuotesFetched_NetworkError(t *testing.T) {
	m := testModel()

	updated, _ := m.Update(quotesFetchedMsg{err: errors.New("connection refused")})
	m = updated.(Model)

	// Network failures are not blocking; the list shows with a notice.
	if m.state != StateList {
		t.Errorf("After network error, state = %v, want StateList", m.state)
	}

	if m.notice == "" {
		t.Error("After network error, expected a notice")
	}
}

func TestModel_CtrlC_Quits(t *testing.T) {
	m := testModel()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Error("Expected Ctrl+C to return quit command")
	}
}

func TestModel_Search(t *testing.T) {
	m := loadedModel(
		models.Quote{ID: 1, Customer: "Acme"},
		models.Quote{ID: 2, Customer: "Globex"},
	)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m = updated.(Model)

	if !m.searching {
		t.Fatal("Expected '/' to start search")
	}

	for _, r := range "glo" {
		updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = updated.(Model)
	}

	if got := len(m.ctrl.Filtered()); got != 1 {
		t.Errorf("After typing 'glo', filtered = %d quotes, want 1", got)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)

	if m.searching {
		t.Error("Expected Esc to leave search mode")
	}

	// The query stays applied after leaving search mode.
	if got := len(m.ctrl.Filtered()); got != 1 {
		t.Errorf("After Esc, filtered = %d quotes, want 1", got)
	}
}

func TestModel_SortKeys(t *testing.T) {
	m := loadedModel(sampleQuotes(2)...)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}})
	m = updated.(Model)

	column, desc := m.ctrl.SortBy()
	if column != "id" || desc {
		t.Errorf("After '1', sort = (%s, %v), want (id, false)", column, desc)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}})
	m = updated.(Model)

	if _, desc := m.ctrl.SortBy(); !desc {
		t.Error("Pressing the same sort key again should flip to descending")
	}
}

func TestModel_SelectAndDelete(t *testing.T) {
	m := loadedModel(sampleQuotes(3)...)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	m = updated.(Model)

	if m.ctrl.SelectionCount() != 1 {
		t.Fatalf("After space, selection = %d, want 1", m.ctrl.SelectionCount())
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	m = updated.(Model)

	if m.state != StateConfirmDelete {
		t.Fatalf("After 'd', state = %v, want StateConfirmDelete", m.state)
	}

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	m = updated.(Model)

	if cmd == nil {
		t.Error("Confirming delete should return a command")
	}

	if m.state != StateLoading {
		t.Errorf("After confirm, state = %v, want StateLoading", m.state)
	}
}

func TestModel_DeleteWithoutSelection(t *testing.T) {
	m := loadedModel(sampleQuotes(2)...)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	m = updated.(Model)

	if m.state != StateList {
		t.Errorf("After 'd' with no selection, state = %v, want StateList", m.state)
	}

	if m.notice == "" {
		t.Error("Expected a warning notice when deleting with no selection")
	}
}

func TestModel_DeleteCancel(t *testing.T) {
	m := loadedModel(sampleQuotes(2)...)
	m.ctrl.ToggleSelect(1)
	m.state = StateConfirmDelete

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = updated.(Model)

	if m.state != StateList {
		t.Errorf("After 'n', state = %v, want StateList", m.state)
	}

	if m.ctrl.SelectionCount() != 1 {
		t.Error("Cancelling the confirmation should keep the selection")
	}
}

func TestModel_DeleteCompleted_Partial(t *testing.T) {
	m := loadedModel(sampleQuotes(3)...)
	m.ctrl.ToggleSelect(1)
	m.ctrl.ToggleSelect(2)

	updated, _ := m.Update(deleteCompletedMsg{
		deleted: []int{1},
		failed:  []int{2},
		err:     errors.New("delete quote 2: boom"),
	})
	m = updated.(Model)

	if m.ctrl.Len() != 2 {
		t.Errorf("After partial delete, %d quotes remain, want 2", m.ctrl.Len())
	}

	// The failed id stays selected for a retry.
	if got := m.ctrl.SelectedIDs(); len(got) != 1 || got[0] != 2 {
		t.Errorf("After partial delete, selection = %v, want [2]", got)
	}

	if m.notice == "" {
		t.Error("Expected a failure notice after a partial delete")
	}
}

func TestModel_EmailFlow(t *testing.T) {
	m := loadedModel(sampleQuotes(2)...)

	// Without a selection the compose screen does not open.
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	m = updated.(Model)

	if m.state != StateList {
		t.Fatalf("After 'm' with no selection, state = %v, want StateList", m.state)
	}

	m.ctrl.ToggleSelect(1)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	m = updated.(Model)

	if m.state != StateEmail {
		t.Fatalf("After 'm' with selection, state = %v, want StateEmail", m.state)
	}

	for _, r := range "Rate update" {
		updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = updated.(Model)
	}

	if m.emailSubject.Value() != "Rate update" {
		t.Errorf("Subject = %q, want 'Rate update'", m.emailSubject.Value())
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Error("Ctrl+S should return a send command")
	}
}

func TestModel_EmailSendInFlightGuard(t *testing.T) {
	m := loadedModel(sampleQuotes(2)...)
	m.ctrl.ToggleSelect(1)
	m.state = StateEmail
	m.emailSubject.Focus()
	m.emailSubject.SetValue("s")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = updated.(Model)

	if cmd == nil {
		t.Fatal("First Ctrl+S should return a send command")
	}

	// A second Ctrl+S before the result arrives must not post again.
	updated, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = updated.(Model)

	if cmd != nil {
		t.Error("Second Ctrl+S while sending should be ignored")
	}

	// A failed send clears the guard so a retry can go out.
	updated, _ = m.Update(emailSentMsg{err: errors.New("smtp down")})
	m = updated.(Model)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Error("Ctrl+S after a failed send should retry")
	}
}

func TestModel_EmailSent(t *testing.T) {
	m := loadedModel(sampleQuotes(2)...)
	m.ctrl.ToggleSelect(1)
	m.state = StateEmail
	m.emailSubject.SetValue("s")
	m.emailContent.SetValue("c")

	updated, _ := m.Update(emailSentMsg{})
	m = updated.(Model)

	if m.state != StateList {
		t.Errorf("After send, state = %v, want StateList", m.state)
	}

	if m.ctrl.SelectionCount() != 0 {
		t.Error("After a successful send, the selection should be cleared")
	}

	if m.emailSubject.Value() != "" || m.emailContent.Value() != "" {
		t.Error("After a successful send, the compose fields should be cleared")
	}
}

func TestModel_EmailSent_Failure(t *testing.T) {
	m := loadedModel(sampleQuotes(2)...)
	m.ctrl.ToggleSelect(1)
	m.state = StateEmail
	m.emailSubject.SetValue("s")

	updated, _ := m.Update(emailSentMsg{err: errors.New("smtp down")})
	m = updated.(Model)

	if m.state != StateEmail {
		t.Errorf("After send failure, state = %v, want StateEmail", m.state)
	}

	if m.ctrl.SelectionCount() != 1 {
		t.Error("After a failed send, the selection should be kept")
	}

	if m.emailSubject.Value() != "s" {
		t.Error("After a failed send, the compose draft should be kept")
	}
}

func TestModel_OpenAddForm(t *testing.T) {
	m := loadedModel(sampleQuotes(1)...)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = updated.(Model)

	if m.state != StateForm {
		t.Fatalf("After 'n', state = %v, want StateForm", m.state)
	}

	if m.form == nil || m.form.mode != formAdd {
		t.Fatal("Expected an add-mode form")
	}

	if cmd == nil {
		t.Error("Opening the form should fetch customers")
	}

	// One empty pickup and one empty delivery stop to start.
	if len(m.form.draft.Quote.Pickup) != 1 || len(m.form.draft.Quote.Delivery) != 1 {
		t.Errorf("New draft stops = %d pickup / %d delivery, want 1/1",
			len(m.form.draft.Quote.Pickup), len(m.form.draft.Quote.Delivery))
	}
}

func TestModel_OpenEditForm(t *testing.T) {
	m := loadedModel(models.Quote{ID: 7, Customer: "Acme"})

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	m = updated.(Model)

	if m.state != StateForm {
		t.Fatalf("After 'e', state = %v, want StateForm", m.state)
	}

	if m.form.mode != formEdit {
		t.Errorf("Form mode = %v, want formEdit", m.form.mode)
	}

	if m.form.draft.Quote.ID != 7 {
		t.Errorf("Form draft id = %d, want 7", m.form.draft.Quote.ID)
	}
}

func TestModel_FormEscCloses(t *testing.T) {
	m := loadedModel(sampleQuotes(1)...)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = updated.(Model)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)

	if m.state != StateList {
		t.Errorf("After Esc, state = %v, want StateList", m.state)
	}

	if m.form != nil {
		t.Error("After Esc, form should be nil")
	}
}

func TestModel_QuoteCreated(t *testing.T) {
	m := loadedModel(sampleQuotes(2)...)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = updated.(Model)

	created := models.Quote{ID: 99, Customer: "Acme"}
	updated, _ = m.Update(quoteCreatedMsg{quote: &created})
	m = updated.(Model)

	if m.state != StateList {
		t.Errorf("After create, state = %v, want StateList", m.state)
	}

	if m.ctrl.Len() != 3 {
		t.Errorf("After create, controller has %d quotes, want 3", m.ctrl.Len())
	}
}

func TestModel_QuoteCreated_Failure(t *testing.T) {
	m := loadedModel(sampleQuotes(1)...)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = updated.(Model)
	m.form.submitting = true

	updated, _ = m.Update(quoteCreatedMsg{err: errors.New("500")})
	m = updated.(Model)

	if m.state != StateForm {
		t.Errorf("After create failure, state = %v, want StateForm (form stays open)", m.state)
	}

	if m.form.submitting {
		t.Error("After create failure, submitting should be cleared")
	}

	if m.form.notice == "" {
		t.Error("After create failure, expected a form notice")
	}
}

func TestModel_PlaceResolved(t *testing.T) {
	m := loadedModel(sampleQuotes(1)...)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = updated.(Model)

	updated, _ = m.Update(placeResolvedMsg{
		index: 0,
		place: &places.Place{Address: "1 Main St", City: "Boston", State: "MA", Country: "USA", Postal: "02101"},
	})
	m = updated.(Model)

	loc := m.form.draft.Quote.Pickup[0]
	if loc.City != "Boston" || loc.Postal != "02101" {
		t.Errorf("After lookup, pickup[0] = %+v, want Boston/02101 filled in", loc)
	}
}

func TestModel_View_States(t *testing.T) {
	tests := []struct {
		name  string
		state AppState
	}{
		{"loading", StateLoading},
		{"list", StateList},
		{"email", StateEmail},
		{"confirm delete", StateConfirmDelete},
		{"error", StateError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := loadedModel(sampleQuotes(2)...)
			m.state = tt.state
			m.width = 80
			m.height = 24

			if view := m.View(); view == "" {
				t.Errorf("View() returned empty string for state %v", tt.state)
			}
		})
	}
}

func TestModel_View_Form(t *testing.T) {
	m := loadedModel(models.Quote{ID: 5, Customer: "Acme"})
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'v'}})
	m = updated.(Model)

	view := m.View()
	if !strings.Contains(view, "Quote #5") {
		t.Errorf("View form should include the quote id, got:\n%s", view)
	}
}

func TestAppState_Constants(t *testing.T) {
	if StateLoading != 0 {
		t.Errorf("StateLoading = %d, want 0", StateLoading)
	}
	if StateList != 1 {
		t.Errorf("StateList = %d, want 1", StateList)
	}
	if StateForm != 2 {
		t.Errorf("StateForm = %d, want 2", StateForm)
	}
	if StateEmail != 3 {
		t.Errorf("StateEmail = %d, want 3", StateEmail)
	}
	if StateConfirmDelete != 4 {
		t.Errorf("StateConfirmDelete = %d, want 4", StateConfirmDelete)
	}
	if StateError != 5 {
		t.Errorf("StateError = %d, want 5", StateError)
	}
}
