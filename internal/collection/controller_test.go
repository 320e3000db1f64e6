package collection

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/freightdesk/freight-terminal/internal/models"
)

func seedController(quotes ...models.Quote) *Controller {
	c := NewController()
	c.StartFetch()
	c.SetQuotes(quotes)
	return c
}

func sampleQuotes() []models.Quote {
	return []models.Quote{
		{ID: 1, Type: "FTL", Customer: "Acme", CreatedAt: "2026-01-03"},
		{ID: 2, Type: "LTL", Customer: "Globex", CreatedAt: "2026-01-01"},
		{ID: 3, Type: "FTL", Customer: "Initech", CreatedAt: "2026-01-02"},
	}
}

func TestController_FetchStateMachine(t *testing.T) {
	c := NewController()
	if c.State() != Idle {
		t.Errorf("initial state = %v, want Idle", c.State())
	}

	c.StartFetch()
	if c.State() != Loading {
		t.Errorf("state = %v, want Loading", c.State())
	}

	c.SetQuotes(sampleQuotes())
	if c.State() != Loaded || c.Len() != 3 {
		t.Errorf("state = %v len = %d, want Loaded with 3", c.State(), c.Len())
	}

	// Re-entering the loop on a failed refresh.
	c.StartFetch()
	c.SetError(errors.New("boom"))
	if c.State() != Failed || c.Err() == nil {
		t.Errorf("state = %v err = %v, want Failed with error", c.State(), c.Err())
	}
}

func TestController_Filter(t *testing.T) {
	c := seedController(sampleQuotes()...)

	// Empty query matches everything.
	if got := len(c.Filtered()); got != 3 {
		t.Errorf("empty query matched %d, want 3", got)
	}

	// Case-insensitive substring over scalar fields.
	c.SetSearch("gLoB")
	got := c.Filtered()
	if len(got) != 1 || got[0].Customer != "Globex" {
		t.Errorf("Filtered() = %v, want only Globex", got)
	}

	// Matches the stringified id too.
	idOnly := seedController(models.Quote{ID: 77}, models.Quote{ID: 8})
	idOnly.SetSearch("77")
	if got := idOnly.Filtered(); len(got) != 1 || got[0].ID != 77 {
		t.Errorf("id query matched %v, want only id 77", got)
	}

	// No field matches.
	c.SetSearch("zzzz")
	if got := len(c.Filtered()); got != 0 {
		t.Errorf("hopeless query matched %d, want 0", got)
	}
}

func TestController_SortToggle(t *testing.T) {
	c := seedController(sampleQuotes()...)

	// Default: created_at descending.
	column, desc := c.SortBy()
	if column != "created_at" || !desc {
		t.Errorf("default sort = %s desc=%v, want created_at descending", column, desc)
	}
	if got := c.Filtered(); got[0].ID != 1 {
		t.Errorf("first row id = %d, want 1 (newest created_at)", got[0].ID)
	}

	// New column resets to ascending.
	c.ToggleSort("quote_customer")
	column, desc = c.SortBy()
	if column != "quote_customer" || desc {
		t.Errorf("sort = %s desc=%v, want quote_customer ascending", column, desc)
	}
	if got := c.Filtered(); got[0].Customer != "Acme" {
		t.Errorf("first row = %s, want Acme", got[0].Customer)
	}

	// Same column toggles direction.
	c.ToggleSort("quote_customer")
	_, desc = c.SortBy()
	if !desc {
		t.Error("re-selecting the column should toggle to descending")
	}
	if got := c.Filtered(); got[0].Customer != "Initech" {
		t.Errorf("first row = %s, want Initech", got[0].Customer)
	}

	c.ToggleSort("quote_customer")
	_, desc = c.SortBy()
	if desc {
		t.Error("third toggle should be ascending again")
	}
}

func TestController_SortNumericAndEmpty(t *testing.T) {
	c := seedController(
		models.Quote{ID: 10, Customer: "B"},
		models.Quote{ID: 2, Customer: ""},
		models.Quote{ID: 7, Customer: "a"},
	)

	c.ToggleSort("id")
	got := c.Filtered()
	if got[0].ID != 2 || got[1].ID != 7 || got[2].ID != 10 {
		t.Errorf("numeric sort order = %v, want [2 7 10]", []int{got[0].ID, got[1].ID, got[2].ID})
	}

	// Empty strings sort as the minimal value; collation is
	// case-insensitive ("a" before "B").
	c.ToggleSort("quote_customer")
	got = c.Filtered()
	if got[0].Customer != "" || got[1].Customer != "a" || got[2].Customer != "B" {
		t.Errorf("string sort order = %q,%q,%q, want empty,a,B", got[0].Customer, got[1].Customer, got[2].Customer)
	}
}

func TestController_Pagination(t *testing.T) {
	var quotes []models.Quote
	for i := 1; i <= 25; i++ {
		quotes = append(quotes, models.Quote{ID: i, Customer: fmt.Sprintf("Cust%02d", i)})
	}
	c := seedController(quotes...)
	c.ToggleSort("id")

	if c.TotalPages() != 3 {
		t.Errorf("TotalPages() = %d, want 3", c.TotalPages())
	}

	rows := c.PageRows()
	if len(rows) != PageSize || rows[0].ID != 1 {
		t.Errorf("page 1 = %d rows starting %d, want 10 starting 1", len(rows), rows[0].ID)
	}

	c.SetPage(3)
	rows = c.PageRows()
	if len(rows) != 5 || rows[0].ID != 21 {
		t.Errorf("page 3 = %d rows starting %d, want 5 starting 21", len(rows), rows[0].ID)
	}
}

func TestController_PageClampsWhenFilterShrinks(t *testing.T) {
	var quotes []models.Quote
	for i := 1; i <= 25; i++ {
		quotes = append(quotes, models.Quote{ID: i, Customer: "Acme"})
	}
	c := seedController(quotes...)
	c.SetPage(3)

	// The filter leaves a single page; the stored page is out of range
	// but the window clamps instead of stranding the view.
	c.SetSearch("1") // ids containing "1": 1, 10-19, 21
	if c.Page() > c.TotalPages() {
		t.Errorf("Page() = %d beyond TotalPages() = %d", c.Page(), c.TotalPages())
	}
	if len(c.PageRows()) == 0 {
		t.Error("clamped page should still render rows")
	}
}

func TestController_Selection(t *testing.T) {
	c := seedController(sampleQuotes()...)

	c.ToggleSelect(1)
	c.ToggleSelect(3)
	if !reflect.DeepEqual(c.SelectedIDs(), []int{1, 3}) {
		t.Errorf("SelectedIDs() = %v, want [1 3]", c.SelectedIDs())
	}

	c.ToggleSelect(1)
	if c.IsSelected(1) || !c.IsSelected(3) {
		t.Error("toggle should deselect id 1 only")
	}

	c.ClearSelection()
	if c.SelectionCount() != 0 {
		t.Errorf("SelectionCount() = %d after clear", c.SelectionCount())
	}
}

func TestController_ToggleSelectAll(t *testing.T) {
	c := seedController(sampleQuotes()...)

	c.ToggleSelectAll()
	if c.SelectionCount() != 3 {
		t.Errorf("SelectionCount() = %d, want all 3 page rows", c.SelectionCount())
	}

	// All page rows selected: toggling again clears everything.
	c.ToggleSelectAll()
	if c.SelectionCount() != 0 {
		t.Errorf("SelectionCount() = %d after second toggle, want 0", c.SelectionCount())
	}

	// Partial selection: toggling selects the page rows.
	c.ToggleSelect(2)
	c.ToggleSelectAll()
	if c.SelectionCount() != 3 {
		t.Errorf("SelectionCount() = %d, want 3", c.SelectionCount())
	}
}

func TestController_ApplyCreate(t *testing.T) {
	c := seedController()

	created := models.Quote{
		ID: 42, Type: "FTL", Customer: "Acme", CustRefNo: "REF1",
		Pickup: models.LocationList{}, Delivery: models.LocationList{},
	}
	c.ApplyCreate(created)

	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	if c.Quotes()[0].ID != 42 {
		t.Errorf("cached id = %d, want the server-assigned 42", c.Quotes()[0].ID)
	}
}

func TestController_ApplyUpdate(t *testing.T) {
	c := seedController(sampleQuotes()...)

	c.ApplyUpdate(models.Quote{ID: 2, Type: "FTL", Customer: "Globex Intl"})

	var found bool
	for _, q := range c.Quotes() {
		if q.ID == 2 {
			found = true
			if q.Customer != "Globex Intl" {
				t.Errorf("Customer = %s, want Globex Intl", q.Customer)
			}
		}
	}
	if !found {
		t.Fatal("updated record missing from cache")
	}

	// Unknown id is a no-op.
	c.ApplyUpdate(models.Quote{ID: 99})
	if c.Len() != 3 {
		t.Errorf("Len() = %d after unknown update, want 3", c.Len())
	}
}

func TestController_ApplyDelete(t *testing.T) {
	c := seedController(sampleQuotes()...)
	c.ToggleSelect(1)
	c.ToggleSelect(3)

	c.ApplyDelete([]int{3, 1})

	if c.Len() != 1 || c.Quotes()[0].ID != 2 {
		t.Errorf("remaining = %v, want only id 2", c.Quotes())
	}
	if c.SelectionCount() != 0 {
		t.Errorf("SelectionCount() = %d, want selection emptied", c.SelectionCount())
	}
}

func TestController_ApplyDeletePartial(t *testing.T) {
	c := seedController(sampleQuotes()...)
	c.ToggleSelect(1)
	c.ToggleSelect(2)

	// Only id 1's remote delete succeeded; id 2 stays cached and
	// selected for retry.
	c.ApplyDelete([]int{1})

	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if c.IsSelected(1) || !c.IsSelected(2) {
		t.Error("selection should keep only the failed id")
	}
}
