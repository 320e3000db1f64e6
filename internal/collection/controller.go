// Package collection owns the authoritative cached list of persisted
// quotes and its view state: search, sort, pagination, and the selection
// set for bulk actions. Nothing else mutates the cache; editors hand
// their results back through the Apply methods.
package collection

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/freightdesk/freight-terminal/internal/models"
)

// FetchState tracks the list fetch lifecycle. Every fetch re-enters
// Loading and lands in Loaded or Failed.
type FetchState int

const (
	Idle FetchState = iota
	Loading
	Loaded
	Failed
)

// PageSize is the fixed number of rows per page.
const PageSize = 10

// DefaultSortColumn matches the list's initial ordering: newest first.
const DefaultSortColumn = "created_at"

// Controller is the quote collection view state.
type Controller struct {
	state  FetchState
	quotes []models.Quote
	err    error

	searchQuery string
	sortBy      string
	sortDesc    bool
	page        int

	selected map[int]struct{}
	collator *collate.Collator
}

// NewController creates an idle controller with the default view state.
func NewController() *Controller {
	return &Controller{
		state:    Idle,
		sortBy:   DefaultSortColumn,
		sortDesc: true,
		page:     1,
		selected: make(map[int]struct{}),
		collator: collate.New(language.English, collate.Loose),
	}
}

// State returns the current fetch state.
func (c *Controller) State() FetchState { return c.state }

// Err returns the fetch error, set only in the Failed state.
func (c *Controller) Err() error { return c.err }

// StartFetch marks a fetch in flight.
func (c *Controller) StartFetch() {
	c.state = Loading
	c.err = nil
}

// SetQuotes replaces the entire cached list with a fetch result.
func (c *Controller) SetQuotes(quotes []models.Quote) {
	c.quotes = quotes
	c.state = Loaded
	c.err = nil
}

// SetError records a fetch failure.
func (c *Controller) SetError(err error) {
	c.state = Failed
	c.err = err
}

// Quotes returns the cached list as fetched, unfiltered and unsorted.
func (c *Controller) Quotes() []models.Quote { return c.quotes }

// Len returns the cached list size.
func (c *Controller) Len() int { return len(c.quotes) }

// SetSearch updates the search query. The current page is deliberately
// left alone; the page window clamps itself instead.
func (c *Controller) SetSearch(query string) {
	c.searchQuery = query
}

// Search returns the current search query.
func (c *Controller) Search() string { return c.searchQuery }

// ToggleSort sorts by the given column: re-selecting the current column
// flips the direction, a new column sorts ascending.
func (c *Controller) ToggleSort(column string) {
	if c.sortBy == column {
		c.sortDesc = !c.sortDesc
		return
	}
	c.sortBy = column
	c.sortDesc = false
}

// SortBy returns the active sort column and direction.
func (c *Controller) SortBy() (column string, desc bool) {
	return c.sortBy, c.sortDesc
}

// Filtered returns the quotes matching the search query, sorted by the
// active column. An empty query matches everything; a record matches
// when any of its scalar fields contains the query, case-insensitively.
func (c *Controller) Filtered() []models.Quote {
	query := strings.ToLower(c.searchQuery)

	var filtered []models.Quote
	for _, q := range c.quotes {
		if query == "" || matchesQuery(q, query) {
			filtered = append(filtered, q)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		less := c.less(filtered[i], filtered[j])
		if c.sortDesc {
			return c.less(filtered[j], filtered[i])
		}
		return less
	})

	return filtered
}

func matchesQuery(q models.Quote, query string) bool {
	for _, field := range q.ScalarFields() {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// less compares two quotes on the active sort column. String columns
// compare with locale-aware collation, numeric columns numerically;
// empty and zero values sort as the minimal value of their type.
func (c *Controller) less(a, b models.Quote) bool {
	aStr, aNum, numeric := a.SortValue(c.sortBy)
	bStr, bNum, _ := b.SortValue(c.sortBy)
	if numeric {
		return aNum < bNum
	}
	return c.collator.CompareString(aStr, bStr) < 0
}

// TotalPages returns the page count for the filtered list. A list with
// no matches still has one (empty) page.
func (c *Controller) TotalPages() int {
	n := len(c.Filtered())
	pages := (n + PageSize - 1) / PageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// Page returns the current page, clamped into the valid range so a
// shrinking filter result can never strand the view past the end.
func (c *Controller) Page() int {
	page := c.page
	if total := c.TotalPages(); page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}
	return page
}

// SetPage moves to the given page.
func (c *Controller) SetPage(page int) {
	c.page = page
}

// PageRows returns the current page's window of the filtered, sorted
// list.
func (c *Controller) PageRows() []models.Quote {
	filtered := c.Filtered()
	page := c.Page()

	start := (page - 1) * PageSize
	if start >= len(filtered) {
		return nil
	}
	end := start + PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end]
}

// ToggleSelect flips one record's membership in the selection set.
func (c *Controller) ToggleSelect(id int) {
	if _, ok := c.selected[id]; ok {
		delete(c.selected, id)
	} else {
		c.selected[id] = struct{}{}
	}
}

// ToggleSelectAll targets exactly the current page's rendered rows: if
// every row on the page is already selected the whole selection is
// cleared, otherwise the selection becomes the page's rows.
func (c *Controller) ToggleSelectAll() {
	rows := c.PageRows()

	all := len(rows) > 0
	for _, q := range rows {
		if _, ok := c.selected[q.ID]; !ok {
			all = false
			break
		}
	}

	if all {
		c.ClearSelection()
		return
	}

	c.selected = make(map[int]struct{}, len(rows))
	for _, q := range rows {
		c.selected[q.ID] = struct{}{}
	}
}

// IsSelected reports whether a record is in the selection set.
func (c *Controller) IsSelected(id int) bool {
	_, ok := c.selected[id]
	return ok
}

// SelectedIDs returns the selection as a sorted id list.
func (c *Controller) SelectedIDs() []int {
	ids := make([]int, 0, len(c.selected))
	for id := range c.selected {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// SelectionCount returns the number of selected records.
func (c *Controller) SelectionCount() int { return len(c.selected) }

// ClearSelection empties the selection set.
func (c *Controller) ClearSelection() {
	c.selected = make(map[int]struct{})
}

// ApplyCreate appends a newly persisted quote to the cache.
func (c *Controller) ApplyCreate(q models.Quote) {
	c.quotes = append(c.quotes, q)
}

// ApplyUpdate replaces the cached record with the same id. Unknown ids
// are ignored.
func (c *Controller) ApplyUpdate(q models.Quote) {
	for i := range c.quotes {
		if c.quotes[i].ID == q.ID {
			c.quotes[i] = q
			return
		}
	}
}

// ApplyDelete removes the given ids from the cache and the selection.
// Partial batch failures reconcile per item: only ids whose remote
// delete succeeded are passed in, so the cache never diverges from the
// remote side.
func (c *Controller) ApplyDelete(ids []int) {
	if len(ids) == 0 {
		return
	}

	deleted := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		deleted[id] = struct{}{}
	}

	kept := c.quotes[:0]
	for _, q := range c.quotes {
		if _, gone := deleted[q.ID]; !gone {
			kept = append(kept, q)
		}
	}
	c.quotes = kept

	for id := range deleted {
		delete(c.selected, id)
	}
}
