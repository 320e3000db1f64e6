package ui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/freightdesk/freight-terminal/internal/collection"
)

// sortColumns maps the number keys 1..n to sortable column keys, in the
// order the columns render.
var sortColumns = []string{
	"id",
	"quote_type",
	"quote_customer",
	"quote_cust_ref_no",
	"quote_booked_by",
	"quote_temperature",
	"created_at",
}

func quoteTableColumns() []table.Column {
	return []table.Column{
		{Title: " ", Width: 3},
		{Title: "ID", Width: 6},
		{Title: "Type", Width: 5},
		{Title: "Customer", Width: 24},
		{Title: "Ref No", Width: 14},
		{Title: "Booked By", Width: 16},
		{Title: "Temp", Width: 8},
		{Title: "Created", Width: 20},
	}
}

// quoteTableRows renders the controller's current page window.
func quoteTableRows(ctrl *collection.Controller) []table.Row {
	pageRows := ctrl.PageRows()
	rows := make([]table.Row, 0, len(pageRows))
	for _, q := range pageRows {
		mark := " "
		if ctrl.IsSelected(q.ID) {
			mark = "✓"
		}
		rows = append(rows, table.Row{
			mark,
			strconv.Itoa(q.ID),
			q.Type,
			q.Customer,
			q.CustRefNo,
			q.BookedBy,
			q.Temperature,
			q.CreatedAt,
		})
	}
	return rows
}

// newQuoteTable creates the list table sized to the window.
func newQuoteTable(ctrl *collection.Controller, width, height int) table.Model {
	t := table.New(
		table.WithColumns(quoteTableColumns()),
		table.WithRows(quoteTableRows(ctrl)),
		table.WithFocused(true),
	)
	if height > 0 {
		t.SetHeight(height)
	}
	if width > 0 {
		t.SetWidth(width)
	}

	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).Foreground(colorPrimary).BorderForeground(colorBorder)
	s.Selected = s.Selected.Foreground(lipgloss.Color("#FFFFFF")).Background(colorBorder)
	t.SetStyles(s)

	return t
}
