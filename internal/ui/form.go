package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/freightdesk/freight-terminal/internal/editor"
	"github.com/freightdesk/freight-terminal/internal/models"
	"github.com/freightdesk/freight-terminal/internal/validate"
)

// formMode distinguishes the three form variants sharing one layout.
type formMode int

const (
	formAdd formMode = iota
	formEdit
	formView
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldEnum           // value cycles through an option set
	fieldFlag           // boolean toggle
	actionAddStop
	actionRemoveStop
	actionSubmit
)

// formField is one focusable row of the flattened form.
type formField struct {
	kind  fieldKind
	key   string
	label string

	// Set for location rows.
	isLocation bool
	dir        editor.Direction
	index      int
}

// locationFieldDef mirrors the original form's per-stop field order.
var locationFieldDefs = []struct{ key, label string }{
	{"address", "Address"},
	{"city", "City"},
	{"state", "State"},
	{"country", "Country"},
	{"postal", "Postal Code"},
	{"phone", "Phone"},
	{"date", "Date"},
	{"time", "Time"},
	{"currency", "Currency"},
	{"equipment", "Equipment"},
	{"", "PO"}, // key filled per direction
	{"packages", "Packages"},
	{"weight", "Weight"},
	{"dimensions", "Dimensions"},
	{"notes", "Notes"},
}

var flagDefs = []struct{ key, label string }{
	{"quote_hot", "Hot"},
	{"quote_team", "Team"},
	{"quote_air_ride", "Air Ride"},
	{"quote_tarp", "TARP"},
	{"quote_hazmat", "Hazmat"},
}

// formState holds one open add/edit/view form.
type formState struct {
	mode   formMode
	draft  editor.Draft
	fields []formField
	focus  int
	input  textinput.Model

	submitting bool
	notice     string
}

func newFormState(mode formMode, draft editor.Draft) *formState {
	ti := textinput.New()
	ti.CharLimit = 500
	ti.Width = 48

	f := &formState{mode: mode, draft: draft, input: ti}
	f.rebuild()
	f.syncInput()
	return f
}

// rebuild recomputes the flattened field list after a structural change
// (stop added or removed), clamping the focus.
func (f *formState) rebuild() {
	var fields []formField

	fields = append(fields,
		formField{kind: fieldEnum, key: "quote_type", label: "Load Type"},
		formField{kind: fieldEnum, key: "quote_customer", label: "Customer"},
		formField{kind: fieldEnum, key: "quote_cust_ref_no", label: "Customer Ref. No"},
		formField{kind: fieldText, key: "quote_booked_by", label: "Booked By"},
		formField{kind: fieldText, key: "quote_temperature", label: "Temperature"},
	)
	for _, fd := range flagDefs {
		fields = append(fields, formField{kind: fieldFlag, key: fd.key, label: fd.label})
	}

	fields = append(fields, f.stopFields(editor.Pickup)...)
	fields = append(fields, f.stopFields(editor.Delivery)...)

	if f.mode != formView {
		fields = append(fields, formField{kind: actionSubmit, label: submitLabel(f.mode)})
	}

	f.fields = fields
	if f.focus >= len(fields) {
		f.focus = len(fields) - 1
	}
	if f.focus < 0 {
		f.focus = 0
	}
}

func (f *formState) stopFields(dir editor.Direction) []formField {
	var fields []formField

	seq := f.draft.Quote.Pickup
	if dir == editor.Delivery {
		seq = f.draft.Quote.Delivery
	}

	for i := range seq {
		for _, fd := range locationFieldDefs {
			key := fd.key
			if key == "" {
				if dir == editor.Pickup {
					key = "pickup_po"
				} else {
					key = "delivery_po"
				}
			}
			fields = append(fields, formField{
				kind: fieldText, key: key, label: fd.label,
				isLocation: true, dir: dir, index: i,
			})
		}
		if f.mode != formView {
			fields = append(fields, formField{
				kind: actionRemoveStop, label: "Remove stop",
				isLocation: true, dir: dir, index: i,
			})
		}
	}

	// An emptied sequence always shows the add affordance instead of a
	// rowless section.
	if f.mode != formView {
		fields = append(fields, formField{
			kind: actionAddStop, label: "Add stop",
			isLocation: true, dir: dir, index: len(seq),
		})
	}

	return fields
}

func submitLabel(mode formMode) string {
	if mode == formAdd {
		return "Create Quote"
	}
	return "Save"
}

func (f *formState) current() formField {
	return f.fields[f.focus]
}

// syncInput loads the focused field's value into the shared text input.
func (f *formState) syncInput() {
	field := f.current()
	if field.kind != fieldText || f.mode == formView {
		f.input.Blur()
		return
	}
	f.input.SetValue(f.fieldValue(field))
	f.input.CursorEnd()
	f.input.Focus()
}

func (f *formState) moveFocus(delta int) {
	next := f.focus + delta
	if next < 0 {
		next = 0
	}
	if next > len(f.fields)-1 {
		next = len(f.fields) - 1
	}
	f.focus = next
	f.syncInput()
}

// applyInput runs the validator on the focused text field's current
// input value and stores the result in the draft.
func (f *formState) applyInput() {
	field := f.current()
	if field.kind != fieldText {
		return
	}
	raw := f.input.Value()
	if field.isLocation {
		f.draft = f.draft.UpdateLocationField(field.dir, field.index, field.key, raw)
	} else {
		f.draft = f.draft.SetField(field.key, raw)
	}
}

// cycle advances an enum field through its option set.
func (f *formState) cycle(delta int) {
	field := f.current()

	switch field.kind {
	case fieldFlag:
		f.draft = f.draft.SetFlag(field.key, !f.flagValue(field.key))
		return
	case fieldEnum:
	default:
		return
	}

	opts := f.enumOptions(field.key)
	if len(opts) == 0 {
		return
	}

	cur := f.fieldValue(field)
	idx := -1
	for i, o := range opts {
		if o == cur {
			idx = i
			break
		}
	}
	idx += delta
	if idx < 0 {
		idx = len(opts) - 1
	}
	if idx >= len(opts) {
		idx = 0
	}
	f.draft = f.draft.SetField(field.key, opts[idx])
}

func (f *formState) enumOptions(key string) []string {
	switch key {
	case "quote_type":
		return validate.LoadTypes
	case "quote_customer":
		return f.draft.Customers.Names
	case "quote_cust_ref_no":
		return f.draft.RefOptions()
	}
	return nil
}

func (f *formState) fieldValue(field formField) string {
	if field.isLocation {
		loc, ok := f.location(field.dir, field.index)
		if !ok {
			return ""
		}
		return locationValue(loc, field.key)
	}

	q := f.draft.Quote
	switch field.key {
	case "quote_type":
		return q.Type
	case "quote_customer":
		return q.Customer
	case "quote_cust_ref_no":
		return q.CustRefNo
	case "quote_booked_by":
		return q.BookedBy
	case "quote_temperature":
		return q.Temperature
	}
	return ""
}

func (f *formState) flagValue(key string) bool {
	q := f.draft.Quote
	switch key {
	case "quote_hot":
		return q.Hot
	case "quote_team":
		return q.Team
	case "quote_air_ride":
		return q.AirRide
	case "quote_tarp":
		return q.Tarp
	case "quote_hazmat":
		return q.Hazmat
	}
	return false
}

func (f *formState) location(dir editor.Direction, i int) (models.Location, bool) {
	seq := f.draft.Quote.Pickup
	if dir == editor.Delivery {
		seq = f.draft.Quote.Delivery
	}
	if i < 0 || i >= len(seq) {
		return models.Location{}, false
	}
	return seq[i], true
}

func locationValue(loc models.Location, key string) string {
	switch key {
	case "address":
		return loc.Address
	case "city":
		return loc.City
	case "state":
		return loc.State
	case "country":
		return loc.Country
	case "postal":
		return loc.Postal
	case "phone":
		return loc.Phone
	case "date":
		return loc.Date
	case "time":
		return loc.Time
	case "currency":
		return loc.Currency
	case "equipment":
		return loc.Equipment
	case "pickup_po":
		return loc.PickupPO
	case "delivery_po":
		return loc.DeliveryPO
	case "packages":
		if loc.Packages == 0 {
			return ""
		}
		return strconv.Itoa(loc.Packages)
	case "weight":
		if loc.Weight == 0 {
			return ""
		}
		return strconv.FormatFloat(loc.Weight, 'f', -1, 64)
	case "dimensions":
		return loc.Dimensions
	case "notes":
		return loc.Notes
	}
	return ""
}

func (f *formState) fieldError(field formField) string {
	if field.isLocation {
		return f.draft.LocationError(field.dir, field.index, field.key)
	}
	return f.draft.Errors[field.key]
}

// view renders the whole form with the focused row highlighted.
func (f *formState) view(title string) string {
	var sections []string
	sections = append(sections, titleStyle.Render(title))

	var lastSection string
	for i, field := range f.fields {
		if s := f.sectionFor(field); s != lastSection {
			sections = append(sections, sectionHeaderStyle.Render(s))
			lastSection = s
		}
		sections = append(sections, f.renderField(i, field))
	}

	if f.notice != "" {
		sections = append(sections, "", noticeStyle.Render(f.notice))
	}

	help := "↑/↓: Field • ←/→/Space: Change option • Ctrl+L: Lookup address • Enter: Action • Esc: Close"
	if f.mode == formView {
		help = "↑/↓: Scroll • Esc: Close"
	}
	sections = append(sections, helpStyle.Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (f *formState) sectionFor(field formField) string {
	if !field.isLocation {
		return "General"
	}
	name := "Pickup"
	if field.dir == editor.Delivery {
		name = "Delivery"
	}
	if field.kind == actionAddStop {
		return name
	}
	return fmt.Sprintf("%s #%d", name, field.index+1)
}

func (f *formState) renderField(i int, field formField) string {
	focused := i == f.focus

	label := labelStyle
	if focused {
		label = focusedLabelStyle
	}

	switch field.kind {
	case actionAddStop, actionRemoveStop, actionSubmit:
		text := "[ " + field.label + " ]"
		if focused {
			return focusedLabelStyle.Render("› " + text)
		}
		return mutedStyle.Render("  " + text)

	case fieldFlag:
		mark := "[ ]"
		if f.flagValue(field.key) {
			mark = "[x]"
		}
		prefix := "  "
		if focused {
			prefix = "› "
		}
		return fmt.Sprintf("%s%s %s", prefix, label.Render(field.label+":"), valueStyle.Render(mark))

	case fieldEnum:
		val := f.fieldValue(field)
		if val == "" {
			val = "Select..."
		}
		prefix := "  "
		if focused {
			prefix = "› "
		}
		row := fmt.Sprintf("%s%s %s", prefix, label.Render(field.label+":"), valueStyle.Render("‹ "+val+" ›"))
		if errMsg := f.fieldError(field); errMsg != "" {
			row += " " + fieldErrorStyle.Render("✗ "+errMsg)
		}
		return row

	default:
		prefix := "  "
		var value string
		if focused && f.mode != formView {
			prefix = "› "
			value = f.input.View()
		} else {
			value = valueStyle.Render(f.fieldValue(field))
		}
		row := fmt.Sprintf("%s%s %s", prefix, label.Render(field.label+":"), value)
		if errMsg := f.fieldError(field); errMsg != "" {
			row += " " + fieldErrorStyle.Render("✗ "+errMsg)
		}
		return row
	}
}

// stopCount renders the sequence sizes for the form footer.
func (f *formState) stopCount() string {
	return strings.TrimSpace(fmt.Sprintf("%d pickup / %d delivery stops",
		len(f.draft.Quote.Pickup), len(f.draft.Quote.Delivery)))
}
