// Package editor holds the draft state for creating and editing quotes.
// A Draft is an owned value: every operation returns a new Draft with
// fresh slices, so an open form never shares mutable state with the
// cached list or another form.
package editor

import (
	"github.com/freightdesk/freight-terminal/internal/models"
	"github.com/freightdesk/freight-terminal/internal/places"
	"github.com/freightdesk/freight-terminal/internal/validate"
)

// Direction selects which location sequence an operation targets.
type Direction int

const (
	Pickup Direction = iota
	Delivery
)

func (d Direction) String() string {
	if d == Delivery {
		return "delivery"
	}
	return "pickup"
}

// Draft is an in-memory quote being created or edited, together with its
// field-scoped validation errors. Location errors sit in slices parallel
// to the location sequences, so removing a stop shifts its errors with it.
type Draft struct {
	Quote          models.Quote
	Errors         map[string]string
	PickupErrors   []map[string]string
	DeliveryErrors []map[string]string

	// Customers is the fetched customer reference index; it constrains
	// the quote_cust_ref_no field to the selected customer's numbers.
	Customers models.CustomerIndex
}

// NewDraft returns an empty draft for the create form.
func NewDraft() Draft {
	return Draft{
		Quote: models.Quote{
			Pickup:   models.LocationList{},
			Delivery: models.LocationList{},
		},
		Errors: map[string]string{},
	}
}

// DraftFrom returns a draft seeded from a persisted quote for the edit
// form. Wire decoding has already normalized malformed pickup/delivery
// payloads to empty sequences; nil slices are normalized here so the row
// count and the sequence length always agree.
func DraftFrom(q models.Quote) Draft {
	if q.Pickup == nil {
		q.Pickup = models.LocationList{}
	}
	if q.Delivery == nil {
		q.Delivery = models.LocationList{}
	}
	return Draft{
		Quote:          q,
		Errors:         map[string]string{},
		PickupErrors:   make([]map[string]string, len(q.Pickup)),
		DeliveryErrors: make([]map[string]string, len(q.Delivery)),
	}
}

// WithCustomers attaches the customer reference index.
func (d Draft) WithCustomers(idx models.CustomerIndex) Draft {
	d.Customers = idx
	return d
}

// RefOptions returns the reference numbers valid for the currently
// selected customer. Selecting a different customer changes this set.
func (d Draft) RefOptions() []string {
	return d.Customers.RefsFor(d.Quote.Customer)
}

// SetField validates and stores one scalar quote field.
func (d Draft) SetField(key, raw string) Draft {
	q, errMsg := validate.QuoteField(d.Quote, key, raw)

	if key == "quote_cust_ref_no" && errMsg == "" {
		if opts := d.Customers.RefsFor(q.Customer); len(opts) > 0 && !contains(opts, q.CustRefNo) {
			errMsg = "Reference number does not belong to the selected customer"
		}
	}

	d.Quote = q
	d.Errors = withError(d.Errors, key, errMsg)
	return d
}

// SetFlag stores one of the boolean quote flags. Flags carry no
// validation rules.
func (d Draft) SetFlag(key string, v bool) Draft {
	switch key {
	case "quote_hot":
		d.Quote.Hot = v
	case "quote_team":
		d.Quote.Team = v
	case "quote_air_ride":
		d.Quote.AirRide = v
	case "quote_tarp":
		d.Quote.Tarp = v
	case "quote_hazmat":
		d.Quote.Hazmat = v
	}
	return d
}

// AddLocation appends an empty stop to the end of a sequence. There is no
// maximum; add is always permitted.
func (d Draft) AddLocation(dir Direction) Draft {
	if dir == Pickup {
		d.Quote.Pickup = appendLocation(d.Quote.Pickup)
		d.PickupErrors = append(copyErrorSlice(d.PickupErrors), nil)
	} else {
		d.Quote.Delivery = appendLocation(d.Quote.Delivery)
		d.DeliveryErrors = append(copyErrorSlice(d.DeliveryErrors), nil)
	}
	return d
}

// RemoveLocation deletes the stop at index i, shifting subsequent stops
// and their errors down. Out-of-range indices are ignored.
func (d Draft) RemoveLocation(dir Direction, i int) Draft {
	if dir == Pickup {
		if i < 0 || i >= len(d.Quote.Pickup) {
			return d
		}
		d.Quote.Pickup = removeAt(d.Quote.Pickup, i)
		d.PickupErrors = removeErrAt(d.PickupErrors, i)
	} else {
		if i < 0 || i >= len(d.Quote.Delivery) {
			return d
		}
		d.Quote.Delivery = removeAt(d.Quote.Delivery, i)
		d.DeliveryErrors = removeErrAt(d.DeliveryErrors, i)
	}
	return d
}

// UpdateLocationField validates and stores one raw field value into the
// stop at index i, recording or clearing that field's error.
func (d Draft) UpdateLocationField(dir Direction, i int, key, raw string) Draft {
	seq, errs := d.sequence(dir)
	if i < 0 || i >= len(seq) {
		return d
	}

	loc, errMsg := validate.LocationField(seq[i], key, raw)
	seq = replaceAt(seq, i, loc)

	errs = copyErrorSlice(errs)
	errs[i] = withError(errs[i], key, errMsg)

	return d.withSequence(dir, seq, errs)
}

// ApplyPlace overwrites the five address fields of the stop at index i
// from resolved autocomplete components, leaving every other field as it
// was. Stale address errors for the stop are cleared.
func (d Draft) ApplyPlace(dir Direction, i int, p places.Place) Draft {
	seq, errs := d.sequence(dir)
	if i < 0 || i >= len(seq) {
		return d
	}

	loc := seq[i]
	loc.Address = p.Address
	loc.City = p.City
	loc.State = p.State
	loc.Country = p.Country
	loc.Postal = p.Postal
	seq = replaceAt(seq, i, loc)

	errs = copyErrorSlice(errs)
	cleaned := errs[i]
	for _, key := range []string{"address", "city", "state", "country", "postal"} {
		cleaned = withError(cleaned, key, "")
	}
	errs[i] = cleaned

	return d.withSequence(dir, seq, errs)
}

// LocationError returns the recorded error for one field of one stop.
func (d Draft) LocationError(dir Direction, i int, key string) string {
	_, errs := d.sequence(dir)
	if i < 0 || i >= len(errs) || errs[i] == nil {
		return ""
	}
	return errs[i][key]
}

func (d Draft) sequence(dir Direction) (models.LocationList, []map[string]string) {
	if dir == Pickup {
		return d.Quote.Pickup, d.PickupErrors
	}
	return d.Quote.Delivery, d.DeliveryErrors
}

func (d Draft) withSequence(dir Direction, seq models.LocationList, errs []map[string]string) Draft {
	if dir == Pickup {
		d.Quote.Pickup = seq
		d.PickupErrors = errs
	} else {
		d.Quote.Delivery = seq
		d.DeliveryErrors = errs
	}
	return d
}

func appendLocation(seq models.LocationList) models.LocationList {
	out := make(models.LocationList, len(seq), len(seq)+1)
	copy(out, seq)
	return append(out, models.Location{})
}

func replaceAt(seq models.LocationList, i int, loc models.Location) models.LocationList {
	out := make(models.LocationList, len(seq))
	copy(out, seq)
	out[i] = loc
	return out
}

func removeAt(seq models.LocationList, i int) models.LocationList {
	out := make(models.LocationList, 0, len(seq)-1)
	out = append(out, seq[:i]...)
	return append(out, seq[i+1:]...)
}

func removeErrAt(errs []map[string]string, i int) []map[string]string {
	if i >= len(errs) {
		return copyErrorSlice(errs)
	}
	out := make([]map[string]string, 0, len(errs)-1)
	out = append(out, errs[:i]...)
	return append(out, errs[i+1:]...)
}

func copyErrorSlice(errs []map[string]string) []map[string]string {
	out := make([]map[string]string, len(errs))
	copy(out, errs)
	return out
}

// withError returns a copy of m with key set to msg, or with key removed
// when msg is empty.
func withError(m map[string]string, key, msg string) map[string]string {
	out := make(map[string]string, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	if msg == "" {
		delete(out, key)
	} else {
		out[key] = msg
	}
	return out
}

func contains(opts []string, v string) bool {
	for _, o := range opts {
		if o == v {
			return true
		}
	}
	return false
}
