// Package validate implements field-level validation for quote records.
// Every check is pure: a field key, a raw input value, and the record so
// far map to a normalized value plus an optional human-readable message.
// Validation never blocks a mutation; invalid drafts stay editable.
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/freightdesk/freight-terminal/internal/models"
)

// Load type options for the quote_type field.
var LoadTypes = []string{"FTL", "LTL"}

const (
	MaxPackages = 99999
	MaxWeight   = 1000000.0
)

var (
	tagPattern     = regexp.MustCompile(`<[^>]*>`)
	controlPattern = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)

	addressPattern     = regexp.MustCompile(`^[a-zA-Z0-9\s,.'-]*$`)
	placeNamePattern   = regexp.MustCompile(`^[a-zA-Z\s.'-]*$`)
	postalPattern      = regexp.MustCompile(`^[a-zA-Z0-9\s-]*$`)
	phonePattern       = regexp.MustCompile(`^[0-9+\-()\s]*$`)
	datePattern        = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern        = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
	currencyPattern    = regexp.MustCompile(`^[A-Z]{3}$`)
	equipmentPattern   = regexp.MustCompile(`^[a-zA-Z0-9\s.,'-]*$`)
	poPattern          = regexp.MustCompile(`^[a-zA-Z0-9\s.-]*$`)
	dimensionsPattern  = regexp.MustCompile(`^\d+x\d+x\d*$`)
	notesPattern       = regexp.MustCompile(`^[a-zA-Z0-9\s,.'-]*$`)
	generalTextPattern = regexp.MustCompile(`^[a-zA-Z0-9\s.,'"-]*$`)
	temperaturePattern = regexp.MustCompile(`^-?\d+(\.\d+)?\s?[°CFK]?$`)
)

// stringRule is one max-length + whitelist check. Rules are evaluated in
// order; the first failure's message wins. Patterns without a `*`
// quantifier (date, time, currency, dimensions) reject empty values,
// matching the source schemas.
type stringRule struct {
	maxLen  int
	lenMsg  string
	pattern *regexp.Regexp
	fmtMsg  string
}

func (r stringRule) check(v string) string {
	if r.maxLen > 0 && utf8.RuneCountInString(v) > r.maxLen {
		return r.lenMsg
	}
	if r.pattern != nil && !r.pattern.MatchString(v) {
		return r.fmtMsg
	}
	return ""
}

var locationRules = map[string]stringRule{
	"address":     {255, "Address is too long", addressPattern, "Invalid address format"},
	"city":        {100, "City name is too long", placeNamePattern, "Invalid city format"},
	"state":       {100, "State name is too long", placeNamePattern, "Invalid state format"},
	"country":     {100, "Country name is too long", placeNamePattern, "Invalid country format"},
	"postal":      {20, "Postal code cannot exceed 20 characters", postalPattern, "Invalid postal code format"},
	"phone":       {30, "Phone number cannot exceed 30 characters", phonePattern, "Invalid phone number format"},
	"date":        {0, "", datePattern, "Date must be in YYYY-MM-DD format"},
	"time":        {0, "", timePattern, "Time must be in HH:MM format (24-hour)"},
	"currency":    {50, "Currency code cannot exceed 50 characters", currencyPattern, "Invalid currency format (e.g., USD, EUR)"},
	"equipment":   {100, "Equipment description cannot exceed 100 characters", equipmentPattern, "Invalid equipment format"},
	"pickup_po":   {100, "Pickup PO cannot exceed 100 characters", poPattern, "Invalid pickup PO format"},
	"delivery_po": {100, "Delivery PO cannot exceed 100 characters", poPattern, "Invalid delivery PO format"},
	"dimensions":  {100, "Dimensions cannot exceed 100 characters", dimensionsPattern, "Invalid dimensions format (e.g., 10x20x30)"},
	"notes":       {500, "Notes cannot exceed 500 characters", notesPattern, "Invalid notes format"},
}

// Sanitize strips markup and control content from raw input, keeping the
// surrounding text. This runs before any whitelist check.
func Sanitize(raw string) string {
	s := tagPattern.ReplaceAllString(raw, "")
	s = controlPattern.ReplaceAllString(s, "")
	return s
}

// CheckLocation validates every field of a location against the schema
// and returns the full error map. Fields that pass are absent.
func CheckLocation(loc models.Location) map[string]string {
	errs := make(map[string]string)

	set := func(key, val string) {
		if msg := locationRules[key].check(val); msg != "" {
			errs[key] = msg
		}
	}

	set("address", loc.Address)
	set("city", loc.City)
	set("state", loc.State)
	set("country", loc.Country)
	set("postal", loc.Postal)
	set("phone", loc.Phone)
	set("date", loc.Date)
	set("time", loc.Time)
	set("currency", loc.Currency)
	set("equipment", loc.Equipment)
	set("pickup_po", loc.PickupPO)
	set("delivery_po", loc.DeliveryPO)
	set("dimensions", loc.Dimensions)
	set("notes", loc.Notes)

	if loc.Packages < 1 {
		errs["packages"] = "Packages must be at least 1"
	} else if loc.Packages > MaxPackages {
		errs["packages"] = "Packages cannot exceed 99,999"
	}

	if loc.Weight < 0 {
		errs["weight"] = "Weight cannot be negative"
	} else if loc.Weight > MaxWeight {
		errs["weight"] = "Weight cannot exceed 1,000,000 kg"
	}

	return errs
}

// LocationField sanitizes and stores one raw field value into a copy of
// the location, then reports that field's error (if any) from a
// whole-record check. Other fields' stale errors are not reported here.
func LocationField(loc models.Location, key, raw string) (models.Location, string) {
	v := Sanitize(raw)

	switch key {
	case "address":
		loc.Address = v
	case "city":
		loc.City = v
	case "state":
		loc.State = v
	case "country":
		loc.Country = v
	case "postal":
		loc.Postal = v
	case "phone":
		loc.Phone = v
	case "date":
		loc.Date = v
	case "time":
		loc.Time = v
	case "currency":
		loc.Currency = v
	case "equipment":
		loc.Equipment = v
	case "pickup_po":
		loc.PickupPO = v
	case "delivery_po":
		loc.DeliveryPO = v
	case "dimensions":
		loc.Dimensions = v
	case "notes":
		loc.Notes = v
	case "packages":
		n, err := parseIntField(v)
		loc.Packages = n
		if err != "" {
			return loc, err
		}
	case "weight":
		w, err := parseFloatField(v)
		loc.Weight = w
		if err != "" {
			return loc, err
		}
	default:
		return loc, ""
	}

	return loc, CheckLocation(loc)[key]
}

func parseIntField(v string) (int, string) {
	if v == "" {
		return 0, ""
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, "Packages must be a whole number"
	}
	return n, ""
}

func parseFloatField(v string) (float64, string) {
	if v == "" {
		return 0, ""
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, "Weight must be a number"
	}
	return f, ""
}

// CheckQuote validates the scalar quote fields and returns the full error
// map. Nested locations are validated separately, per sequence element.
func CheckQuote(q models.Quote) map[string]string {
	errs := make(map[string]string)

	if !isLoadType(q.Type) {
		errs["quote_type"] = "Please select a valid load type"
	}

	if q.Customer == "" {
		errs["quote_customer"] = "Customer is required"
	} else if utf8.RuneCountInString(q.Customer) > 200 {
		errs["quote_customer"] = "Customer name cannot exceed 200 characters"
	} else if !generalTextPattern.MatchString(q.Customer) {
		errs["quote_customer"] = "Only letters, numbers, spaces, apostrophes, periods, commas, and hyphens allowed"
	}

	if q.CustRefNo == "" {
		errs["quote_cust_ref_no"] = "Customer Ref. No is required"
	} else if utf8.RuneCountInString(q.CustRefNo) > 100 {
		errs["quote_cust_ref_no"] = "Customer Ref. No cannot exceed 100 characters"
	} else if !generalTextPattern.MatchString(q.CustRefNo) {
		errs["quote_cust_ref_no"] = "Only letters, numbers, spaces, apostrophes, periods, commas, and hyphens allowed"
	}

	if utf8.RuneCountInString(q.BookedBy) > 100 {
		errs["quote_booked_by"] = "Booked By cannot exceed 100 characters"
	} else if !generalTextPattern.MatchString(q.BookedBy) {
		errs["quote_booked_by"] = "Only letters, numbers, spaces, apostrophes, periods, commas, and hyphens allowed"
	}

	if q.Temperature != "" {
		if utf8.RuneCountInString(q.Temperature) > 10 {
			errs["quote_temperature"] = "Temperature cannot exceed 10 characters"
		} else if !temperaturePattern.MatchString(q.Temperature) {
			errs["quote_temperature"] = "Enter a valid temperature (e.g., 5°C, -10F, 273K)"
		}
	}

	return errs
}

// QuoteField sanitizes and stores one raw scalar value into a copy of the
// quote, then reports that field's error from a whole-record check.
func QuoteField(q models.Quote, key, raw string) (models.Quote, string) {
	v := Sanitize(raw)

	switch key {
	case "quote_type":
		q.Type = v
	case "quote_customer":
		q.Customer = v
	case "quote_cust_ref_no":
		q.CustRefNo = v
	case "quote_booked_by":
		q.BookedBy = v
	case "quote_temperature":
		q.Temperature = v
	default:
		return q, ""
	}

	return q, CheckQuote(q)[key]
}

func isLoadType(v string) bool {
	for _, opt := range LoadTypes {
		if v == opt {
			return true
		}
	}
	return false
}
