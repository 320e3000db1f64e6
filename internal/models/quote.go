package models

import (
	"encoding/json"
	"log"
	"strconv"
)

// QuoteType is the load type of a quote
type QuoteType string

const (
	QuoteFTL QuoteType = "FTL"
	QuoteLTL QuoteType = "LTL"
)

// Location represents a single pickup or delivery stop on a quote.
// Position within the parent sequence is its only identity.
type Location struct {
	Address    string  `json:"address"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	Country    string  `json:"country"`
	Postal     string  `json:"postal"`
	Phone      string  `json:"phone"`
	Date       string  `json:"date"`
	Time       string  `json:"time"`
	Currency   string  `json:"currency"`
	Equipment  string  `json:"equipment"`
	PickupPO   string  `json:"pickup_po,omitempty"`
	DeliveryPO string  `json:"delivery_po,omitempty"`
	Packages   int     `json:"packages"`
	Weight     float64 `json:"weight"`
	Dimensions string  `json:"dimensions"`
	Notes      string  `json:"notes"`
}

// LocationList is an ordered sequence of locations. On the wire it may
// arrive either as a JSON array or as a JSON-encoded string containing an
// array; a string that fails to decode yields an empty sequence rather
// than an error.
type LocationList []Location

// UnmarshalJSON accepts both array and string-encoded-array forms.
func (l *LocationList) UnmarshalJSON(data []byte) error {
	*l = LocationList{}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	if data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			log.Printf("location list: unreadable string field: %v", err)
			return nil
		}
		var locs []Location
		if err := json.Unmarshal([]byte(encoded), &locs); err != nil {
			log.Printf("location list: discarding malformed payload: %v", err)
			return nil
		}
		*l = locs
		return nil
	}

	var locs []Location
	if err := json.Unmarshal(data, &locs); err != nil {
		log.Printf("location list: discarding malformed payload: %v", err)
		return nil
	}
	*l = locs
	return nil
}

// Quote is a freight rate request with its pickup and delivery stops.
type Quote struct {
	ID          int          `json:"id,omitempty"`
	Type        string       `json:"quote_type"`
	Customer    string       `json:"quote_customer"`
	CustRefNo   string       `json:"quote_cust_ref_no"`
	BookedBy    string       `json:"quote_booked_by"`
	Temperature string       `json:"quote_temperature"`
	Hot         bool         `json:"quote_hot"`
	Team        bool         `json:"quote_team"`
	AirRide     bool         `json:"quote_air_ride"`
	Tarp        bool         `json:"quote_tarp"`
	Hazmat      bool         `json:"quote_hazmat"`
	Pickup      LocationList `json:"quote_pickup"`
	Delivery    LocationList `json:"quote_delivery"`
	CreatedAt   string       `json:"created_at,omitempty"`
	UpdatedAt   string       `json:"updated_at,omitempty"`
}

// ScalarFields returns the quote's own scalar values stringified, in a
// stable order. The list search matches against these.
func (q Quote) ScalarFields() []string {
	return []string{
		strconv.Itoa(q.ID),
		q.Type,
		q.Customer,
		q.CustRefNo,
		q.BookedBy,
		q.Temperature,
		strconv.FormatBool(q.Hot),
		strconv.FormatBool(q.Team),
		strconv.FormatBool(q.AirRide),
		strconv.FormatBool(q.Tarp),
		strconv.FormatBool(q.Hazmat),
		q.CreatedAt,
		q.UpdatedAt,
	}
}

// SortValue returns the value of the named sortable column. The second
// return reports whether the column compares numerically.
func (q Quote) SortValue(column string) (str string, num float64, numeric bool) {
	switch column {
	case "id":
		return "", float64(q.ID), true
	case "quote_type":
		return q.Type, 0, false
	case "quote_customer":
		return q.Customer, 0, false
	case "quote_cust_ref_no":
		return q.CustRefNo, 0, false
	case "quote_booked_by":
		return q.BookedBy, 0, false
	case "quote_temperature":
		return q.Temperature, 0, false
	case "updated_at":
		return q.UpdatedAt, 0, false
	default:
		return q.CreatedAt, 0, false
	}
}
