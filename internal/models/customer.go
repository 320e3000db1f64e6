package models

// Customer is one row from the customer reference endpoint: a customer
// name paired with one of its reference numbers. A customer with several
// reference numbers appears as several rows.
type Customer struct {
	Name  string `json:"cust_name"`
	RefNo string `json:"cust_ref_no"`
}

// CustomerIndex maps a customer name to its reference numbers, preserving
// the order customers first appeared in.
type CustomerIndex struct {
	Names  []string
	RefNos map[string][]string
}

// BuildCustomerIndex groups fetched customer rows by name.
func BuildCustomerIndex(customers []Customer) CustomerIndex {
	idx := CustomerIndex{RefNos: make(map[string][]string)}
	for _, c := range customers {
		if c.Name == "" {
			continue
		}
		if _, seen := idx.RefNos[c.Name]; !seen {
			idx.Names = append(idx.Names, c.Name)
		}
		idx.RefNos[c.Name] = append(idx.RefNos[c.Name], c.RefNo)
	}
	return idx
}

// RefsFor returns the reference numbers associated with a customer name,
// or nil when the customer is unknown or unselected.
func (idx CustomerIndex) RefsFor(name string) []string {
	if name == "" {
		return nil
	}
	return idx.RefNos[name]
}
