package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	nominatimURL = "https://nominatim.openstreetmap.org/search"
	userAgent    = "FreightTerminal/1.0" // Required by Nominatim ToS
)

// NominatimResolver resolves addresses using the OpenStreetMap Nominatim
// API.
type NominatimResolver struct {
	baseURL    string
	httpClient *http.Client
	lastCall   time.Time
	mu         sync.Mutex
}

// NewNominatimResolver creates a new resolver.
func NewNominatimResolver() *NominatimResolver {
	return &NominatimResolver{
		baseURL: nominatimURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// nominatimResponse is the subset of the Nominatim search response we
// consume, with addressdetails enabled.
type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		HouseNumber string `json:"house_number"`
		Road        string `json:"road"`
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
		State       string `json:"state"`
		Country     string `json:"country"`
		Postcode    string `json:"postcode"`
	} `json:"address"`
}

// Resolve converts an address query into structured place components.
func (r *NominatimResolver) Resolve(ctx context.Context, query string) (*Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	params := url.Values{}
	params.Add("format", "json")
	params.Add("limit", "1")
	params.Add("addressdetails", "1")
	params.Add("q", query)

	reqURL := fmt.Sprintf("%s?%s", r.baseURL, params.Encode())

	// Rate limiting: Nominatim requires 1 req/sec max
	r.mu.Lock()
	if !r.lastCall.IsZero() {
		elapsed := time.Since(r.lastCall)
		if elapsed < time.Second {
			time.Sleep(time.Second - elapsed)
		}
	}
	r.lastCall = time.Now()
	r.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	// Set required User-Agent header (Nominatim ToS requirement)
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim API returned status %d", resp.StatusCode)
	}

	var results []nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("no results found for '%s'", query)
	}

	return placeFromResponse(results[0]), nil
}

func placeFromResponse(res nominatimResponse) *Place {
	addr := strings.TrimSpace(res.Address.HouseNumber + " " + res.Address.Road)

	// Nominatim reports the locality under different keys by place size.
	city := res.Address.City
	if city == "" {
		city = res.Address.Town
	}
	if city == "" {
		city = res.Address.Village
	}

	return &Place{
		Address: addr,
		City:    city,
		State:   res.Address.State,
		Country: res.Address.Country,
		Postal:  res.Address.Postcode,
	}
}
