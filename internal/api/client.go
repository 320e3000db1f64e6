// Package api implements the client for the remote quote collection
// endpoints. The bearer token is an explicit parameter on every call;
// nothing in this package reads ambient credential state.
package api

import (
	"context"
	"errors"

	"github.com/freightdesk/freight-terminal/internal/models"
)

// ErrUnauthorized is returned when no token is supplied or the server
// rejects the token with a 401.
var ErrUnauthorized = errors.New("unauthorized: log in to access this resource")

// EmailRequest is the payload for the bulk email endpoint.
type EmailRequest struct {
	IDs     []int  `json:"ids"`
	Subject string `json:"subject"`
	Content string `json:"content"`
	Module  string `json:"module"`
}

// Client defines the remote quote collection interface.
type Client interface {
	// ListQuotes retrieves every quote in the collection.
	ListQuotes(ctx context.Context, token string) ([]models.Quote, error)

	// CreateQuote persists a draft and returns the created record with
	// its server-assigned id.
	CreateQuote(ctx context.Context, token string, draft models.Quote) (*models.Quote, error)

	// UpdateQuote replaces the record with the draft's id.
	UpdateQuote(ctx context.Context, token string, quote models.Quote) (*models.Quote, error)

	// DeleteQuote removes one record by id.
	DeleteQuote(ctx context.Context, token string, id int) error

	// ListCustomers retrieves the customer reference rows.
	ListCustomers(ctx context.Context, token string) ([]models.Customer, error)

	// SendEmail posts the selected quote ids with a subject and body to
	// the email endpoint in one request.
	SendEmail(ctx context.Context, token string, req EmailRequest) error
}
