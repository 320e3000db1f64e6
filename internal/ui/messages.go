package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/freightdesk/freight-terminal/internal/api"
	"github.com/freightdesk/freight-terminal/internal/editor"
	"github.com/freightdesk/freight-terminal/internal/models"
	"github.com/freightdesk/freight-terminal/internal/places"
)

// TokenSource yields the stored bearer token, "" when absent.
type TokenSource interface {
	Token() (string, error)
}

// Message types for async operations

// quotesFetchedMsg is sent when the quote list has been fetched
type quotesFetchedMsg struct {
	quotes []models.Quote
	err    error
}

// customersFetchedMsg is sent when the customer reference rows arrive
type customersFetchedMsg struct {
	customers []models.Customer
	err       error
}

// quoteCreatedMsg is sent when a create submit completes
type quoteCreatedMsg struct {
	quote *models.Quote
	err   error
}

// quoteUpdatedMsg is sent when an edit submit completes
type quoteUpdatedMsg struct {
	quote *models.Quote
	err   error
}

// deleteCompletedMsg aggregates one whole bulk-delete batch: every
// request is issued concurrently and awaited before this is sent.
type deleteCompletedMsg struct {
	deleted []int
	failed  []int
	err     error
}

// emailSentMsg is sent when the bulk email request completes
type emailSentMsg struct {
	err error
}

// placeResolvedMsg is sent when address autocompletion completes
type placeResolvedMsg struct {
	dir   editor.Direction
	index int
	place *places.Place
	err   error
}

func token(creds TokenSource) (string, error) {
	tok, err := creds.Token()
	if err != nil {
		return "", err
	}
	if tok == "" {
		return "", api.ErrUnauthorized
	}
	return tok, nil
}

// fetchQuotes loads the full quote list in the background
func fetchQuotes(client api.Client, creds TokenSource) tea.Cmd {
	return func() tea.Msg {
		tok, err := token(creds)
		if err != nil {
			return quotesFetchedMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		quotes, err := client.ListQuotes(ctx, tok)
		return quotesFetchedMsg{quotes: quotes, err: err}
	}
}

// fetchCustomers loads the customer reference rows for the form
func fetchCustomers(client api.Client, creds TokenSource) tea.Cmd {
	return func() tea.Msg {
		tok, err := token(creds)
		if err != nil {
			return customersFetchedMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		customers, err := client.ListCustomers(ctx, tok)
		return customersFetchedMsg{customers: customers, err: err}
	}
}

// createQuote submits a draft as a new record
func createQuote(client api.Client, creds TokenSource, draft models.Quote) tea.Cmd {
	return func() tea.Msg {
		tok, err := token(creds)
		if err != nil {
			return quoteCreatedMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		created, err := client.CreateQuote(ctx, tok, draft)
		return quoteCreatedMsg{quote: created, err: err}
	}
}

// updateQuote submits an edited record keyed by its id
func updateQuote(client api.Client, creds TokenSource, quote models.Quote) tea.Cmd {
	return func() tea.Msg {
		tok, err := token(creds)
		if err != nil {
			return quoteUpdatedMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		updated, err := client.UpdateQuote(ctx, tok, quote)
		return quoteUpdatedMsg{quote: updated, err: err}
	}
}

// deleteQuotes issues one delete per selected id concurrently and
// reports the aggregate result in a single message.
func deleteQuotes(client api.Client, creds TokenSource, ids []int) tea.Cmd {
	return func() tea.Msg {
		tok, err := token(creds)
		if err != nil {
			return deleteCompletedMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		type result struct {
			id  int
			err error
		}
		results := make(chan result, len(ids))
		for _, id := range ids {
			go func(id int) {
				results <- result{id: id, err: client.DeleteQuote(ctx, tok, id)}
			}(id)
		}

		var msg deleteCompletedMsg
		for range ids {
			res := <-results
			if res.err != nil {
				msg.failed = append(msg.failed, res.id)
				msg.err = res.err
			} else {
				msg.deleted = append(msg.deleted, res.id)
			}
		}
		return msg
	}
}

// sendEmail posts the selected ids with a subject and body
func sendEmail(client api.Client, creds TokenSource, req api.EmailRequest) tea.Cmd {
	return func() tea.Msg {
		tok, err := token(creds)
		if err != nil {
			return emailSentMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return emailSentMsg{err: client.SendEmail(ctx, tok, req)}
	}
}

// resolvePlace runs address autocompletion for one stop
func resolvePlace(resolver places.Resolver, dir editor.Direction, index int, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		place, err := resolver.Resolve(ctx, query)
		return placeResolvedMsg{dir: dir, index: index, place: place, err: err}
	}
}
