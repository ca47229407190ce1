package providers

import (
	"context"
	"fmt"
	"net/url"

	"heli-training/logbook/internal/models"
)

// RemoteSource pulls whole sheets from the remote logbook.
type RemoteSource interface {
	// FetchTable returns every row of the named sheet, keyed by column header.
	FetchTable(ctx context.Context, table string) ([]models.RemoteRow, error)
}

// RemotePusher sends a single mutation to the remote logbook.
type RemotePusher interface {
	Push(ctx context.Context, req PushRequest) error
}

// PushRequest is a form-encoded mutation the remote logbook appends to a sheet.
type PushRequest interface {
	// Action names the mutation kind for logs and metrics.
	Action() string
	// Form is the request body.
	Form() url.Values
	// Subject identifies what the mutation is about in logs.
	Subject() string
}

// ProviderError is a classified failure talking to the remote logbook.
type ProviderError struct {
	Code    string
	Message string
	Details string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
