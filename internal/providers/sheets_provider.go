package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"heli-training/logbook/internal/constants"
	"heli-training/logbook/internal/models"
)

// maxPayloadBytes caps how much of a sheet response is read.
const maxPayloadBytes = 32 << 20

// SheetsProvider talks to the spreadsheet web app that fronts the remote logbook.
type SheetsProvider struct {
	endpoint string
	client   *http.Client
}

var (
	_ RemoteSource = (*SheetsProvider)(nil)
	_ RemotePusher = (*SheetsProvider)(nil)
)

// NewSheetsProvider creates a provider for endpoint
func NewSheetsProvider(endpoint string, timeout time.Duration) *SheetsProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SheetsProvider{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchTable fetches all rows of a sheet with GET ?table=<name>
func (p *SheetsProvider) FetchTable(ctx context.Context, table string) ([]models.RemoteRow, error) {
	target, err := p.tableURL(table)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if err := p.handleHTTPError(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}

	return decodeRows(table, body)
}

// decodeRows accepts only a top-level JSON array. The web app answers errors
// with a JSON object and a 200, so anything else is a failed pull.
func decodeRows(table string, body []byte) ([]models.RemoteRow, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidPayload,
			Message: constants.GetErrorMessage(constants.ErrCodeInvalidPayload),
			Details: fmt.Sprintf("table %s: %s", table, truncate(string(trimmed), 200)),
		}
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var rows []models.RemoteRow
	if err := dec.Decode(&rows); err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidPayload,
			Message: constants.GetErrorMessage(constants.ErrCodeInvalidPayload),
			Details: fmt.Sprintf("table %s", table),
			Err:     err,
		}
	}
	if rows == nil {
		rows = []models.RemoteRow{}
	}
	return rows, nil
}

// Push posts a form-encoded mutation. The response body is not interpreted.
func (p *SheetsProvider) Push(ctx context.Context, push PushRequest) error {
	if p.endpoint == "" {
		return p.missingEndpoint()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(push.Form().Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if err := p.handleHTTPError(resp); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (p *SheetsProvider) tableURL(table string) (string, error) {
	if p.endpoint == "" {
		return "", p.missingEndpoint()
	}
	u, err := url.Parse(p.endpoint)
	if err != nil {
		return "", &ProviderError{
			Code:    constants.ErrCodeEndpointNotFound,
			Message: constants.GetErrorMessage(constants.ErrCodeEndpointNotFound),
			Err:     err,
		}
	}
	q := u.Query()
	q.Set("table", table)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (p *SheetsProvider) missingEndpoint() error {
	return &ProviderError{
		Code:    constants.ErrCodeEndpointNotFound,
		Message: constants.GetErrorMessage(constants.ErrCodeEndpointNotFound),
		Details: "REMOTE_ENDPOINT is not configured",
	}
}

// handleHTTPError converts HTTP error responses to ProviderError
func (p *SheetsProvider) handleHTTPError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &ProviderError{
			Code:    constants.ErrCodeAuthenticationFailed,
			Message: constants.GetErrorMessage(constants.ErrCodeAuthenticationFailed),
			Details: string(body),
		}
	case resp.StatusCode == http.StatusNotFound:
		return &ProviderError{
			Code:    constants.ErrCodeEndpointNotFound,
			Message: constants.GetErrorMessage(constants.ErrCodeEndpointNotFound),
			Details: string(body),
		}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &ProviderError{
			Code:    constants.ErrCodeRateLimited,
			Message: constants.GetErrorMessage(constants.ErrCodeRateLimited),
			Details: string(body),
		}
	case resp.StatusCode >= 500:
		return &ProviderError{
			Code:    constants.ErrCodeRemoteUnavailable,
			Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, constants.GetErrorMessage(constants.ErrCodeRemoteUnavailable)),
			Details: string(body),
		}
	default:
		return &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)),
			Details: string(body),
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
