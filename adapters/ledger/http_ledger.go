package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/compass-app/gatekeeper/core"
	"github.com/compass-app/gatekeeper/ports"
)

// HTTPLedger queries the external transaction ledger over HTTP. One GET per
// poll attempt; the confirmation poller owns retries and pacing.
type HTTPLedger struct {
	baseURL string
	appID   string
	apiKey  string
	client  *http.Client
}

// NewHTTPLedger creates a ledger client for the given portal.
func NewHTTPLedger(baseURL, appID, apiKey string) ports.Ledger {
	return &HTTPLedger{
		baseURL: baseURL,
		appID:   appID,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Transaction fetches the current ledger status of a transaction.
func (l *HTTPLedger) Transaction(ctx context.Context, transactionID string) (*core.LedgerTransaction, error) {
	endpoint := fmt.Sprintf("%s/transaction/%s?app_id=%s",
		l.baseURL, url.PathEscape(transactionID), url.QueryEscape(l.appID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build ledger request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+l.apiKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ledger request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ledger returned status %d", resp.StatusCode)
	}

	var tx core.LedgerTransaction
	if err := json.NewDecoder(resp.Body).Decode(&tx); err != nil {
		return nil, fmt.Errorf("failed to decode ledger response: %w", err)
	}

	return &tx, nil
}
