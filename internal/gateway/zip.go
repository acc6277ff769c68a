// Package gateway looks up billing ZIP codes for card transactions via the
// payment gateway's REST API.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the gateway sandbox; production overrides it via config.
const DefaultBaseURL = "https://test-api.payrix.com"

// LookupDelay is the pause between sequential lookups so batches do not
// hammer the gateway.
const LookupDelay = 100 * time.Millisecond

// txnPrefix marks transaction ids the gateway knows about. Anything else
// (legacy processors, manual entries) is skipped without a network call.
const txnPrefix = "t1_txn_"

// Lookup outcomes are display strings, not errors: the dashboard renders
// them inline next to each transaction.
const (
	zipNoTransactionID = "No transaction ID"
	zipInvalidFormat   = "Invalid transaction format"
	zipNotConfigured   = "API key not configured"
	zipNotFound        = "ZIP not found"
)

// txnResponse models the slice of the gateway payload we care about.
type txnResponse struct {
	Response struct {
		Data []struct {
			Zip string `json:"zip"`
		} `json:"data"`
	} `json:"response"`
}

// Client fetches ZIP codes from the payment gateway.
type Client struct {
	BaseURL string
	APIKey  string
	HTTPC   *http.Client
}

func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPC:   &http.Client{Timeout: 10 * time.Second},
	}
}

// ZipFor resolves the billing ZIP for one transaction id. It always
// returns a displayable string; lookup problems come back as the sentinel
// values above rather than errors.
func (c *Client) ZipFor(ctx context.Context, transactionID *string) string {
	if transactionID == nil || *transactionID == "" {
		return zipNoTransactionID
	}
	if !strings.HasPrefix(*transactionID, txnPrefix) {
		return zipInvalidFormat
	}
	if c.APIKey == "" {
		return zipNotConfigured
	}

	url := fmt.Sprintf("%s/txns/%s", strings.TrimRight(c.BaseURL, "/"), *transactionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "API error: " + err.Error()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("APIKEY", c.APIKey)

	resp, err := c.HTTPC.Do(req)
	if err != nil {
		return "API error: " + err.Error()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Sprintf("API error: %d", resp.StatusCode)
	}

	var out txnResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "API error: " + err.Error()
	}
	if len(out.Response.Data) == 0 || out.Response.Data[0].Zip == "" {
		return zipNotFound
	}
	return out.Response.Data[0].Zip
}
