// Package freee is a minimal client for the freee accounting API:
// listing deals (transactions) and registering receipts against them.
package freee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hashicorp/go-retryablehttp"
)

const defaultBaseURL = "https://api.freee.co.jp"

// Client talks to the freee accounting API for one company.
type Client struct {
	baseURL     string
	accessToken string
	companyID   int64
	httpClient  *http.Client
}

// NewClient creates a client for the given company. The access token
// comes from the OAuth flow handled outside this backend.
func NewClient(accessToken string, companyID int64) *Client {
	retry := retryablehttp.NewClient()
	retry.RetryMax = 3
	retry.Logger = nil

	return &Client{
		baseURL:     defaultBaseURL,
		accessToken: accessToken,
		companyID:   companyID,
		httpClient:  retry.StandardClient(),
	}
}

// WithBaseURL overrides the API endpoint. Used in tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// ListTransactions fetches deals whose issue date falls in the given
// range (YYYY-MM-DD, either side may be empty).
func (c *Client) ListTransactions(ctx context.Context, startDate, endDate string) ([]*Transaction, error) {
	query := url.Values{}
	query.Set("company_id", strconv.FormatInt(c.companyID, 10))
	if startDate != "" {
		query.Set("start_issue_date", startDate)
	}
	if endDate != "" {
		query.Set("end_issue_date", endDate)
	}

	var out struct {
		Deals []*Transaction `json:"deals"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/1/deals", query, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return out.Deals, nil
}

// CreateReceipt registers a receipt record in freee.
func (c *Client) CreateReceipt(ctx context.Context, req CreateReceiptRequest) (*Receipt, error) {
	if req.CompanyID == 0 {
		req.CompanyID = c.companyID
	}

	var out struct {
		Receipt *Receipt `json:"receipt"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/1/receipts", nil, req, &out); err != nil {
		return nil, fmt.Errorf("failed to create receipt: %w", err)
	}
	return out.Receipt, nil
}

// AttachReceipt links a registered receipt to a deal.
func (c *Client) AttachReceipt(ctx context.Context, transactionID, receiptID int64) error {
	body := map[string]any{
		"company_id":  c.companyID,
		"receipt_ids": []int64{receiptID},
	}

	path := fmt.Sprintf("/api/1/deals/%d", transactionID)
	if err := c.do(ctx, http.MethodPut, path, nil, body, nil); err != nil {
		return fmt.Errorf("failed to attach receipt %d to transaction %d: %w", receiptID, transactionID, err)
	}
	return nil
}

// do performs one authenticated API call and decodes the JSON response
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("freee API returned %d: %s", resp.StatusCode, string(data))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
