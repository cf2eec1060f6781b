package freee

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTransactions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/1/deals", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "42", r.URL.Query().Get("company_id"))
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("start_issue_date"))
		assert.Equal(t, "2024-01-31", r.URL.Query().Get("end_issue_date"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"deals": []map[string]any{
				{"id": 101, "issue_date": "2024-01-15", "amount": 1000, "description": "文房具", "status": "settled"},
				{"id": 102, "issue_date": "2024-01-20", "amount": 2500, "description": "会食", "status": "pending"},
			},
		})
	}))
	defer server.Close()

	client := NewClient("test-token", 42).WithBaseURL(server.URL)

	transactions, err := client.ListTransactions(context.Background(), "2024-01-01", "2024-01-31")

	require.NoError(t, err)
	require.Len(t, transactions, 2)
	assert.Equal(t, int64(101), transactions[0].ID)
	assert.Equal(t, 1000.0, transactions[0].Amount)
	assert.Equal(t, StatusSettled, transactions[0].Status)

	date, err := transactions[0].DateTime()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", date.Format("2006-01-02"))
}

func TestCreateReceipt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/1/receipts", r.URL.Path)

		var req CreateReceiptRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(42), req.CompanyID) // filled in from the client
		assert.Equal(t, "2024-01-15", req.IssueDate)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"receipt": map[string]any{
				"id": 7, "company_id": 42, "issue_date": "2024-01-15", "status": "unconfirmed",
			},
		})
	}))
	defer server.Close()

	client := NewClient("test-token", 42).WithBaseURL(server.URL)

	receipt, err := client.CreateReceipt(context.Background(), CreateReceiptRequest{
		IssueDate:   "2024-01-15",
		Description: "文房具",
		FileName:    "receipt.pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), receipt.ID)
	assert.Equal(t, "unconfirmed", receipt.Status)
}

func TestAttachReceipt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/1/deals/101", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(42), body["company_id"])

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient("test-token", 42).WithBaseURL(server.URL)

	err := client.AttachReceipt(context.Background(), 101, 7)

	require.NoError(t, err)
}

func TestClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"messages":["invalid token"]}]}`))
	}))
	defer server.Close()

	client := NewClient("bad-token", 42).WithBaseURL(server.URL)

	_, err := client.ListTransactions(context.Background(), "", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
