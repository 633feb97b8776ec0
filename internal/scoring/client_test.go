package scoring

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opensource-finance/kestrel/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(url string) *Client {
	return NewClient(domain.ScoringConfig{
		BaseURL: url,
		Timeout: 2 * time.Second,
	}, testLogger())
}

func sampleRequest() domain.ScoringRequest {
	return domain.ScoringRequest{
		Amount:        2499.99,
		PaymentMethod: "upi",
		Category:      "electronics",
		Gender:        "M",
		City:          "Mumbai",
		Device:        "mobile",
	}
}

func TestClientScore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/predict", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"is_fraud": true,
			"fraud_probability": 87.23,
			"xgb_probability": 91.02,
			"risk_level": "High",
			"risk_factors": ["High transaction amount", "New device"],
			"transaction_id": "TXN-1001",
			"timestamp": "2026-08-31T10:00:00Z"
		}`))
	}))
	defer srv.Close()

	resp, err := testClient(srv.URL).Score(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.True(t, resp.IsFraud)
	assert.Equal(t, "High", resp.RiskLevel)
	assert.Equal(t, "TXN-1001", resp.TransactionID)
	assert.Len(t, resp.RiskFactors, 2)
}

func TestClientScoreServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Score(context.Background(), sampleRequest())

	var ne *domain.NetworkError
	require.True(t, errors.As(err, &ne))
	assert.Equal(t, http.StatusInternalServerError, ne.Status)
	assert.False(t, ne.Timeout)
	assert.True(t, domain.IsNetworkError(err))
}

func TestClientScoreTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(domain.ScoringConfig{
		BaseURL: srv.URL,
		Timeout: 20 * time.Millisecond,
	}, testLogger())

	_, err := client.Score(context.Background(), sampleRequest())

	var ne *domain.NetworkError
	require.True(t, errors.As(err, &ne))
	assert.True(t, ne.Timeout)
}

func TestClientScoreMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Decodes fine but the identity fields are absent.
		w.Write([]byte(`{"is_fraud": false, "fraud_probability": 10.4}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Score(context.Background(), sampleRequest())

	var me *domain.MalformedResponseError
	require.True(t, errors.As(err, &me))
	assert.ElementsMatch(t, []string{"transaction_id", "risk_level", "timestamp"}, me.Missing)
	assert.True(t, domain.IsNetworkError(err))
}

func TestClientStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/stats", r.URL.Path)
		w.Write([]byte(`{
			"totalTransactions": 120,
			"fraudDetected": 7,
			"legitimateTransactions": 113,
			"totalSaved": "₹1,84,000",
			"fraudRate": 5.8,
			"avgTransactionAmount": "₹2,340",
			"recentTransactions": [],
			"paymentMethodStats": [{"method": "upi", "total": 60, "fraud": 3, "fraud_rate": 5.0}],
			"lastUpdated": "2026-08-31T10:00:00Z"
		}`))
	}))
	defer srv.Close()

	stats, err := testClient(srv.URL).Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 120, stats.TotalTransactions)
	assert.Equal(t, 7, stats.FraudDetected)
	require.Len(t, stats.PaymentMethodStats, 1)
	assert.Equal(t, "upi", stats.PaymentMethodStats[0].Method)
}
