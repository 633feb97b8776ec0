// Package scoring talks to the remote fraud-scoring service and
// serializes submissions through a single-slot register so the desk
// only ever tracks its latest request.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/opensource-finance/kestrel/internal/domain"
)

var tracer = otel.Tracer("kestrel-scoring")

// Scorer is the outbound scoring surface. The register depends on this
// rather than the HTTP client so tests can substitute a stub.
type Scorer interface {
	Score(ctx context.Context, req domain.ScoringRequest) (*domain.ScoringResponse, error)
}

// Client is the HTTP client for the scoring service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a scoring client from config.
func NewClient(cfg domain.ScoringConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.With("component", "scoring_client"),
	}
}

// Score submits one request to POST /api/predict and returns the
// service's verdict. Transport failures, timeouts, and non-2xx
// statuses come back as *domain.NetworkError; a decodable body missing
// required fields comes back as *domain.MalformedResponseError.
func (c *Client) Score(ctx context.Context, req domain.ScoringRequest) (*domain.ScoringResponse, error) {
	ctx, span := tracer.Start(ctx, "scoring.predict")
	defer span.End()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding scoring request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building scoring request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.transportError("predict", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("scoring service returned error status", "status", resp.StatusCode)
		return nil, &domain.NetworkError{Op: "predict", Status: resp.StatusCode}
	}

	var out domain.ScoringResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &domain.NetworkError{Op: "predict", Err: fmt.Errorf("decoding response: %w", err)}
	}

	if missing := missingFields(&out); len(missing) != 0 {
		c.logger.Warn("scoring response missing required fields", "missing", missing)
		return nil, &domain.MalformedResponseError{Missing: missing}
	}

	span.SetAttributes(
		attribute.String("scoring.transaction_id", out.TransactionID),
		attribute.String("scoring.risk_level", out.RiskLevel),
		attribute.Bool("scoring.is_fraud", out.IsFraud),
	)
	c.logger.Debug("scoring call completed",
		"transaction_id", out.TransactionID,
		"risk_level", out.RiskLevel,
		"is_fraud", out.IsFraud)

	return &out, nil
}

// Stats fetches the aggregate dashboard payload from GET /api/stats.
func (c *Client) Stats(ctx context.Context) (*domain.Stats, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/stats", nil)
	if err != nil {
		return nil, fmt.Errorf("building stats request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.transportError("stats", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.NetworkError{Op: "stats", Status: resp.StatusCode}
	}

	var out domain.Stats
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &domain.NetworkError{Op: "stats", Err: fmt.Errorf("decoding response: %w", err)}
	}

	return &out, nil
}

func (c *Client) transportError(op string, err error) error {
	ne := &domain.NetworkError{Op: op, Err: err}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		ne.Timeout = true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		ne.Timeout = true
	}

	return ne
}

// missingFields returns the names of required response fields that
// decoded empty. The probabilities may legitimately be zero, so only
// the identity fields are checked.
func missingFields(r *domain.ScoringResponse) []string {
	var missing []string
	if r.TransactionID == "" {
		missing = append(missing, "transaction_id")
	}
	if r.RiskLevel == "" {
		missing = append(missing, "risk_level")
	}
	if r.Timestamp == "" {
		missing = append(missing, "timestamp")
	}
	return missing
}
