// Package api exposes the analysis desk over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/opensource-finance/kestrel/internal/domain"
	"github.com/opensource-finance/kestrel/internal/features"
	"github.com/opensource-finance/kestrel/internal/filter"
	"github.com/opensource-finance/kestrel/internal/form"
	"github.com/opensource-finance/kestrel/internal/present"
	"github.com/opensource-finance/kestrel/internal/report"
	"github.com/opensource-finance/kestrel/internal/scoring"
)

const statsCacheKey = "stats"

// assessmentCacheTTL bounds how long a completed assessment stays hot
// for detail and report reads.
const assessmentCacheTTL = 15 * time.Minute

// StatsFetcher is the outbound surface for the dashboard aggregates.
type StatsFetcher interface {
	Stats(ctx context.Context) (*domain.Stats, error)
}

// Handler holds dependencies for API handlers.
type Handler struct {
	repo     domain.Repository
	cache    domain.Cache
	bus      domain.EventBus
	register *scoring.Register
	stats    StatsFetcher
	sessions domain.SessionStore
	synth    *report.Synthesizer
	metrics  *Metrics
	statsTTL time.Duration
	version  string
	logger   *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(
	repo domain.Repository,
	cache domain.Cache,
	bus domain.EventBus,
	register *scoring.Register,
	stats StatsFetcher,
	sessions domain.SessionStore,
	metrics *Metrics,
	statsTTL time.Duration,
	version string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		repo:     repo,
		cache:    cache,
		bus:      bus,
		register: register,
		stats:    stats,
		sessions: sessions,
		synth:    report.NewSynthesizer(),
		metrics:  metrics,
		statsTTL: statsTTL,
		version:  version,
		logger:   logger.With("component", "api"),
	}
}

// AnalyzeResponse is the response for POST /analyze.
type AnalyzeResponse struct {
	AssessmentID  string            `json:"assessmentId"`
	TransactionID string            `json:"transactionId"`
	Result        present.ViewModel `json:"result"`
}

// Analyze handles POST /analyze: coerce the raw fields, derive
// features, submit to the scoring register, persist and publish the
// completed assessment.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var raw form.RawInput
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	input, err := form.Coerce(raw)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": verr.Error(),
				"field": verr.Field,
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	feats := features.Derive(input)
	req := features.BuildRequest(input, feats)

	resp, err := h.register.Do(ctx, req)
	if err != nil {
		h.writeScoringError(w, err)
		return
	}

	analyst := ""
	if s := h.sessions.Current(); s != nil {
		analyst = s.Email
	}

	assessment := &domain.Assessment{
		ID:        uuid.New().String(),
		Analyst:   analyst,
		Input:     *input,
		Request:   req,
		Response:  *resp,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.repo.SaveAssessment(ctx, assessment); err != nil {
		h.logger.Error("failed to save assessment",
			"transaction_id", resp.TransactionID,
			"error", err,
		)
	}
	if err := h.cache.SetAssessment(ctx, assessment.ID, assessment, assessmentCacheTTL); err != nil {
		h.logger.Warn("failed to cache assessment", "error", err)
	}

	payload, _ := json.Marshal(assessment)
	if err := h.bus.Publish(ctx, domain.TopicAssessmentCompleted, payload); err != nil {
		h.logger.Warn("failed to publish assessment event", "error", err)
	}

	vm := present.Present(resp)
	h.metrics.Assessments.WithLabelValues(vm.Tier).Inc()

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		AssessmentID:  assessment.ID,
		TransactionID: resp.TransactionID,
		Result:        vm,
	})
}

// writeScoringError maps register and client failures onto the wire.
// Network trouble and malformed responses both read as availability to
// the operator; malformed bodies were already logged distinctly.
func (h *Handler) writeScoringError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSuperseded):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": "superseded by a newer submission",
		})

	case domain.IsNetworkError(err):
		reason := "network"
		var ne *domain.NetworkError
		var me *domain.MalformedResponseError
		if errors.As(err, &ne) && ne.Timeout {
			reason = "timeout"
		} else if errors.As(err, &me) {
			reason = "malformed"
		}
		h.metrics.ScoringFailures.WithLabelValues(reason).Inc()
		h.logger.Error("scoring call failed", "reason", reason, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": "scoring service unavailable",
		})

	default:
		h.logger.Error("scoring call failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}
}

// ResultResponse is the response for GET /result.
type ResultResponse struct {
	State  string             `json:"state"`
	Result *present.ViewModel `json:"result,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// Result returns a snapshot of the scoring register: the current
// state, the last verdict if one exists, and the last failure.
func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	snap := h.register.Snapshot()

	out := ResultResponse{State: snap.State.String()}
	if snap.Result != nil {
		vm := present.Present(snap.Result)
		out.Result = &vm
	}
	if snap.Err != nil {
		out.Error = "scoring service unavailable"
	}

	writeJSON(w, http.StatusOK, out)
}

// ListAssessments returns the most recent assessments.
func (h *Handler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	assessments, err := h.repo.ListAssessments(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list assessments", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to list assessments",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"assessments": assessments,
		"count":       len(assessments),
	})
}

// loadAssessment reads through the cache: a cached copy is served
// directly, a repository hit is cached for the next read.
func (h *Handler) loadAssessment(ctx context.Context, id string) (*domain.Assessment, error) {
	if a, err := h.cache.GetAssessment(ctx, id); err == nil && a != nil {
		return a, nil
	}

	a, err := h.repo.GetAssessment(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := h.cache.SetAssessment(ctx, id, a, assessmentCacheTTL); err != nil {
		h.logger.Warn("failed to cache assessment", "error", err)
	}
	return a, nil
}

// GetAssessment retrieves an assessment by ID.
func (h *Handler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	a, err := h.loadAssessment(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "assessment not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, a)
}

// DownloadReport synthesizes the analysis report for an assessment and
// serves it as a file download.
func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	a, err := h.loadAssessment(ctx, id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "assessment not found",
		})
		return
	}

	analyst := a.Analyst
	if s := h.sessions.Current(); s != nil {
		analyst = s.Name
	}

	doc := h.synth.Synthesize(a, analyst)
	h.metrics.Reports.Inc()

	event, _ := json.Marshal(map[string]string{
		"assessmentId":  a.ID,
		"transactionId": a.Response.TransactionID,
		"filename":      doc.Filename,
	})
	if err := h.bus.Publish(ctx, domain.TopicReportGenerated, event); err != nil {
		h.logger.Warn("failed to publish report event", "error", err)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Bytes())
}

// Stats proxies the scoring service's dashboard aggregates, cached for
// the configured TTL.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cached, err := h.cache.Get(ctx, statsCacheKey); err == nil && cached != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(cached)
		return
	}

	stats, err := h.stats.Stats(ctx)
	if err != nil {
		h.logger.Error("failed to fetch stats", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": "scoring service unavailable",
		})
		return
	}

	payload, _ := json.Marshal(stats)
	if err := h.cache.Set(ctx, statsCacheKey, payload, h.statsTTL); err != nil {
		h.logger.Warn("failed to cache stats", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// ListTransactions returns the flagged-transaction review list,
// narrowed by the q, status, and risk query parameters.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	rows, err := h.repo.ListFlaggedTransactions(r.Context())
	if err != nil {
		h.logger.Error("failed to list flagged transactions", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to list transactions",
		})
		return
	}

	q := r.URL.Query()
	filtered := filter.Apply(filter.Spec{
		Query: q.Get("q"),
		Facets: map[string]string{
			"status": q.Get("status"),
			"risk":   q.Get("risk"),
		},
	}, rows)

	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": filtered,
		"count":        len(filtered),
		"total":        len(rows),
	})
}

// ListUsers returns the user review list, narrowed by the q, role, and
// status query parameters.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	rows, err := h.repo.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to list users",
		})
		return
	}

	q := r.URL.Query()
	filtered := filter.Apply(filter.Spec{
		Query: q.Get("q"),
		Facets: map[string]string{
			"role":   q.Get("role"),
			"status": q.Get("status"),
		},
	}, rows)

	writeJSON(w, http.StatusOK, map[string]any{
		"users": filtered,
		"count": len(filtered),
		"total": len(rows),
	})
}

// SignInRequest is the request body for POST /session.
type SignInRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// SignIn handles POST /session.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}
	if req.Name == "" || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "name and email are required",
		})
		return
	}
	if req.Role == "" {
		req.Role = "analyst"
	}

	sess, err := h.sessions.SignIn(r.Context(), req.Name, req.Email, req.Role)
	if err != nil {
		h.logger.Error("sign-in failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to sign in",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"session": sess})
}

// GetSession handles GET /session.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Current()
	if sess == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "no active session",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": sess})
}

// SignOut handles DELETE /session.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SignOut(r.Context()); err != nil {
		h.logger.Error("sign-out failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to sign out",
		})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	if h.repo != nil {
		if err := h.repo.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}
	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}
	if h.bus != nil {
		if err := h.bus.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
