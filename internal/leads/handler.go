package leads

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nirvista/leadcapture/internal/observability/metrics"
	"github.com/nirvista/leadcapture/pkg/logging"
)

// maxBodyBytes matches the 100kb default body limit of common JSON parsers.
const maxBodyBytes = 100 << 10

// Response messages are part of the public contract; the form shows them verbatim.
const (
	MessageMissingFields = "Please provide all fields"
	MessageInvalidField  = "Name, email and phone must be text"
	MessageInvalidBody   = "Invalid request body"
	MessageBodyTooLarge  = "Request body too large"
	MessageNotConnected  = "Database not connected. Please check server logs."
	MessageServerError   = "Server Error"
)

var tracer = otel.Tracer("leadcapture.internal.leads")

// ReadinessChecker reports whether the datastore connection can take writes.
type ReadinessChecker interface {
	Ready() bool
}

// Handler handles HTTP requests for leads
type Handler struct {
	repo      Repository
	readiness ReadinessChecker
	metrics   *metrics.LeadMetrics
	logger    *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(repo Repository, readiness ReadinessChecker, m *metrics.LeadMetrics, logger *logging.Logger) *Handler {
	if repo == nil {
		panic("leads: repository required")
	}
	if readiness == nil {
		panic("leads: readiness checker required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:      repo,
		readiness: readiness,
		metrics:   m,
		logger:    logger,
	}
}

// CreateLeadResponse is the 201 body of POST /api/leads.
type CreateLeadResponse struct {
	Success bool  `json:"success"`
	Data    *Lead `json:"data"`
}

// ErrorResponse is returned for every non-2xx outcome. Success and Error are
// only populated for persistence failures.
type ErrorResponse struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// CreateLead handles POST /api/leads requests.
// Sequence: decode, validate, check the datastore connection, persist, respond.
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "leads.create", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	start := time.Now()
	outcome := metrics.OutcomeFailed
	defer func() {
		span.SetAttributes(attribute.String("lead.outcome", outcome))
		h.metrics.ObserveSubmission(outcome, time.Since(start))
	}()

	var payload createLeadPayload
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(&payload)
	if err == nil {
		err = expectEnd(dec)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			outcome = metrics.OutcomeTooLarge
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Message: MessageBodyTooLarge})
		case errors.Is(err, ErrInvalidField):
			outcome = metrics.OutcomeInvalid
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: MessageInvalidField})
		default:
			outcome = metrics.OutcomeInvalid
			h.logger.Warn("failed to decode lead request", "error", err)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: MessageInvalidBody})
		}
		return
	}

	req := payload.request()
	if err := req.Validate(); err != nil {
		outcome = metrics.OutcomeInvalid
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: MessageMissingFields})
		return
	}

	// The connection can drop between this check and the write below; a
	// failed write then takes the 500 path.
	if !h.readiness.Ready() {
		outcome = metrics.OutcomeUnavailable
		h.logger.Warn("rejecting lead, datastore not connected")
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Message: MessageNotConnected})
		return
	}

	lead, err := h.repo.Create(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lead persistence failed")
		switch {
		case errors.Is(err, ErrMissingFields):
			outcome = metrics.OutcomeInvalid
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: MessageMissingFields})
		default:
			h.logger.Error("failed to create lead", "error", err)
			failed := false
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{
				Success: &failed,
				Message: MessageServerError,
				Error:   err.Error(),
			})
		}
		return
	}

	outcome = metrics.OutcomeCreated
	span.SetAttributes(attribute.String("lead.id", lead.ID))
	h.logger.Info("lead created", "id", lead.ID)

	writeJSON(w, http.StatusCreated, CreateLeadResponse{Success: true, Data: lead})
}

var errTrailingData = errors.New("unexpected data after JSON body")

// expectEnd fails unless only whitespace follows the decoded value.
func expectEnd(dec *json.Decoder) error {
	_, err := dec.Token()
	switch {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return err
	default:
		return errTrailingData
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
