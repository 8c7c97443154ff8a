package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"calc-engine/internal/engine"
	"calc-engine/internal/handlers"
	"calc-engine/internal/observability"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

const (
	// DefaultMaxInput is the longest expression, token or display text
	// accepted when NewHandler is given zero.
	DefaultMaxInput = 256

	maxBodyBytes = 1 << 16
)

// requestError is a client mistake in the request itself.
type requestError struct {
	msg string
	err error
}

func (e *requestError) Error() string { return e.msg + ": " + e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

// Handler serves the calculator over HTTP. It is the UI collaborator for the
// engine: it forwards tokens and actions to a session and renders the
// resulting display as JSON.
type Handler struct {
	store    *Store
	maxInput int
}

func NewHandler(store *Store, maxInput int) *Handler {
	if maxInput <= 0 {
		maxInput = DefaultMaxInput
	}
	return &Handler{store: store, maxInput: maxInput}
}

// ---------------------------------------------------------------------------
// Stateless evaluation
// ---------------------------------------------------------------------------

// Evaluate handles POST /calculator/evaluate
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	const opName = "evaluate"

	ctx, span := tracer.Start(ctx, "calculator.evaluate",
		trace.WithAttributes(
			attribute.String("calculator.operation", opName),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req EvaluateRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid request body", err, http.StatusBadRequest, w)
		return
	}
	if len(req.Expression) > h.maxInput {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "expression too long",
			fmt.Errorf("%d bytes, limit %d", len(req.Expression), h.maxInput), http.StatusBadRequest, w)
		return
	}
	mode, err := engine.ParseAngleMode(req.AngleMode)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid angle mode", err, http.StatusBadRequest, w)
		return
	}

	sanitized := engine.Sanitize(req.Expression)
	span.SetAttributes(
		attribute.String("calculator.expression", sanitized),
		attribute.String("calculator.angle_mode", mode.String()),
	)

	start := time.Now()
	result, err := engine.Evaluate(sanitized, mode, req.Ans)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	attrs := metric.WithAttributes(attribute.String("operation", opName))
	actionsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsed, attrs)

	switch {
	case errors.Is(err, engine.ErrEmpty):
		span.AddEvent("evaluation.empty")
		span.SetStatus(codes.Ok, "")
		w.WriteHeader(http.StatusNoContent)
		return
	case err != nil:
		observability.RecordError(ctx, span, logger, errorCounter, opName, "Error", err, http.StatusUnprocessableEntity, w)
		return
	}

	resultGauge.Record(ctx, result, attrs)
	span.AddEvent("computation.complete", trace.WithAttributes(
		attribute.Float64("result", result),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetAttributes(attribute.Float64("calculator.result", result))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator expression evaluated",
		zap.String("expression", sanitized),
		zap.String("angle_mode", mode.String()),
		zap.Float64("result", result),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, EvaluateResponse{
		Expression: req.Expression,
		Sanitized:  sanitized,
		Result:     result,
		AngleMode:  mode.String(),
	})
}

// ---------------------------------------------------------------------------
// Session lifecycle
// ---------------------------------------------------------------------------

// CreateSession handles POST /calculator/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	const opName = "create"

	ctx, span := tracer.Start(ctx, "calculator.session.create",
		trace.WithAttributes(
			attribute.String("calculator.operation", opName),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req CreateSessionRequest
	if err := decodeBody(w, r, &req, true); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid request body", err, http.StatusBadRequest, w)
		return
	}
	mode, err := engine.ParseAngleMode(req.AngleMode)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid angle mode", err, http.StatusBadRequest, w)
		return
	}

	sess, evicted := h.store.Create(mode)
	span.SetAttributes(attribute.String("session.id", sess.id))
	if evicted != "" {
		span.AddEvent("session.evicted", trace.WithAttributes(attribute.String("session.id", evicted)))
		logger.Info("calculator session evicted",
			zap.String("session_id", evicted),
			zap.String("request_id", requestID),
		)
	}

	var resp *SessionResponse
	sess.do(func(s *engine.Session) error {
		resp = newSessionResponse(sess.id, s)
		return nil
	})

	actionsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", opName)))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator session created",
		zap.String("session_id", sess.id),
		zap.String("angle_mode", mode.String()),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusCreated, resp)
}

// DeleteSession handles DELETE /calculator/sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	id := chi.URLParam(r, "id")
	const opName = "delete"

	ctx, span := tracer.Start(ctx, "calculator.session.delete",
		trace.WithAttributes(
			attribute.String("calculator.operation", opName),
			attribute.String("session.id", id),
		),
	)
	defer span.End()

	if !h.store.Delete(id) {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "session not found",
			fmt.Errorf("session %q", id), http.StatusNotFound, w)
		return
	}

	actionsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", opName)))
	span.SetStatus(codes.Ok, "")
	w.WriteHeader(http.StatusNoContent)
}

// GetSession handles GET /calculator/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.handleSessionOp(w, r, "get", nil, func(*engine.Session) (any, error) {
		return nil, nil
	})
}

// ---------------------------------------------------------------------------
// Session input
// ---------------------------------------------------------------------------

// Token handles POST /calculator/sessions/{id}/token
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	h.handleSessionOp(w, r, "token", &req, func(s *engine.Session) (any, error) {
		if n := len(s.Buffer()) + len(req.Token); n > h.maxInput {
			return nil, h.tooLong(n)
		}
		s.OnToken(req.Token)
		return nil, nil
	})
}

// Function handles POST /calculator/sessions/{id}/function/{name}
func (h *Handler) Function(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	h.handleSessionOp(w, r, "function", nil, func(s *engine.Session) (any, error) {
		return nil, h.bounded(s, func() error {
			_, err := s.OnFunction(name)
			return err
		})
	})
}

// Action handles POST /calculator/sessions/{id}/action/{name}. A failed
// equals still answers 200; the failure is reported as feedback.
func (h *Handler) Action(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	h.handleSessionOp(w, r, "action", nil, func(s *engine.Session) (any, error) {
		if name == engine.ActionEquals {
			_, err := s.OnAction(name)
			return nil, err
		}
		return nil, h.bounded(s, func() error {
			_, err := s.OnAction(name)
			return err
		})
	})
}

// Display handles PUT /calculator/sessions/{id}/display
func (h *Handler) Display(w http.ResponseWriter, r *http.Request) {
	var req DisplayRequest
	h.handleSessionOp(w, r, "display", &req, func(s *engine.Session) (any, error) {
		if len(req.Text) > h.maxInput {
			return nil, h.tooLong(len(req.Text))
		}
		s.Overwrite(req.Text)
		return nil, nil
	})
}

// ToggleAngleMode handles POST /calculator/sessions/{id}/angle-mode
func (h *Handler) ToggleAngleMode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.handleSessionOp(w, r, "angle_mode", nil, func(s *engine.Session) (any, error) {
		return &AngleModeResponse{SessionID: id, AngleMode: s.OnToggleAngleMode()}, nil
	})
}

// ---------------------------------------------------------------------------
// History
// ---------------------------------------------------------------------------

// History handles GET /calculator/sessions/{id}/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.handleSessionOp(w, r, "history", nil, func(s *engine.Session) (any, error) {
		entries := s.GetHistory()
		if entries == nil {
			entries = []engine.Entry{}
		}
		return &HistoryResponse{SessionID: id, Entries: entries}, nil
	})
}

// SelectHistory handles POST /calculator/sessions/{id}/history/{index}/select
func (h *Handler) SelectHistory(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "index")
	h.handleSessionOp(w, r, "history_select", nil, func(s *engine.Session) (any, error) {
		i, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &requestError{msg: "invalid history index", err: err}
		}
		_, err = s.OnHistorySelect(i)
		return nil, err
	})
}

// ClearHistory handles DELETE /calculator/sessions/{id}/history
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.handleSessionOp(w, r, "history_clear", nil, func(s *engine.Session) (any, error) {
		s.OnClearHistory()
		return &HistoryResponse{SessionID: id, Entries: []engine.Entry{}}, nil
	})
}

// ---------------------------------------------------------------------------
// Shared implementation
// ---------------------------------------------------------------------------

// handleSessionOp is the shared implementation for every action on an
// existing session. A non-nil body is decoded from the request before the
// session is locked. apply runs with exclusive access to the session; a nil
// payload renders the session's display. Events the engine emitted during
// apply are turned into metrics, span events, logs and response feedback.
func (h *Handler) handleSessionOp(w http.ResponseWriter, r *http.Request, opName string, body any, apply func(*engine.Session) (any, error)) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "calculator.session."+opName,
		trace.WithAttributes(
			attribute.String("calculator.operation", opName),
			attribute.String("session.id", id),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	sess, ok := h.store.Get(id)
	if !ok {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "session not found",
			fmt.Errorf("session %q", id), http.StatusNotFound, w)
		return
	}

	if body != nil {
		if err := decodeBody(w, r, body, false); err != nil {
			observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid request body", err, http.StatusBadRequest, w,
				attribute.String("session.id", id))
			return
		}
	}

	var payload any
	start := time.Now()
	events, err := sess.do(func(s *engine.Session) error {
		p, err := apply(s)
		if err != nil {
			return err
		}
		if p == nil {
			p = newSessionResponse(id, s)
		}
		payload = p
		return nil
	})
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	if err != nil {
		status, msg := classifyError(err)
		observability.RecordError(ctx, span, logger, errorCounter, opName, msg, err, status, w,
			attribute.String("session.id", id))
		return
	}

	attrs := metric.WithAttributes(attribute.String("operation", opName))
	actionsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsed, attrs)

	feedback := recordEvents(ctx, span, logger, id, events)
	if resp, ok := payload.(*SessionResponse); ok {
		resp.Feedback = feedback
	}
	span.SetStatus(codes.Ok, "")

	logger.Debug("calculator session action",
		zap.String("operation", opName),
		zap.String("session_id", id),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, payload)
}

// recordEvents consumes the engine's events for one action and returns the
// feedback to send to the UI.
func recordEvents(ctx context.Context, span trace.Span, logger *zap.Logger, id string, events []engine.Event) string {
	var feedback string
	for _, e := range events {
		switch e.Kind {
		case engine.EventCommitted:
			attrs := metric.WithAttributes(attribute.String("operation", "commit"))
			commitCounter.Add(ctx, 1, attrs)
			resultGauge.Record(ctx, e.Entry.Res, attrs)
			span.AddEvent("evaluation.committed", trace.WithAttributes(
				attribute.String("expression", e.Entry.Expr),
				attribute.Float64("result", e.Entry.Res),
			))
			logger.Info("calculator evaluation committed",
				zap.String("session_id", id),
				zap.String("expression", e.Entry.Expr),
				zap.Float64("result", e.Entry.Res),
				zap.String("request_id", observability.RequestIDFromContext(ctx)),
			)
		case engine.EventEvalError:
			errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "commit")))
			span.AddEvent("evaluation.failed", trace.WithAttributes(
				attribute.String("expression", e.Expr),
			))
			logger.Warn("calculator evaluation failed",
				zap.String("session_id", id),
				zap.String("expression", e.Expr),
				zap.Error(e.Err),
				zap.String("request_id", observability.RequestIDFromContext(ctx)),
			)
			feedback = FeedbackError
		}
	}
	return feedback
}

// bounded runs edit and rolls the session back if it grew the buffer past
// the input limit. Edits that shrink an oversized buffer are allowed.
func (h *Handler) bounded(s *engine.Session, edit func() error) error {
	snap := s.Snapshot()
	before := len(s.Buffer())
	if err := edit(); err != nil {
		return err
	}
	if n := len(s.Buffer()); n > h.maxInput && n > before {
		s.Restore(snap)
		return h.tooLong(n)
	}
	return nil
}

func (h *Handler) tooLong(n int) error {
	return &requestError{msg: "expression too long", err: fmt.Errorf("%d bytes, limit %d", n, h.maxInput)}
}

func newSessionResponse(id string, s *engine.Session) *SessionResponse {
	resp := &SessionResponse{
		SessionID: id,
		Display:   s.Display(),
		AngleMode: s.AngleMode().String(),
	}
	if ans, ok := s.Ans(); ok {
		resp.Ans = &ans
	}
	return resp
}

func classifyError(err error) (int, string) {
	var re *requestError
	switch {
	case errors.As(err, &re):
		return http.StatusBadRequest, re.msg
	case errors.Is(err, engine.ErrUnknownFunction):
		return http.StatusBadRequest, "unknown function"
	case errors.Is(err, engine.ErrUnknownAction):
		return http.StatusBadRequest, "unknown action"
	case errors.Is(err, engine.ErrHistoryIndex):
		return http.StatusBadRequest, "history index out of range"
	}
	return http.StatusInternalServerError, "internal error"
}

// decodeBody reads a size-limited JSON body into dst. With optional set an
// empty body leaves dst untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, optional bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if optional && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
