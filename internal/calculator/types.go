package calculator

import "calc-engine/internal/engine"

// EvaluateRequest is the JSON body for POST /calculator/evaluate.
type EvaluateRequest struct {
	Expression string  `json:"expression"`
	AngleMode  string  `json:"angle_mode"` // "DEG" (default) or "RAD"
	Ans        float64 `json:"ans"`
}

// EvaluateResponse is the JSON response for a successful stateless evaluation.
type EvaluateResponse struct {
	Expression string  `json:"expression"`
	Sanitized  string  `json:"sanitized"`
	Result     float64 `json:"result"`
	AngleMode  string  `json:"angle_mode"`
}

// CreateSessionRequest is the optional JSON body for POST /calculator/sessions.
type CreateSessionRequest struct {
	AngleMode string `json:"angle_mode"`
}

// TokenRequest is the JSON body for POST /calculator/sessions/{id}/token.
type TokenRequest struct {
	Token string `json:"token"`
}

// DisplayRequest is the JSON body for PUT /calculator/sessions/{id}/display.
type DisplayRequest struct {
	Text string `json:"text"`
}

// SessionResponse is returned by every session action. Feedback is "error"
// when the action produced an evaluation failure the UI should flash.
type SessionResponse struct {
	SessionID string `json:"session_id"`
	engine.Display
	AngleMode string   `json:"angle_mode"`
	Ans       *float64 `json:"ans,omitempty"`
	Feedback  string   `json:"feedback,omitempty"`
}

// AngleModeResponse is the JSON response for POST /calculator/sessions/{id}/angle-mode.
type AngleModeResponse struct {
	SessionID string `json:"session_id"`
	AngleMode string `json:"angle_mode"`
}

// HistoryResponse is the JSON response for GET /calculator/sessions/{id}/history.
type HistoryResponse struct {
	SessionID string         `json:"session_id"`
	Entries   []engine.Entry `json:"entries"`
}

// FeedbackError is the Feedback value for a failed evaluation.
const FeedbackError = "error"
