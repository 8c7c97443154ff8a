package engine

import (
	"errors"
	"math"
	"strings"
)

// binaryOperators are the characters the append guard refuses to stack.
const binaryOperators = "+-*/^"

// segmentBreaks end the numeric segment InsertDot inspects.
const segmentBreaks = binaryOperators + "()%"

// EventKind classifies what a commit reports to the session hook.
type EventKind int

const (
	EventCommitted EventKind = iota + 1
	EventEvalError
)

func (k EventKind) String() string {
	switch k {
	case EventCommitted:
		return "committed"
	case EventEvalError:
		return "eval_error"
	}
	return "unknown"
}

// Event is emitted once per non-empty commit. Err is set for EventEvalError,
// Entry for EventCommitted.
type Event struct {
	Kind  EventKind
	Expr  string
	Entry Entry
	Err   error
}

// Hook consumes session events. It runs synchronously inside the action and
// must not block.
type Hook func(Event)

// Display is what the UI collaborator renders after every action.
type Display struct {
	ExpressionLine string `json:"expression_line"`
	MainLine       string `json:"main_line"`
}

// Option configures a Session.
type Option func(*Session)

// WithAngleMode sets the initial angle mode.
func WithAngleMode(m AngleMode) Option {
	return func(s *Session) { s.mode = m }
}

// WithHook installs the event consumer.
func WithHook(h Hook) Option {
	return func(s *Session) { s.hook = h }
}

// Session is one calculator: the expression buffer, the last answer, the
// angle mode and the history ledger. It is not safe for concurrent use.
type Session struct {
	buffer   string
	overlay  string // text written straight to the display, used when buffer is empty
	lastExpr string
	ans      float64
	hasAns   bool
	mode     AngleMode
	history  History
	hook     Hook
}

// NewSession returns an empty session in Degrees mode.
func NewSession(opts ...Option) *Session {
	s := &Session{mode: Degrees}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Buffer() string { return s.buffer }

func (s *Session) AngleMode() AngleMode { return s.mode }

// Ans returns the last committed result and whether one exists.
func (s *Session) Ans() (float64, bool) { return s.ans, s.hasAns }

// History returns a snapshot of the ledger, newest first.
func (s *Session) History() []Entry { return s.history.Entries() }

func (s *Session) Display() Display {
	d := Display{MainLine: s.buffer}
	if d.MainLine == "" {
		d.MainLine = s.overlay
	}
	if d.MainLine == "" {
		d.MainLine = "0"
	}
	if s.lastExpr != "" {
		d.ExpressionLine = s.lastExpr + " ="
	}
	return d
}

// Append adds token to the buffer one character at a time. A binary operator
// arriving on an empty buffer or after another binary operator replaces the
// trailing operator instead of stacking.
func (s *Session) Append(token string) {
	if token == "" {
		return
	}
	s.overlay = ""
	var b strings.Builder
	b.WriteString(s.buffer)
	for _, r := range token {
		if isBinaryOperator(r) {
			cur := b.String()
			if n := len(cur); n > 0 && isBinaryOperator(rune(cur[n-1])) {
				b.Reset()
				b.WriteString(cur[:n-1])
			}
		}
		b.WriteRune(r)
	}
	s.buffer = b.String()
}

// DeleteLast removes the final character of the buffer.
func (s *Session) DeleteLast() {
	s.overlay = ""
	if s.buffer == "" {
		return
	}
	r := []rune(s.buffer)
	s.buffer = string(r[:len(r)-1])
}

// Clear empties the buffer and the expression line. Ans, the angle mode and
// the history survive.
func (s *Session) Clear() {
	s.buffer = ""
	s.overlay = ""
	s.lastExpr = ""
}

// InsertFunctionCall opens a call to one of the unary functions; the closing
// parenthesis is left to the user.
func (s *Session) InsertFunctionCall(name string) error {
	switch name {
	case "sin", "cos", "tan", "log", "ln", "sqrt":
		s.Append(name + "(")
		return nil
	}
	return ErrUnknownFunction
}

// Square rewrites the buffer X as (X)^2.
func (s *Session) Square() {
	if s.buffer == "" {
		return
	}
	s.overlay = ""
	s.buffer = "(" + s.buffer + ")^2"
}

// InsertDot appends a decimal point unless the current numeric segment
// already has one.
func (s *Session) InsertDot() {
	segment := s.buffer
	if i := strings.LastIndexAny(segment, segmentBreaks); i >= 0 {
		segment = segment[i+1:]
	}
	if strings.Contains(segment, ".") {
		return
	}
	s.Append(".")
}

// InsertDoubleZero appends "00", or a single "0" on an empty buffer.
func (s *Session) InsertDoubleZero() {
	if s.buffer == "" {
		s.Append("0")
		return
	}
	s.Append("00")
}

// InsertAns appends the Ans identifier once a result exists.
func (s *Session) InsertAns() {
	if !s.hasAns {
		return
	}
	s.Append("Ans")
}

func (s *Session) InsertPercent() { s.Append("%") }

// Overwrite puts text straight on the display and empties the buffer, so the
// next Commit evaluates text.
func (s *Session) Overwrite(text string) {
	s.buffer = ""
	s.overlay = text
}

func (s *Session) SetAngleMode(m AngleMode) { s.mode = m }

// ToggleAngleMode flips between Degrees and Radians and returns the new mode.
func (s *Session) ToggleAngleMode() AngleMode {
	s.mode = s.mode.Toggle()
	return s.mode
}

// Commit evaluates the buffer, or the overwritten display text when the
// buffer is empty. ErrEmpty leaves everything untouched and emits nothing.
// A failure emits EventEvalError and also leaves the session untouched. On
// success the history, Ans, the buffer and the expression line are updated
// together and EventCommitted is emitted.
func (s *Session) Commit() error {
	expr := s.buffer
	if expr == "" {
		expr = s.overlay
	}

	v, err := Evaluate(Sanitize(expr), s.mode, s.ans)
	if errors.Is(err, ErrEmpty) {
		return err
	}
	trimmed := strings.TrimSpace(expr)
	if err == nil && (trimmed == "" || math.IsNaN(v) || math.IsInf(v, 0)) {
		err = ErrEval
	}
	if err != nil {
		s.emit(Event{Kind: EventEvalError, Expr: expr, Err: err})
		return err
	}

	entry := Entry{Expr: trimmed, Res: v}
	s.history.Push(entry)
	s.ans, s.hasAns = v, true
	s.buffer = FormatResult(v)
	s.overlay = ""
	s.lastExpr = trimmed
	s.emit(Event{Kind: EventCommitted, Expr: expr, Entry: entry})
	return nil
}

// SelectHistory replays the result at index i into the buffer without
// evaluating it, returning the new buffer.
func (s *Session) SelectHistory(i int) (string, error) {
	e, err := s.history.Select(i)
	if err != nil {
		return "", err
	}
	s.buffer = FormatResult(e.Res)
	s.overlay = ""
	return s.buffer, nil
}

func (s *Session) ClearHistory() { s.history.Clear() }

// Snapshot captures the editable display state. Ans, the angle mode and
// the history are not part of it.
type Snapshot struct {
	buffer   string
	overlay  string
	lastExpr string
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{buffer: s.buffer, overlay: s.overlay, lastExpr: s.lastExpr}
}

// Restore rolls the display state back to sn.
func (s *Session) Restore(sn Snapshot) {
	s.buffer, s.overlay, s.lastExpr = sn.buffer, sn.overlay, sn.lastExpr
}

func (s *Session) emit(e Event) {
	if s.hook != nil {
		s.hook(e)
	}
}

func isBinaryOperator(r rune) bool {
	return strings.ContainsRune(binaryOperators, r)
}
