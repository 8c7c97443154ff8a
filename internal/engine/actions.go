package engine

import "fmt"

// Function names accepted by OnFunction.
const (
	FuncSin    = "sin"
	FuncCos    = "cos"
	FuncTan    = "tan"
	FuncLog    = "log"
	FuncLn     = "ln"
	FuncSqrt   = "sqrt"
	FuncSquare = "square"
	FuncPi     = "pi"
	FuncE      = "e"
	FuncAns    = "ans"
)

// Action names accepted by OnAction.
const (
	ActionClear      = "clear"
	ActionDelete     = "delete"
	ActionEquals     = "equals"
	ActionPercent    = "percent"
	ActionDot        = "dot"
	ActionDoubleZero = "double-zero"
)

// OnToken appends a raw key or button token.
func (s *Session) OnToken(raw string) Display {
	s.Append(raw)
	return s.Display()
}

// OnFunction applies a function button.
func (s *Session) OnFunction(name string) (Display, error) {
	switch name {
	case FuncSin, FuncCos, FuncTan, FuncLog, FuncLn, FuncSqrt:
		if err := s.InsertFunctionCall(name); err != nil {
			return s.Display(), err
		}
	case FuncSquare:
		s.Square()
	case FuncPi:
		s.Append("PI")
	case FuncE:
		s.Append("E")
	case FuncAns:
		s.InsertAns()
	default:
		return s.Display(), fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}
	return s.Display(), nil
}

// OnAction applies an action button. A failed or empty equals is absorbed
// here: the failure reaches the UI only through the hook.
func (s *Session) OnAction(name string) (Display, error) {
	switch name {
	case ActionClear:
		s.Clear()
	case ActionDelete:
		s.DeleteLast()
	case ActionEquals:
		_ = s.Commit()
	case ActionPercent:
		s.InsertPercent()
	case ActionDot:
		s.InsertDot()
	case ActionDoubleZero:
		s.InsertDoubleZero()
	default:
		return s.Display(), fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	return s.Display(), nil
}

// OnToggleAngleMode flips the angle mode and returns its label.
func (s *Session) OnToggleAngleMode() string {
	return s.ToggleAngleMode().String()
}

func (s *Session) GetHistory() []Entry { return s.History() }

func (s *Session) OnHistorySelect(i int) (string, error) { return s.SelectHistory(i) }

func (s *Session) OnClearHistory() { s.ClearHistory() }
