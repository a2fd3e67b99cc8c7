package vm

import (
	"errors"
	"fmt"
)

// PendingAction classifies an abrupt completion: the reason control is
// leaving the normal path.
type PendingAction int

const (
	ActionNone PendingAction = iota
	ActionThrow
	ActionReturn
	ActionBreak
	ActionContinue
)

func (a PendingAction) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionThrow:
		return "throw"
	case ActionReturn:
		return "return"
	case ActionBreak:
		return "break"
	case ActionContinue:
		return "continue"
	default:
		return "unknown"
	}
}

// AbruptCompletion threads a non-local control transfer through Go error
// returns so that cleanup such as IteratorClose still runs on the way out.
// Throw-kind exceptions from builtins normally travel as ExceptionError
// instead; an ActionThrow AbruptCompletion is also recognized.
type AbruptCompletion struct {
	Action PendingAction
	Value  Value
	Target string // break/continue label, empty when unlabeled
}

func (c *AbruptCompletion) Error() string {
	if c.Target != "" {
		return fmt.Sprintf("abrupt %s completion (label %s)", c.Action, c.Target)
	}
	return fmt.Sprintf("abrupt %s completion", c.Action)
}

// GetExceptionValue returns the carried value so that throw-kind completions
// satisfy ExceptionError.
func (c *AbruptCompletion) GetExceptionValue() Value {
	return c.Value
}

func NewReturnCompletion(value Value) error {
	return &AbruptCompletion{Action: ActionReturn, Value: value}
}

func NewBreakCompletion(target string) error {
	return &AbruptCompletion{Action: ActionBreak, Target: target}
}

func NewContinueCompletion(target string) error {
	return &AbruptCompletion{Action: ActionContinue, Target: target}
}

// IsThrowCompletion reports whether err represents a thrown exception rather
// than a break/continue/return transfer. Guest exceptions and plain engine
// errors both count as throws; only non-throw AbruptCompletions do not.
func IsThrowCompletion(err error) bool {
	if err == nil {
		return false
	}
	var abrupt *AbruptCompletion
	if errors.As(err, &abrupt) {
		return abrupt.Action == ActionThrow
	}
	return true
}
