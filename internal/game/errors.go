package game

import (
	"errors"
)

// ErrorKind classifies why an action was rejected.
type ErrorKind string

const (
	ErrKindNotYourTurn       ErrorKind = "NotYourTurn"
	ErrKindWrongPhase        ErrorKind = "WrongPhase"
	ErrKindCardNotFound      ErrorKind = "CardNotFound"
	ErrKindWrongCardType     ErrorKind = "WrongCardType"
	ErrKindInsufficientMana  ErrorKind = "InsufficientMana"
	ErrKindInvalidIndex      ErrorKind = "InvalidIndex"
	ErrKindAlreadyRevealed   ErrorKind = "AlreadyRevealed"
	ErrKindNoActiveGame      ErrorKind = "NoActiveGame"
	ErrKindCreatureTapped    ErrorKind = "CreatureTapped"
	ErrKindGameOver          ErrorKind = "GameOver"
	ErrKindInvalidPlayer     ErrorKind = "InvalidPlayer"
	ErrKindUnsupportedAction ErrorKind = "UnsupportedAction"
)

// ActionError is a rejected action. Errors compare equal under errors.Is
// when their kinds match, so callers can test against the sentinels below
// regardless of the message.
type ActionError struct {
	Kind    ErrorKind
	Message string
}

func (e *ActionError) Error() string {
	return e.Message
}

// Is matches any ActionError with the same kind.
func (e *ActionError) Is(target error) bool {
	var other *ActionError
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

func newActionError(kind ErrorKind, message string) *ActionError {
	return &ActionError{Kind: kind, Message: message}
}

var (
	ErrNotYourTurn       = newActionError(ErrKindNotYourTurn, "It's not your turn!")
	ErrWrongPhase        = newActionError(ErrKindWrongPhase, "Action not allowed in this phase")
	ErrCardNotFound      = newActionError(ErrKindCardNotFound, "Card not found in hand")
	ErrWrongCardType     = newActionError(ErrKindWrongCardType, "Card has the wrong type")
	ErrInsufficientMana  = newActionError(ErrKindInsufficientMana, "Not enough mana")
	ErrInvalidIndex      = newActionError(ErrKindInvalidIndex, "Invalid index")
	ErrAlreadyRevealed   = newActionError(ErrKindAlreadyRevealed, "Feign already revealed")
	ErrNoActiveGame      = newActionError(ErrKindNoActiveGame, "No active game")
	ErrCreatureTapped    = newActionError(ErrKindCreatureTapped, "Creature is tapped")
	ErrGameOver          = newActionError(ErrKindGameOver, "The game is over")
	ErrInvalidPlayer     = newActionError(ErrKindInvalidPlayer, "Unknown player")
	ErrUnsupportedAction = newActionError(ErrKindUnsupportedAction, "Unsupported action")
)

// KindOf returns the ErrorKind carried by err, or "" when err is not an ActionError.
func KindOf(err error) ErrorKind {
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}
