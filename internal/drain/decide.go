package drain

import (
	"errors"

	"github.com/iudanet/tmasync/internal/models"
)

// ErrPermanent marks a replay error that no retry can fix
// (for example a 4xx response). Wrap it with fmt.Errorf("...: %w", ErrPermanent).
var ErrPermanent = errors.New("permanent replay failure")

// Action что делать с записью после попытки отправки
type Action int

const (
	// ActionRemove запись отправлена, удалить из очереди
	ActionRemove Action = iota
	// ActionRetry оставить в очереди до следующего прохода
	ActionRetry
	// ActionDeadLetter исключить из цикла повторов
	ActionDeadLetter
)

func (a Action) String() string {
	switch a {
	case ActionRemove:
		return "remove"
	case ActionRetry:
		return "retry"
	case ActionDeadLetter:
		return "dead-letter"
	default:
		return "unknown"
	}
}

// Decide returns the store mutation for one replay attempt.
// retryCount is the value after the failed attempt was recorded.
func Decide(retryCount, maxRetries int, sendErr error) Action {
	if sendErr == nil {
		return ActionRemove
	}
	if errors.Is(sendErr, ErrPermanent) || retryCount > maxRetries {
		return ActionDeadLetter
	}
	return ActionRetry
}

// DecideItem is Decide for an item whose failure is already recorded
func DecideItem(item *models.QueueItem, sendErr error) Action {
	return Decide(item.RetryCount, item.MaxRetries, sendErr)
}
