package metered

import (
	"errors"
	"fmt"

	"github.com/Rut304/Matchups-sub003/internal/budget"
)

// Kind classifies one upstream call
type Kind int

const (
	// Success carries a payload
	Success Kind = iota
	// NoData means the upstream has nothing for this unit; a benign skip
	NoData
	// RateLimited means retry the same unit after a pause
	RateLimited
	// QuotaExhausted means purchased credits are gone; fatal to the run
	QuotaExhausted
	// Unauthorized is a generic auth failure; fatal to the run
	Unauthorized
	// TransientError covers network, parse and unexpected status failures; the unit is abandoned
	TransientError
	// BudgetDenied means the run ledger refused the call; nothing was sent
	BudgetDenied
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case NoData:
		return "no_data"
	case RateLimited:
		return "rate_limited"
	case QuotaExhausted:
		return "quota_exhausted"
	case Unauthorized:
		return "unauthorized"
	case TransientError:
		return "transient_error"
	case BudgetDenied:
		return "budget_denied"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Fatal reports whether the outcome aborts the whole run
func (k Kind) Fatal() bool {
	return k == QuotaExhausted || k == Unauthorized
}

var (
	// ErrQuotaExhausted is the run-abort cause for QuotaExhausted
	ErrQuotaExhausted = errors.New("upstream credits exhausted")
	// ErrUnauthorized is the run-abort cause for Unauthorized
	ErrUnauthorized = errors.New("upstream rejected credentials")
)

// Outcome is the classified result of Fetch
type Outcome struct {
	Kind           Kind
	Status         int
	Body           []byte
	UnitsConsumed  int
	UnitsRemaining int // -1 when the upstream did not say
	Attempts       int
	Err            error
}

// AsError returns an error describing a non-success outcome, wrapping the
// sentinel for fatal kinds so callers can use errors.Is
func (o Outcome) AsError() error {
	switch o.Kind {
	case Success, NoData:
		return nil
	case QuotaExhausted:
		return fmt.Errorf("%w (status %d)", ErrQuotaExhausted, o.Status)
	case Unauthorized:
		return fmt.Errorf("%w (status %d)", ErrUnauthorized, o.Status)
	case BudgetDenied:
		return budget.ErrBudgetExhausted
	}
	if o.Err != nil {
		return o.Err
	}
	return fmt.Errorf("%s (status %d)", o.Kind, o.Status)
}
