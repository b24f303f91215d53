package coin

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrAccountNotFound = errors.New("account not found")
)

// InsufficientBalanceError reports the exact shortfall so the frontend can
// prompt a top-up with the right number.
type InsufficientBalanceError struct {
	Required  int64
	Available int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient coin balance: required %d, available %d", e.Required, e.Available)
}

func (e *InsufficientBalanceError) Shortage() int64 {
	return e.Required - e.Available
}

// AsInsufficientBalance unwraps err into an InsufficientBalanceError, if it is one.
func AsInsufficientBalance(err error) (*InsufficientBalanceError, bool) {
	var ib *InsufficientBalanceError
	if errors.As(err, &ib) {
		return ib, true
	}
	return nil, false
}
