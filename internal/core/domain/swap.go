package domain

import (
	"time"

	"github.com/SscSPs/currency_swapper/internal/apperrors"
	"github.com/shopspring/decimal"
)

// SwapState is the per-submission state of a swap form.
type SwapState string

const (
	SwapIdle       SwapState = "idle"
	SwapValidating SwapState = "validating"
	SwapRejected   SwapState = "rejected"
	SwapProcessing SwapState = "processing"
	SwapSettled    SwapState = "settled"
)

// SwapRequest is the input of a single quote computation. A nil Amount means
// the amount was never entered; a zero price means nothing is selected.
type SwapRequest struct {
	Amount    *decimal.Decimal
	FromPrice decimal.Decimal
	ToPrice   decimal.Decimal
}

// SwapResult is a settled quote.
type SwapResult struct {
	ConvertedAmount decimal.Decimal `json:"convertedAmount"`
}

// SwapForm is the editable form state. Empty currency IDs mean nothing selected.
type SwapForm struct {
	Amount       *decimal.Decimal `json:"amount"`
	FromCurrency string           `json:"fromCurrency"`
	ToCurrency   string           `json:"toCurrency"`
}

// FormPatch is a partial form update; nil fields are left untouched.
type FormPatch struct {
	Amount       *decimal.Decimal
	FromCurrency *string
	ToCurrency   *string
}

// SessionView is a read-only copy of a swap session.
type SessionView struct {
	SessionID string                 `json:"sessionID"`
	State     SwapState              `json:"state"`
	Form      SwapForm               `json:"form"`
	Result    *SwapResult            `json:"result,omitempty"`
	Errors    []apperrors.FieldError `json:"errors,omitempty"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

// Loading reports whether inputs and actions are disabled.
func (v SessionView) Loading() bool {
	return v.State == SwapProcessing
}
