package dto

import (
	"time"

	"github.com/SscSPs/currency_swapper/internal/apperrors"
	"github.com/SscSPs/currency_swapper/internal/core/domain"
	"github.com/shopspring/decimal"
)

// UpdateFormRequest is a partial form update. Omitted fields are left as they
// are; an empty currency ID clears the selection.
type UpdateFormRequest struct {
	Amount       *decimal.Decimal `json:"amount,omitempty" swaggertype:"string" example:"10"`
	FromCurrency *string          `json:"fromCurrency,omitempty" example:"ETH"`
	ToCurrency   *string          `json:"toCurrency,omitempty" example:"BTC"`
}

// ToFormPatch converts the request to a domain.FormPatch
func (r UpdateFormRequest) ToFormPatch() domain.FormPatch {
	return domain.FormPatch{
		Amount:       r.Amount,
		FromCurrency: r.FromCurrency,
		ToCurrency:   r.ToCurrency,
	}
}

// SwapFormResponse mirrors the editable form.
type SwapFormResponse struct {
	Amount       *decimal.Decimal `json:"amount" swaggertype:"string"`
	FromCurrency string           `json:"fromCurrency"`
	ToCurrency   string           `json:"toCurrency"`
}

// SwapResultResponse is a settled quote.
type SwapResultResponse struct {
	ConvertedAmount decimal.Decimal `json:"convertedAmount" swaggertype:"string" example:"0.6"`
}

// SessionViewResponse defines the data returned for a swap session.
type SessionViewResponse struct {
	SessionID string                 `json:"sessionID"`
	State     string                 `json:"state" enums:"idle,validating,rejected,processing,settled"`
	Loading   bool                   `json:"loading"`
	Form      SwapFormResponse       `json:"form"`
	Result    *SwapResultResponse    `json:"result,omitempty"`
	Errors    []apperrors.FieldError `json:"errors,omitempty"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

// SubmitSwapResponse is returned when a swap settles.
type SubmitSwapResponse struct {
	Message string              `json:"message" example:"Currency has been processed"`
	Result  SwapResultResponse  `json:"result"`
	Session SessionViewResponse `json:"session"`
}

// ValidationErrorResponse lists the violated form fields.
type ValidationErrorResponse struct {
	Error  string                 `json:"error"`
	Fields []apperrors.FieldError `json:"fields"`
}

// NotificationResponse is the payload of a settlement event.
type NotificationResponse struct {
	SessionID string             `json:"sessionID"`
	Message   string             `json:"message"`
	Result    SwapResultResponse `json:"result"`
	At        time.Time          `json:"at"`
}

// ToSwapResultResponse converts a domain.SwapResult to SwapResultResponse DTO
func ToSwapResultResponse(r domain.SwapResult) SwapResultResponse {
	return SwapResultResponse{ConvertedAmount: r.ConvertedAmount}
}

// ToSessionViewResponse converts a domain.SessionView to SessionViewResponse DTO
func ToSessionViewResponse(v domain.SessionView) SessionViewResponse {
	res := SessionViewResponse{
		SessionID: v.SessionID,
		State:     string(v.State),
		Loading:   v.Loading(),
		Form: SwapFormResponse{
			Amount:       v.Form.Amount,
			FromCurrency: v.Form.FromCurrency,
			ToCurrency:   v.Form.ToCurrency,
		},
		Errors:    v.Errors,
		UpdatedAt: v.UpdatedAt,
	}
	if v.Result != nil {
		r := ToSwapResultResponse(*v.Result)
		res.Result = &r
	}
	return res
}

// ToNotificationResponse converts a domain.Notification to NotificationResponse DTO
func ToNotificationResponse(n domain.Notification) NotificationResponse {
	return NotificationResponse{
		SessionID: n.SessionID,
		Message:   n.Message,
		Result:    ToSwapResultResponse(n.Result),
		At:        n.At,
	}
}
