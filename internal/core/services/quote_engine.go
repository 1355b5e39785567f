package services

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/SscSPs/currency_swapper/internal/apperrors"
	"github.com/SscSPs/currency_swapper/internal/core/domain"
	portssvc "github.com/SscSPs/currency_swapper/internal/core/ports/services"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// DefaultQuotePrecision is the number of decimal places a quote is rounded to.
const DefaultQuotePrecision int32 = 5

// Field names reported in validation errors.
const (
	FieldAmount       = "amount"
	FieldFromCurrency = "fromCurrency"
	FieldToCurrency   = "toCurrency"
)

// quoteInput mirrors domain.SwapRequest with the validation rules attached.
// Prices are checked for presence only: zero is the "nothing selected" sentinel.
type quoteInput struct {
	Amount    *decimal.Decimal `json:"amount" validate:"required,dgte=1"`
	FromPrice decimal.Decimal  `json:"fromCurrency" validate:"dnonzero"`
	ToPrice   decimal.Decimal  `json:"toCurrency" validate:"dnonzero"`
}

// QuoteEngine validates swap requests and converts amounts at a direct price ratio.
type QuoteEngine struct {
	validate  *validator.Validate
	precision int32
	logger    *slog.Logger
}

// NewQuoteEngine creates a QuoteEngine rounding results to precision decimal places.
func NewQuoteEngine(precision int32, logger *slog.Logger) *QuoteEngine {
	if logger == nil {
		logger = slog.Default()
	}
	v := validator.New()
	v.RegisterCustomTypeFunc(decimalAsString, decimal.Decimal{})
	_ = v.RegisterValidation("dgte", decimalGTE)
	_ = v.RegisterValidation("dnonzero", decimalNonZero)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &QuoteEngine{
		validate:  v,
		precision: precision,
		logger:    logger,
	}
}

var _ portssvc.QuoteSvc = (*QuoteEngine)(nil)

// decimalAsString hands decimals to the validator in exact form; the d*
// rules parse them back so no comparison goes through float64.
func decimalAsString(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func fieldDecimal(fl validator.FieldLevel) (decimal.Decimal, bool) {
	if fl.Field().Kind() != reflect.String {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(fl.Field().String())
	return d, err == nil
}

// decimalGTE implements dgte=<decimal>.
func decimalGTE(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	if !ok {
		return false
	}
	limit, err := decimal.NewFromString(fl.Param())
	if err != nil {
		return false
	}
	return d.GreaterThanOrEqual(limit)
}

// decimalNonZero implements dnonzero: zero is the "nothing selected" price.
func decimalNonZero(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	return ok && !d.IsZero()
}

// Validate checks every rule and reports one error per violated field.
func (e *QuoteEngine) Validate(req domain.SwapRequest) error {
	in := quoteInput{Amount: req.Amount, FromPrice: req.FromPrice, ToPrice: req.ToPrice}
	err := e.validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate swap request: %w", err)
	}

	verr := &apperrors.ValidationErrors{}
	for _, fe := range fieldErrs {
		if verr.Has(fe.Field()) {
			continue
		}
		verr.Add(fe.Field(), fieldMessage(in, fe))
	}
	return verr.OrNil()
}

func fieldMessage(in quoteInput, fe validator.FieldError) string {
	switch fe.Field() {
	case FieldAmount:
		if in.Amount == nil {
			return "Amount is required"
		}
		return "Amount must be equal or greater than 1"
	case FieldFromCurrency:
		return "Select from currency"
	case FieldToCurrency:
		return "Select to currency"
	default:
		return fe.Error()
	}
}

// ComputeQuote returns round(amount * fromPrice / toPrice). A request that
// would divide by zero is a defect upstream and is reported, never coerced.
func (e *QuoteEngine) ComputeQuote(req domain.SwapRequest) (domain.SwapResult, error) {
	if req.ToPrice.IsZero() {
		e.logger.Error("Quote computation reached with zero destination price",
			slog.String("from_price", req.FromPrice.String()))
		return domain.SwapResult{}, fmt.Errorf("%w: destination price is zero", apperrors.ErrPreconditionViolation)
	}
	if req.Amount == nil {
		e.logger.Error("Quote computation reached without an amount")
		return domain.SwapResult{}, fmt.Errorf("%w: amount is missing", apperrors.ErrPreconditionViolation)
	}

	converted := req.Amount.Mul(req.FromPrice).Div(req.ToPrice).Round(e.precision)
	return domain.SwapResult{ConvertedAmount: converted}, nil
}
