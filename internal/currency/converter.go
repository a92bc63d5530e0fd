package currency

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConvertedScale is the number of decimal places kept on converted amounts
const ConvertedScale = 4

// Converter validates requests and applies rates to amounts
type Converter struct {
	validators []Validator
}

// NewConverter creates a converter running validators in the given order.
// With no validators the default set is used.
func NewConverter(validators ...Validator) *Converter {
	if len(validators) == 0 {
		validators = DefaultValidators()
	}
	return &Converter{validators: validators}
}

// Validate runs every validator in order and returns the first failure
func (c *Converter) Validate(req *ConversionRequest) error {
	if req == nil {
		return newKindError(ErrInvalidArgument, "Conversion request must not be null.")
	}
	for _, v := range c.validators {
		if err := v.Validate(req); err != nil {
			return err
		}
	}
	return nil
}

// Convert multiplies amount by rate and rounds half-up to ConvertedScale places
func (c *Converter) Convert(amount *decimal.Decimal, rate *float64) (decimal.Decimal, error) {
	if amount == nil || rate == nil {
		return decimal.Zero, newKindError(ErrInvalidArgument, "Amount and rate must not be null.")
	}
	return amount.Mul(decimal.NewFromFloat(*rate)).Round(ConvertedScale), nil
}

// GenerateTransactionID returns a random UUID string
func (c *Converter) GenerateTransactionID() string {
	return uuid.New().String()
}
