package currency

// Validator checks one aspect of a conversion request
type Validator interface {
	Validate(req *ConversionRequest) error
}

// ValidatorFunc adapts a function to Validator
type ValidatorFunc func(req *ConversionRequest) error

// Validate implements Validator
func (f ValidatorFunc) Validate(req *ConversionRequest) error {
	return f(req)
}

// AmountValidator rejects zero and negative amounts
type AmountValidator struct{}

// Validate implements Validator
func (AmountValidator) Validate(req *ConversionRequest) error {
	if !req.Amount.IsPositive() {
		return newKindError(ErrInvalidAmount, "Amount must be greater than zero.")
	}
	return nil
}

// SameCurrencyValidator rejects conversions where source equals target
type SameCurrencyValidator struct{}

// Validate implements Validator
func (SameCurrencyValidator) Validate(req *ConversionRequest) error {
	if req.SourceCurrency == req.TargetCurrency {
		return newKindError(ErrSameCurrency, "Source and target currency must differ.")
	}
	return nil
}

// CurrencyCodeValidator rejects codes outside the supported set
type CurrencyCodeValidator struct{}

// Validate implements Validator
func (CurrencyCodeValidator) Validate(req *ConversionRequest) error {
	if !req.SourceCurrency.IsValid() {
		return invalidCurrencyError("sourceCurrency", string(req.SourceCurrency))
	}
	if !req.TargetCurrency.IsValid() {
		return invalidCurrencyError("targetCurrency", string(req.TargetCurrency))
	}
	return nil
}

// DefaultValidators returns the standard validation order
func DefaultValidators() []Validator {
	return []Validator{
		AmountValidator{},
		SameCurrencyValidator{},
		CurrencyCodeValidator{},
	}
}
