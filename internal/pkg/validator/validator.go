// Package validator wraps go-playground/validator. It registers the tags
// walletsync relies on and reports every failing field in one error that
// wraps ErrValidationFailed.
//
// Extra tags:
//
//	address   chain address: 1 to 128 ASCII letters and digits
//	loglevel  a level accepted by zap ("debug", "info", ...)
package validator

import (
	"errors"
	"fmt"

	gvalidator "github.com/go-playground/validator/v10"
	"go.uber.org/zap/zapcore"
)

// ErrValidationFailed is the first error of every validation failure.
var ErrValidationFailed = errors.New("validation failed")

const maxAddressLength = 128

var validate = newValidate()

func newValidate() *gvalidator.Validate {
	v := gvalidator.New(gvalidator.WithRequiredStructEnabled())

	must(v.RegisterValidation("address", isAddress))
	must(v.RegisterValidation("loglevel", isLogLevel))

	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func isAddress(fl gvalidator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" || len(s) > maxAddressLength {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}

	return true
}

func isLogLevel(fl gvalidator.FieldLevel) bool {
	_, err := zapcore.ParseLevel(fl.Field().String())
	return err == nil
}

// formatError turns validator field errors into one joined error, led by
// ErrValidationFailed. Any other error is returned as is.
func formatError(err error) error {
	var fieldErrs gvalidator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	errs := make([]error, 0, len(fieldErrs)+1)
	errs = append(errs, ErrValidationFailed)
	for _, fe := range fieldErrs {
		rule := fe.Tag()
		if p := fe.Param(); p != "" {
			rule += "=" + p
		}

		name := fe.Namespace()
		if name == "" {
			name = "value"
		}

		errs = append(errs, fmt.Errorf("%s: %v violates %q", name, fe.Value(), rule))
	}

	return errors.Join(errs...)
}

// Validate checks a struct against its `validate` tags.
//
//	if err := validator.Validate(cfg); errors.Is(err, validator.ErrValidationFailed) {
//	    // at least one field is invalid
//	}
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return formatError(err)
	}

	return nil
}

// Var checks a single value against tag, e.g. Var(addr, "address").
func Var(v any, tag string) error {
	if err := validate.Var(v, tag); err != nil {
		return formatError(err)
	}

	return nil
}
