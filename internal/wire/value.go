package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrUnexpectedType is returned when a scalar cannot be converted to the
// requested Go type.
var ErrUnexpectedType = errors.New("unexpected value type")

// Value is a JSON scalar as produced by the tokenizer: a string, a
// json.Number, a bool or nil.
type Value struct {
	tok json.Token
}

// IsNull reports whether the value is JSON null.
func (v Value) IsNull() bool {
	return v.tok == nil
}

// String returns the textual form of the value. Null is the empty string.
func (v Value) String() string {
	switch t := v.tok.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// Uint64 accepts JSON numbers, decimal strings and 0x prefixed hex strings.
func (v Value) Uint64() (uint64, error) {
	s := v.String()
	if s == "" {
		return 0, fmt.Errorf("%w: %v is not an integer", ErrUnexpectedType, v.tok)
	}

	if isHex(s) {
		return hexutil.DecodeUint64(s)
	}

	return strconv.ParseUint(s, 10, 64)
}

// Int64 accepts JSON numbers and decimal strings.
func (v Value) Int64() (int64, error) {
	s := v.String()
	if s == "" {
		return 0, fmt.Errorf("%w: %v is not an integer", ErrUnexpectedType, v.tok)
	}

	return strconv.ParseInt(s, 10, 64)
}

// BigInt accepts arbitrarily large decimal numbers or strings and 0x
// prefixed hex strings.
func (v Value) BigInt() (*big.Int, error) {
	s := v.String()
	if isHex(s) {
		return hexutil.DecodeBig(s)
	}

	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an integer", ErrUnexpectedType, s)
	}

	return n, nil
}

// Decimal parses a fixed point decimal such as "12.5000000" into its integer
// representation in units of 10^-scale. Extra fractional digits are rejected
// rather than rounded.
func (v Value) Decimal(scale int) (*big.Int, error) {
	s := v.String()
	if s == "" {
		return nil, fmt.Errorf("%w: empty decimal", ErrUnexpectedType)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > scale {
		return nil, fmt.Errorf("%w: %q has more than %d decimals", ErrUnexpectedType, s, scale)
	}

	digits := whole + frac + strings.Repeat("0", scale-len(frac))
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a decimal", ErrUnexpectedType, s)
	}

	return n, nil
}

// Bool accepts JSON booleans and the strings "true" and "false".
func (v Value) Bool() (bool, error) {
	switch t := v.tok.(type) {
	case bool:
		return t, nil
	case string:
		return strconv.ParseBool(t)
	default:
		return false, fmt.Errorf("%w: %v is not a boolean", ErrUnexpectedType, v.tok)
	}
}

// Time accepts RFC 3339 strings and unix timestamps in seconds.
func (v Value) Time() (time.Time, error) {
	switch t := v.tok.(type) {
	case json.Number:
		secs, err := t.Int64()
		if err != nil {
			return time.Time{}, err
		}

		return time.Unix(secs, 0).UTC(), nil
	case string:
		if secs, err := strconv.ParseInt(t, 10, 64); err == nil {
			return time.Unix(secs, 0).UTC(), nil
		}

		ts, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, err
		}

		return ts.UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %v is not a timestamp", ErrUnexpectedType, v.tok)
	}
}

func isHex(s string) bool {
	return len(s) > 2 && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"))
}

// SetString returns a setter storing the value's text in the field selected
// by field.
func SetString[S any](field func(s *S) *string) Setter[S] {
	return func(s *S, v Value) error {
		*field(s) = v.String()
		return nil
	}
}

// AppendString returns a setter appending the value's text to a slice.
// Combined with an array value it collects every element.
func AppendString[S any](field func(s *S) *[]string) Setter[S] {
	return func(s *S, v Value) error {
		if v.IsNull() {
			return nil
		}

		p := field(s)
		*p = append(*p, v.String())
		return nil
	}
}

// SetUint64 returns a setter parsing an unsigned integer.
func SetUint64[S any](field func(s *S) *uint64) Setter[S] {
	return func(s *S, v Value) error {
		if v.IsNull() {
			return nil
		}

		n, err := v.Uint64()
		if err != nil {
			return err
		}

		*field(s) = n
		return nil
	}
}

// SetBigInt returns a setter parsing an arbitrarily large integer. Null
// leaves the field nil.
func SetBigInt[S any](field func(s *S) **big.Int) Setter[S] {
	return func(s *S, v Value) error {
		if v.IsNull() {
			return nil
		}

		n, err := v.BigInt()
		if err != nil {
			return err
		}

		*field(s) = n
		return nil
	}
}

// SetDecimal returns a setter parsing a fixed point decimal with scale digits.
func SetDecimal[S any](scale int, field func(s *S) **big.Int) Setter[S] {
	return func(s *S, v Value) error {
		if v.IsNull() {
			return nil
		}

		n, err := v.Decimal(scale)
		if err != nil {
			return err
		}

		*field(s) = n
		return nil
	}
}

// SetBool returns a setter parsing a boolean.
func SetBool[S any](field func(s *S) *bool) Setter[S] {
	return func(s *S, v Value) error {
		if v.IsNull() {
			return nil
		}

		b, err := v.Bool()
		if err != nil {
			return err
		}

		*field(s) = b
		return nil
	}
}

// SetTime returns a setter parsing a timestamp.
func SetTime[S any](field func(s *S) *time.Time) Setter[S] {
	return func(s *S, v Value) error {
		if v.IsNull() {
			return nil
		}

		ts, err := v.Time()
		if err != nil {
			return err
		}

		*field(s) = ts
		return nil
	}
}
