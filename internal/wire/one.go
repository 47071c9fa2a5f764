package wire

import (
	"io"

	"github.com/gabapcia/walletsync/internal/syncerr"
)

// DecodeOne decodes a payload carrying a single unit, either as a bare object
// or wrapped in a one element array, and returns it. collect extracts the
// decoded units from the state.
func DecodeOne[S, T any](r io.Reader, rules *Rules[S], collect func(s *S) []T) (T, error) {
	var (
		state S
		zero  T
	)

	if err := Decode(r, rules, &state); err != nil {
		return zero, err
	}

	units := collect(&state)
	switch len(units) {
	case 0:
		return zero, syncerr.NotFound("empty payload")
	case 1:
		return units[0], nil
	default:
		return zero, syncerr.Parse(nil, "expected a single unit, got %d", len(units))
	}
}
