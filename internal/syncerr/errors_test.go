package syncerr

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs(t *testing.T) {
	t.Run("matches sentinel of the same code", func(t *testing.T) {
		err := fmt.Errorf("page 3: %w", NotFound("transaction %s", "0xabc"))

		assert.ErrorIs(t, err, ErrNotFound)
		assert.NotErrorIs(t, err, ErrAPI)
	})

	t.Run("anchor block is a dedicated not found case", func(t *testing.T) {
		err := AnchorBlockNotFound("0xdead")

		assert.ErrorIs(t, err, ErrAnchorBlockNotFound)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NotErrorIs(t, NotFound("tx"), ErrAnchorBlockNotFound)
	})

	t.Run("unwraps the cause", func(t *testing.T) {
		err := Transport(io.ErrUnexpectedEOF, "GET %s", "/blocks/current")

		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		assert.ErrorIs(t, err, ErrTransport)
	})
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "API_ERROR: rate limited (status 429)", API(429, "rate limited").Error())
	assert.Equal(t, "PARSE_ERROR: field hash: unexpected EOF", Parse(io.ErrUnexpectedEOF, "field %s", "hash").Error())
}

func TestClassify(t *testing.T) {
	code, msg := Classify(fmt.Errorf("wrapped: %w", Interpretation("delegation without sender")))
	assert.Equal(t, CodeInterpretation, code)
	assert.Equal(t, 6, code.Int())
	assert.Contains(t, msg, "delegation without sender")

	code, msg = Classify(errors.New("boom"))
	assert.Equal(t, CodeUnknown, code)
	assert.Equal(t, 0, code.Int())
	assert.Equal(t, "boom", msg)
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(Transport(nil, "dial")))
	assert.True(t, Retryable(API(503, "unavailable")))
	assert.False(t, Retryable(Parse(nil, "bad json")))
	assert.False(t, Retryable(Persistence(nil, "disk full")))
	assert.False(t, Retryable(errors.New("unknown")))
}
