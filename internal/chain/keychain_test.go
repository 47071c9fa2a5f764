package chain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddressSet(t *testing.T) {
	t.Run("keeps insertion order and skips duplicates", func(t *testing.T) {
		s := NewAddressSet(nil, "b", "a", "b", "")

		assert.Equal(t, []string{"b", "a"}, s.Addresses())
		assert.Equal(t, 2, s.Len())
	})

	t.Run("membership uses normalization", func(t *testing.T) {
		s := NewAddressSet(strings.ToLower, "0xABC")

		assert.True(t, s.Contains("0xabc"))
		assert.True(t, s.Contains("0xAbC"))
		assert.False(t, s.Contains("0xdef"))
		assert.Equal(t, []string{"0xABC"}, s.Addresses())
	})

	t.Run("fingerprint ignores order and case of normalized addresses", func(t *testing.T) {
		a := NewAddressSet(strings.ToLower, "0xABC", "0xdef")
		b := NewAddressSet(strings.ToLower, "0xdef", "0xabc")

		assert.Equal(t, a.Fingerprint(), b.Fingerprint())

		before := a.Fingerprint()
		a.Add("0x123")
		assert.NotEqual(t, before, a.Fingerprint())
	})

	t.Run("add reports only new addresses", func(t *testing.T) {
		s := NewAddressSet(strings.ToLower, "0xabc")

		added := s.Add("0xABC", "0xdef", "0xdef")

		assert.Equal(t, []string{"0xdef"}, added)
		assert.Equal(t, 2, s.Len())
	})

	t.Run("addresses returns a copy", func(t *testing.T) {
		s := NewAddressSet(nil, "a")
		out := s.Addresses()
		out[0] = "z"

		assert.Equal(t, []string{"a"}, s.Addresses())
	})
}
