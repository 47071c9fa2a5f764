package chain

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
	"sync"

	"github.com/gabapcia/walletsync/internal/pkg/types"
)

// AddressSet is an ordered, normalized, concurrency safe keychain that can
// grow while a synchronization run is in progress.
type AddressSet struct {
	mu        sync.RWMutex
	normalize func(string) string
	members   types.Set[string]
	ordered   []string
}

// Compile-time check that *AddressSet implements Keychain.
var _ Keychain = (*AddressSet)(nil)

// NewAddressSet returns a keychain holding addresses. normalize maps an
// address to the form used for membership tests; nil keeps addresses as is.
func NewAddressSet(normalize func(string) string, addresses ...string) *AddressSet {
	if normalize == nil {
		normalize = func(s string) string { return s }
	}

	s := &AddressSet{
		normalize: normalize,
		members:   types.NewSet[string](),
	}
	s.Add(addresses...)

	return s
}

// Add inserts addresses that are not yet members and returns the ones that
// were actually added, in the given order.
func (s *AddressSet) Add(addresses ...string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var added []string
	for _, address := range addresses {
		if address == "" {
			continue
		}

		key := s.normalize(address)
		if s.members.Contains(key) {
			continue
		}

		s.members.Add(key)
		s.ordered = append(s.ordered, address)
		added = append(added, address)
	}

	return added
}

func (s *AddressSet) Contains(address string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.members.Contains(s.normalize(address))
}

func (s *AddressSet) Addresses() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// Len returns the number of watched addresses.
func (s *AddressSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.ordered)
}

// Fingerprint identifies the set of normalized addresses, regardless of the
// order they were added in. Two keychains watching the same addresses have
// the same fingerprint.
func (s *AddressSet) Fingerprint() string {
	s.mu.RLock()
	keys := s.members.ToSlice()
	s.mu.RUnlock()

	slices.Sort(keys)
	sum := sha256.Sum256([]byte(strings.Join(keys, "\n")))
	return hex.EncodeToString(sum[:])
}
