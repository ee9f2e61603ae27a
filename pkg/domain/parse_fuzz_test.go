//go:build go1.18

package domain

import (
	"strings"
	"testing"
)

// FuzzParseContentHash tests that parsing never panics on arbitrary input
// and that accepted values round-trip through String.
func FuzzParseContentHash(f *testing.F) {
	f.Add("")
	f.Add("0x" + strings.Repeat("ab", 32))
	f.Add("0x" + strings.Repeat("00", 32))
	f.Add("not-a-digest")
	f.Add("0x")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		hash, err := ParseContentHash(input)
		if err != nil {
			return
		}
		if hash.IsZero() {
			t.Error("accepted hash must never be the zero sentinel")
		}
		roundTrip, err := ParseContentHash(hash.String())
		if err != nil {
			t.Errorf("valid hash failed round-trip: %v", err)
		}
		if roundTrip != hash {
			t.Error("round-trip changed hash value")
		}
	})
}

// FuzzParseIdentity ensures identity parsing is total and normalizing.
func FuzzParseIdentity(f *testing.F) {
	f.Add("")
	f.Add("0x" + strings.Repeat("ab", 20))
	f.Add("0x" + strings.Repeat("AB", 20))
	f.Add("'; DROP TABLE certificates;--")

	f.Fuzz(func(t *testing.T, input string) {
		identity, err := ParseIdentity(input)
		if err != nil {
			return
		}
		if identity.String() != strings.ToLower(identity.String()) {
			t.Error("accepted identity must be lowercase")
		}
		roundTrip, err := ParseIdentity(identity.String())
		if err != nil || roundTrip != identity {
			t.Error("round-trip changed identity value")
		}
	})
}
