package digest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MandalaChain/E-Certificate/pkg/domain"
)

func TestHashFieldsDeterministic(t *testing.T) {
	a := HashFields("subject", "code-1")
	b := HashFields("subject", "code-1")
	assert.Equal(t, a, b)
	assert.False(t, a.IsZero())
}

func TestHashFieldsFraming(t *testing.T) {
	// Length prefixes keep field boundaries distinct.
	assert.NotEqual(t, HashFields("ab", "c"), HashFields("a", "bc"))
	assert.NotEqual(t, HashFields("abc"), HashFields("ab", "c"))
	assert.NotEqual(t, HashFields("a", ""), HashFields("a"))
}

func TestHashCategory(t *testing.T) {
	a := HashCategory("diploma")
	b := HashCategory("diploma")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, HashCategory("license"))

	// Category keys are domain-separated from plain field hashes.
	assert.NotEqual(t, domain.ContentHash(a), HashFields("diploma"))
}

func TestHashCertificate(t *testing.T) {
	subject, err := domain.ParseIdentity("0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	issued := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	until := issued.AddDate(1, 0, 0)

	a := HashCertificate(subject, "code-1", issued, until)
	assert.Equal(t, a, HashCertificate(subject, "code-1", issued, until))
	assert.NotEqual(t, a, HashCertificate(subject, "code-2", issued, until))
	assert.NotEqual(t, a, HashCertificate(subject, "code-1", issued, time.Time{}),
		"non-expiring certificates hash differently")
}

func TestSeparator(t *testing.T) {
	a := Separator("ledger", "1", 7, "0xabc")
	assert.Equal(t, a, Separator("ledger", "1", 7, "0xabc"))
	assert.NotEqual(t, a, Separator("ledger", "1", 8, "0xabc"))
	assert.NotEqual(t, a, Separator("ledger", "2", 7, "0xabc"))
}
