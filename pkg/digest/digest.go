// Package digest computes the deterministic content hashes that key the
// certificate ledger. All digests are SHA3-256 over length-prefixed fields so
// that field boundaries can never be confused ("ab","c" and "a","bc" hash
// differently).
package digest

import (
	"encoding/binary"
	"strconv"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/MandalaChain/E-Certificate/pkg/domain"
)

// HashFields digests an ordered tuple of string fields.
func HashFields(fields ...string) domain.ContentHash {
	return domain.ContentHash(sum(fields...))
}

// HashCategory digests a category name into its interned key.
func HashCategory(name string) domain.CategoryKey {
	return domain.CategoryKey(sum("category", name))
}

// HashCertificate digests the structured fields of a certificate payload:
// the subject identity, the certificate code, and the validity dates. Zero
// times digest as empty fields so non-expiring certificates stay stable.
func HashCertificate(subject domain.Identity, code string, issuedAt, validUntil time.Time) domain.ContentHash {
	return HashFields(
		"certificate",
		subject.String(),
		code,
		formatTime(issuedAt),
		formatTime(validUntil),
	)
}

// Separator binds a digest to a deployment domain: ledger name, version,
// chain ID, and ledger address. The relay signs under this separator so a
// signature for one deployment can never be replayed against another.
func Separator(name, version string, chainID uint64, address string) [domain.DigestLen]byte {
	return sum("domain", name, version, strconv.FormatUint(chainID, 10), address)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return strconv.FormatInt(t.Unix(), 10)
}

func sum(fields ...string) [domain.DigestLen]byte {
	h := sha3.New256()
	var lenBuf [binary.MaxVarintLen64]byte
	for _, f := range fields {
		n := binary.PutUvarint(lenBuf[:], uint64(len(f)))
		h.Write(lenBuf[:n])
		h.Write([]byte(f))
	}
	var out [domain.DigestLen]byte
	h.Sum(out[:0])
	return out
}
