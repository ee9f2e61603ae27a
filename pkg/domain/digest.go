package domain

import (
	"encoding/hex"
	"strings"

	dErrors "github.com/MandalaChain/E-Certificate/pkg/domain-errors"
)

// DigestLen is the byte length of every content and category digest.
const DigestLen = 32

// ContentHash identifies an issued certificate by the digest of its fields.
// Invariant: the zero value is never a valid key; it doubles as the "absent"
// sentinel alongside SlotID 0.
//
// Usage: construct via ParseContentHash at trust boundaries; the digest
// utility in pkg/digest produces values directly.
type ContentHash [DigestLen]byte

// CategoryKey is the digest of a certificate category name. Categories are
// interned by digest so the ledger never stores free-form category strings.
type CategoryKey [DigestLen]byte

// ParseContentHash constructs a ContentHash from external input.
//
// Errors: returns CodeInvalidInput when the value is not a 0x-prefixed
// 64-hex-digit string or decodes to all zero bytes.
func ParseContentHash(s string) (ContentHash, error) {
	b, err := parseDigest(s)
	if err != nil {
		return ContentHash{}, err
	}
	h := ContentHash(b)
	if h.IsZero() {
		return ContentHash{}, dErrors.New(dErrors.CodeInvalidInput, "content hash cannot be zero")
	}
	return h, nil
}

// ParseCategoryKey constructs a CategoryKey from external input.
func ParseCategoryKey(s string) (CategoryKey, error) {
	b, err := parseDigest(s)
	if err != nil {
		return CategoryKey{}, err
	}
	k := CategoryKey(b)
	if k == (CategoryKey{}) {
		return CategoryKey{}, dErrors.New(dErrors.CodeInvalidInput, "category key cannot be zero")
	}
	return k, nil
}

func parseDigest(s string) ([DigestLen]byte, error) {
	var out [DigestLen]byte
	trimmed, ok := strings.CutPrefix(s, "0x")
	if !ok {
		return out, dErrors.New(dErrors.CodeInvalidInput, "digest must be 0x-prefixed")
	}
	raw, err := hex.DecodeString(trimmed)
	if err != nil || len(raw) != DigestLen {
		return out, dErrors.New(dErrors.CodeInvalidInput, "digest must be 32 hex-encoded bytes")
	}
	copy(out[:], raw)
	return out, nil
}

func (h ContentHash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// IsZero reports whether the hash is the absent sentinel.
func (h ContentHash) IsZero() bool {
	return h == ContentHash{}
}

func (k CategoryKey) String() string {
	return "0x" + hex.EncodeToString(k[:])
}
