package domain

import (
	"encoding/hex"
	"strings"

	dErrors "github.com/MandalaChain/E-Certificate/pkg/domain-errors"
)

// IdentityLen is the byte length of a ledger identity.
const IdentityLen = 20

// Identity is the address-like identity an attestation is bound to. It is set
// at issuance and never reassigned.
//
// Usage: construct via ParseIdentity at trust boundaries or derive from a
// public key via the relay package; direct casting bypasses validation.
type Identity string

// ParseIdentity constructs an Identity from external input. Identities are
// normalized to lowercase so map lookups never depend on caller casing.
//
// Errors: returns CodeInvalidInput when the value is not a 0x-prefixed
// 40-hex-digit string.
func ParseIdentity(s string) (Identity, error) {
	trimmed, ok := strings.CutPrefix(strings.ToLower(s), "0x")
	if !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity must be 0x-prefixed")
	}
	raw, err := hex.DecodeString(trimmed)
	if err != nil || len(raw) != IdentityLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity must be 20 hex-encoded bytes")
	}
	return Identity("0x" + trimmed), nil
}

// IdentityFromBytes builds an Identity from a 20-byte value. Inputs of any
// other length yield the empty identity.
func IdentityFromBytes(b []byte) Identity {
	if len(b) != IdentityLen {
		return ""
	}
	return Identity("0x" + hex.EncodeToString(b))
}

func (i Identity) String() string {
	return string(i)
}

// IsZero reports whether the identity is unset.
func (i Identity) IsZero() bool {
	return i == ""
}
