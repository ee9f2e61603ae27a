package relay

import (
	"crypto/ed25519"
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/MandalaChain/E-Certificate/pkg/digest"
	"github.com/MandalaChain/E-Certificate/pkg/domain"
	dErrors "github.com/MandalaChain/E-Certificate/pkg/domain-errors"
)

// Domain binds signed calls to one ledger deployment. Two deployments with
// different names, versions, chains, or addresses never accept each other's
// signatures.
type Domain struct {
	Name    string
	Version string
	ChainID uint64
	Address string
}

// Separator returns the deployment-specific prefix mixed into every signed
// digest.
func (d Domain) Separator() [domain.DigestLen]byte {
	return digest.Separator(d.Name, d.Version, d.ChainID, d.Address)
}

// SignedCall is a delegated invocation request: a call the claimed identity
// authorized out-of-band, to be executed by whoever submits it.
type SignedCall struct {
	Identity  domain.Identity
	Nonce     uint64
	Call      []byte
	PublicKey []byte
	Signature []byte
}

// Verifier checks a signed call against a domain and yields the proven
// identity. Isolated behind an interface so the relay is testable
// independent of the signing scheme.
type Verifier interface {
	Verify(d Domain, call SignedCall) (domain.Identity, error)
}

// Ed25519Verifier verifies detached Ed25519 signatures over the
// domain-separated digest of (identity, nonce, call). The claimed identity
// must equal the identity derived from the public key, which stands in for
// signature recovery.
type Ed25519Verifier struct{}

func (Ed25519Verifier) Verify(d Domain, call SignedCall) (domain.Identity, error) {
	if len(call.PublicKey) != ed25519.PublicKeySize {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid public key")
	}
	derived := DeriveIdentity(call.PublicKey)
	if derived != call.Identity {
		return "", dErrors.New(dErrors.CodeUnauthorized, "public key does not match claimed identity")
	}
	if !ed25519.Verify(ed25519.PublicKey(call.PublicKey), signingDigest(d, call), call.Signature) {
		return "", dErrors.New(dErrors.CodeUnauthorized, "signature verification failed")
	}
	return derived, nil
}

// Signer produces signed calls. Ledger clients and tests use it; the server
// side only ever verifies.
type Signer struct {
	private ed25519.PrivateKey
}

func NewSigner(private ed25519.PrivateKey) *Signer {
	return &Signer{private: private}
}

// Identity returns the ledger identity for the signer's key pair.
func (s *Signer) Identity() domain.Identity {
	return DeriveIdentity(s.private.Public().(ed25519.PublicKey))
}

// Sign builds a SignedCall for the given nonce and encoded call.
func (s *Signer) Sign(d Domain, nonce uint64, call []byte) SignedCall {
	public := s.private.Public().(ed25519.PublicKey)
	sc := SignedCall{
		Identity:  DeriveIdentity(public),
		Nonce:     nonce,
		Call:      call,
		PublicKey: append([]byte(nil), public...),
	}
	sc.Signature = ed25519.Sign(s.private, signingDigest(d, sc))
	return sc
}

// DeriveIdentity maps a public key to its ledger identity: the last 20 bytes
// of the key's SHA3-256 digest.
func DeriveIdentity(publicKey []byte) domain.Identity {
	sum := sha3.Sum256(publicKey)
	return domain.IdentityFromBytes(sum[len(sum)-domain.IdentityLen:])
}

// signingDigest computes the bytes actually signed: the domain separator,
// the claimed identity, the big-endian nonce, and the encoded call, all
// length-framed by position.
func signingDigest(d Domain, call SignedCall) []byte {
	separator := d.Separator()
	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], call.Nonce)

	h := sha3.New256()
	h.Write(separator[:])
	h.Write([]byte(call.Identity))
	h.Write(nonce[:])
	h.Write(call.Call)
	return h.Sum(nil)
}
