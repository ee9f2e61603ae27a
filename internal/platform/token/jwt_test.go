package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MandalaChain/E-Certificate/pkg/domain"
	dErrors "github.com/MandalaChain/E-Certificate/pkg/domain-errors"
)

const testIdentity = domain.Identity("0x1111111111111111111111111111111111111111")

func TestIssueAndValidate(t *testing.T) {
	svc := NewService("secret", "e-certificate", time.Hour)

	tokenString, err := svc.Issue(testIdentity)
	require.NoError(t, err)

	identity, err := svc.Validate(tokenString)
	require.NoError(t, err)
	assert.Equal(t, testIdentity, identity)
}

func TestValidate_WrongKey(t *testing.T) {
	svc := NewService("secret", "e-certificate", time.Hour)
	other := NewService("other-secret", "e-certificate", time.Hour)

	tokenString, err := svc.Issue(testIdentity)
	require.NoError(t, err)

	_, err = other.Validate(tokenString)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}

func TestValidate_Expired(t *testing.T) {
	svc := NewService("secret", "e-certificate", -time.Minute)

	tokenString, err := svc.Issue(testIdentity)
	require.NoError(t, err)

	_, err = svc.Validate(tokenString)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}

func TestValidate_Garbage(t *testing.T) {
	svc := NewService("secret", "e-certificate", time.Hour)

	_, err := svc.Validate("not-a-token")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}

func TestValidate_RejectsNonHMACAlgorithm(t *testing.T) {
	svc := NewService("secret", "e-certificate", time.Hour)

	// alg=none tokens must never validate.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Identity: testIdentity.String()})
	tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Validate(tokenString)
	require.Error(t, err)
}

func TestValidate_MissingIdentityClaim(t *testing.T) {
	svc := NewService("secret", "e-certificate", time.Hour)

	signed := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	tokenString, err := signed.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.Validate(tokenString)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}
