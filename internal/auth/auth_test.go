// internal/auth/auth_test.go
package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner_IssueVerify(t *testing.T) {
	signer, err := NewSigner("test-secret", time.Minute)
	require.NoError(t, err)

	token, expires, err := signer.Issue("report-1", "LifeSync_Wellness_Report_Ada_20240309_140507.pdf")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expires, 5*time.Second)

	claims, err := signer.Verify(token, "report-1")
	require.NoError(t, err)
	assert.Equal(t, "report-1", claims.ReportID)
	assert.Equal(t, "LifeSync_Wellness_Report_Ada_20240309_140507.pdf", claims.Filename)
	assert.Equal(t, Issuer, claims.Issuer)
}

func TestSigner_Rejects(t *testing.T) {
	signer, err := NewSigner("test-secret", time.Minute)
	require.NoError(t, err)
	token, _, err := signer.Issue("report-1", "a.pdf")
	require.NoError(t, err)

	t.Run("other report", func(t *testing.T) {
		_, err := signer.Verify(token, "report-2")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := NewSigner("different", time.Minute)
		require.NoError(t, err)
		_, err = other.Verify(token, "report-1")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		signer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
		defer func() { signer.now = time.Now }()

		_, err := signer.Verify(token, "report-1")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := signer.Verify("not-a-token", "report-1")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, DownloadClaims{ReportID: "report-1"})
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = signer.Verify(raw, "report-1")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewSigner_Defaults(t *testing.T) {
	a, err := NewSigner("", 0)
	require.NoError(t, err)
	b, err := NewSigner("", 0)
	require.NoError(t, err)

	assert.Equal(t, DefaultTTL, a.TTL())

	token, _, err := a.Issue("r", "r.pdf")
	require.NoError(t, err)
	_, err = b.Verify(token, "r")
	assert.Error(t, err, "random keys differ between signers")
}
