// internal/auth/auth.go
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer names the service in download tokens.
const Issuer = "lifesync"

// DefaultTTL is how long a report link stays valid.
const DefaultTTL = 15 * time.Minute

// ErrInvalidToken is returned for tokens that fail verification or belong
// to another report.
var ErrInvalidToken = errors.New("auth: invalid download token")

// DownloadClaims bind a token to one generated report.
type DownloadClaims struct {
	ReportID string `json:"report_id"`
	Filename string `json:"filename"`
	jwt.RegisteredClaims
}

// Signer issues and verifies report download tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner creates a signer. An empty secret gets a random per-process key,
// so links do not survive restarts.
func NewSigner(secret string, ttl time.Duration) (*Signer, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Signer{secret: key, ttl: ttl, now: time.Now}, nil
}

// TTL returns the token lifetime.
func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for reportID.
func (s *Signer) Issue(reportID, filename string) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := DownloadClaims{
		ReportID: reportID,
		Filename: filename,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   reportID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign download token: %w", err)
	}
	return signed, expires, nil
}

// Verify parses tokenString and checks that it was issued for reportID.
func (s *Signer) Verify(tokenString, reportID string) (*DownloadClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &DownloadClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.secret, nil
	},
		jwt.WithIssuer(Issuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*DownloadClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ReportID != reportID {
		return nil, fmt.Errorf("%w: token is for another report", ErrInvalidToken)
	}

	return claims, nil
}
