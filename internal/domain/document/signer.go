package document

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// URLSigner mints and verifies short-lived download tokens. The token is
// the only credential the download endpoint checks, which lets a browser
// follow a plain link without carrying the session.
type URLSigner struct {
	key []byte
	ttl time.Duration

	now func() time.Time
}

type downloadClaims struct {
	jwt.RegisteredClaims
	DocumentID int64  `json:"doc_id"`
	Path       string `json:"path"`
}

func NewURLSigner(key []byte, ttl time.Duration) *URLSigner {
	return &URLSigner{key: key, ttl: ttl, now: time.Now}
}

// Sign returns a download token for the document and its expiry.
func (s *URLSigner) Sign(doc *Document) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := downloadClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		DocumentID: doc.ID,
		Path:       doc.Path,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign download token: %w", err)
	}
	return token, expiresAt, nil
}

// Verify parses a download token and returns the document ID and blob path
// it grants. Expired or tampered tokens fail.
func (s *URLSigner) Verify(token string) (int64, string, error) {
	claims := &downloadClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return 0, "", fmt.Errorf("invalid download token")
	}
	return claims.DocumentID, claims.Path, nil
}
