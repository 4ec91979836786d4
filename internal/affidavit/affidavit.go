// Package affidavit serves the sworn statements registrants must accept and
// issues the short-lived token that proves acceptance.
package affidavit

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"bjj-tournament/internal/models"
)

type Affidavit struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Text    string `json:"text"`
	Closing string `json:"closing"`
}

const closing = "He leído, comprendido y acepto voluntariamente todos los puntos de esta Declaración Jurada."

func For(kind models.Kind) Affidavit {
	if kind == models.KindMinor {
		return Affidavit{Type: kind.Category(), Title: "Declaración Jurada - Menores", Text: minorsText, Closing: closing}
	}
	return Affidavit{Type: kind.Category(), Title: "Declaración Jurada - Adultos", Text: adultsText, Closing: closing}
}

// CookieName is scoped per registrant type so accepting one form does not
// unlock the other.
func CookieName(kind models.Kind) string {
	return "affidavit_" + kind.Category()
}

var ErrNotAccepted = errors.New("affidavit not accepted")

const subject = "affidavit"

type claims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies acceptance tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

func (i *Issuer) Issue(kind models.Kind) (string, error) {
	now := i.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Kind: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})
	s, err := tok.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign affidavit token: %w", err)
	}
	return s, nil
}

// Verify returns ErrNotAccepted unless token is a live acceptance for kind.
func (i *Issuer) Verify(token string, kind models.Kind) error {
	if token == "" {
		return ErrNotAccepted
	}
	var cl claims
	tok, err := jwt.ParseWithClaims(token, &cl, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now), jwt.WithSubject(subject))
	if err != nil || !tok.Valid || cl.Kind != string(kind) {
		return ErrNotAccepted
	}
	return nil
}
