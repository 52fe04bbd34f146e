// Package verification issues and validates the signed email-verification
// tokens carried in the links mailed to users. Tokens are self-contained:
// there is no server-side record and no revocation, every still-valid token
// for a user is honored until it expires.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	Purpose  = "email_verification"
	Issuer   = "vetline"
	Audience = "vetline-users"

	// clock drift tolerated between issuing and validating hosts
	leeway = 5 * time.Minute
)

var ErrInvalidToken = errors.New("invalid or expired verification token")

type Mailer interface {
	Send(ctx context.Context, to, link string) error
}

type Claims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func NewToken(userID int64, email string, ttl time.Duration, secret string) (string, error) {
	const op = "verification.NewToken"

	now := time.Now()

	claims := Claims{
		Email:   email,
		Purpose: Purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(userID),
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// ParseToken checks signature, issuer, audience, expiry and purpose in one
// pass. Any failure comes back as ErrInvalidToken so callers cannot leak
// which check tripped.
func ParseToken(tokenStr, secret string) (userID int64, email string, err error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		},
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithLeeway(leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return 0, "", ErrInvalidToken
	}

	if claims.Purpose != Purpose {
		return 0, "", ErrInvalidToken
	}

	var id int64
	if _, err := fmt.Sscan(claims.Subject, &id); err != nil || id <= 0 {
		return 0, "", ErrInvalidToken
	}

	if claims.Email == "" {
		return 0, "", ErrInvalidToken
	}

	return id, claims.Email, nil
}

// SendVerificationEmail issues a fresh token and hands the resulting link to
// the mailer. The send error is returned as-is: a failed delivery is the
// caller's decision to surface, registration itself must not roll back.
func SendVerificationEmail(
	ctx context.Context,
	log *slog.Logger,
	mailer Mailer,
	ttl time.Duration,
	secret string,
	userID int64,
	baseURL, email string,
) error {
	const op = "verification.SendVerificationEmail"

	token, err := NewToken(userID, email, ttl, secret)
	if err != nil {
		log.Error("failed to generate token", slog.Any("err", err))

		return fmt.Errorf("%s: %w", op, err)
	}

	link := fmt.Sprintf("%s/auth/verify?token=%s", baseURL, url.QueryEscape(token))

	if err := mailer.Send(ctx, email, link); err != nil {
		log.Error("failed to send verification link", slog.Any("err", err))

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
