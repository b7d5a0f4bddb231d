// Package auth проверяет токены сессии, выпущенные внешним identity provider (HS256).
// Сервис не хранит пользователей: uid и отображаемое имя берутся из claims.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// leeway — допуск рассинхронизации часов.
const leeway = 5 * time.Second

// Identity — аутентифицированный пользователь запроса.
type Identity struct {
	UserID uuid.UUID
	Name   string
}

type sessionClaims struct {
	UserID string `json:"uid"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Verifier валидирует и (для тестов и локальных стендов) выпускает токены.
type Verifier struct {
	secret   []byte
	issuer   string
	audience []string
}

// NewVerifier создаёт проверяющего с общим секретом identity provider.
func NewVerifier(secret, issuer string, audience []string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer, audience: audience}
}

// Verify проверяет подпись, срок, issuer и audience и возвращает Identity.
// Пустое имя в claims заменяется на sub-префикс uid, чтобы у автора всегда было отображаемое имя.
func (v *Verifier) Verify(tokenStr string) (Identity, error) {
	const op = "auth/Verify"

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(leeway),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if len(v.audience) > 0 {
		opts = append(opts, jwt.WithAudience(v.audience...))
	}

	token, err := jwt.ParseWithClaims(strings.TrimSpace(tokenStr), &sessionClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return v.secret, nil
		},
		opts...,
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return Identity{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Identity{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	name := strings.TrimSpace(claims.Name)
	if name == "" {
		name = "user-" + uid.String()[:8]
	}

	return Identity{UserID: uid, Name: name}, nil
}

// Issue подписывает токен сессии для id со сроком ttl.
func (v *Verifier) Issue(id Identity, ttl time.Duration, now time.Time) (string, error) {
	const op = "auth/Issue"

	claims := sessionClaims{
		UserID: id.UserID.String(),
		Name:   id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    v.issuer,
			Subject:   id.UserID.String(),
			Audience:  jwt.ClaimStrings(v.audience),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}
