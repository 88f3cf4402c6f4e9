package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/foodgram/internal/services"
	"github.com/desertthunder/foodgram/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the bearer token claims issued by the identity provider.
// The subject is the user id.
type Claims struct {
	Staff bool `json:"staff,omitempty"`
	jwt.RegisteredClaims
}

type actorKey struct{}

// WithActor attaches the acting user to ctx.
func WithActor(ctx context.Context, actor services.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the acting user stored in ctx, or the anonymous actor.
func ActorFrom(ctx context.Context) services.Actor {
	if actor, ok := ctx.Value(actorKey{}).(services.Actor); ok {
		return actor
	}
	return services.Anonymous()
}

// ParseToken verifies an HS256 token against secret and returns the actor it names.
func ParseToken(secret []byte, raw string) (services.Actor, error) {
	if len(secret) == 0 {
		return services.Actor{}, fmt.Errorf("%w: token verification is not configured", shared.ErrInvalidToken)
	}

	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return services.Actor{}, fmt.Errorf("%w: %v", shared.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return services.Actor{}, shared.ErrInvalidToken
	}
	if !shared.IsID(claims.Subject) {
		return services.Actor{}, fmt.Errorf("%w: subject is not a user id", shared.ErrInvalidToken)
	}
	return services.Actor{UserID: claims.Subject, IsStaff: claims.Staff}, nil
}

// IssueToken signs an HS256 token naming actor, valid for ttl. Used for local development
// and administration; production tokens come from the identity provider.
func IssueToken(secret []byte, actor services.Actor, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("%w: auth.jwt_secret is empty", shared.ErrMissingConfig)
	}
	if actor.IsAnonymous() {
		return "", fmt.Errorf("%w: cannot issue a token for the anonymous actor", shared.ErrInvalidArgument)
	}

	now := time.Now()
	claims := Claims{
		Staff: actor.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Identity resolves the bearer token into the request's actor.
//
// Requests without an Authorization header proceed anonymously; an invalid token is rejected with 401.
func Identity(secret []byte, fail errorWriter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, raw, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				fail(w, r, fmt.Errorf("%w: expected a Bearer token", shared.ErrInvalidToken))
				return
			}

			actor, err := ParseToken(secret, strings.TrimSpace(raw))
			if err != nil {
				fail(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}
