package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"Commentary/internal/core/comments"
)

// Context keys for storing user information
type contextKey string

const actorKey contextKey = "actor"

// Claims is the token payload issued for panel users. Subject carries the
// username; Role gates the moderation capabilities.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates HS256 Bearer tokens issued by the host CMS and
// injects the resulting actor into the request context.
type AuthMiddleware struct {
	secret []byte
}

// NewAuthMiddleware creates an auth middleware around a shared signing secret
func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret)}
}

// IssueToken mints a token for the given user, valid for the given
// duration. Exposed for the host CMS integration and for tests.
func (m *AuthMiddleware) IssueToken(username, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// RequireAuth ensures the request carries a valid token, responding 401
// otherwise.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := m.authenticate(r)
		if !ok {
			writeAuthError(w, "Invalid or expired token")
			return
		}
		if actor == nil {
			writeAuthError(w, "Authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(withActor(r.Context(), actor)))
	})
}

// OptionalAuth loads the actor when a token is present but lets anonymous
// requests through. A malformed token is still refused rather than treated
// as anonymous.
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := m.authenticate(r)
		if !ok {
			writeAuthError(w, "Invalid or expired token")
			return
		}
		if actor != nil {
			r = r.WithContext(withActor(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}

// authenticate parses the Authorization header. Returns (nil, true) when no
// token is present and (nil, false) when a token is present but invalid.
func (m *AuthMiddleware) authenticate(r *http.Request) (*comments.Actor, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, true
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, false
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		log.Printf("[AUTH_FAILURE] ip=%s method=%s path=%s error=%v",
			r.RemoteAddr, r.Method, r.URL.Path, err)
		return nil, false
	}

	return &comments.Actor{Username: claims.Subject, Role: claims.Role}, true
}

func withActor(ctx context.Context, actor *comments.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetActor returns the authenticated actor from the request context, or nil
// for anonymous requests.
func GetActor(r *http.Request) *comments.Actor {
	actor, _ := r.Context().Value(actorKey).(*comments.Actor)
	return actor
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"AuthRequired","message":"` + message + `"}`))
}
