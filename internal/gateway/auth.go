package gateway

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey int

const userIDKey ctxKey = iota

// issueToken mints the HS256 JWT used by the user auth scheme: the {id}
// payload of services/api/app/services/token.py plus an exp claim 24h out.
func (s *Server) issueToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"id":  userID,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.jwtSecret)
}

// userAuth requires "Authorization: TOKEN <jwt>" — note the scheme is
// literally TOKEN, not Bearer, matching get_authorization_scheme_param's
// comparison in the original gateway.
func (s *Server) userAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, raw, ok := splitAuthHeader(r.Header.Get("Authorization"))
		if !ok || !strings.EqualFold(scheme, "TOKEN") {
			writeError(w, http.StatusForbidden, "invalid authorization scheme")
			return
		}
		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
			return s.jwtSecret, nil
		})
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		id, _ := claims["id"].(string)
		if id == "" {
			writeError(w, http.StatusUnauthorized, "invalid token payload")
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// adminAuth requires "Authorization: TOKEN <secret>" whose token equals the
// configured admin shared secret, compared in constant time.
func (s *Server) adminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, raw, ok := splitAuthHeader(r.Header.Get("Authorization"))
		if !ok || !strings.EqualFold(scheme, "TOKEN") {
			writeError(w, http.StatusForbidden, "invalid authorization scheme")
			return
		}
		if subtle.ConstantTimeCompare([]byte(raw), []byte(s.adminToken)) != 1 {
			writeError(w, http.StatusForbidden, "invalid admin token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func splitAuthHeader(header string) (scheme, token string, ok bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func userIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
