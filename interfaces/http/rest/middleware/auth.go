// Package middleware holds the HTTP middleware chain: authentication,
// request logging, metrics, and the circuit breaker.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"roadmaps-backend/pkg/auth"
	"roadmaps-backend/pkg/common"
)

// Authenticator validates bearer tokens and installs the user context.
type Authenticator struct {
	validator   *auth.JWTValidator
	ipLimiter   auth.RateLimiter
	userLimiter auth.RateLimiter
}

// NewAuthenticator creates an authentication middleware. Either limiter
// may be nil to disable that layer of rate limiting.
func NewAuthenticator(validator *auth.JWTValidator, ipLimiter, userLimiter auth.RateLimiter) *Authenticator {
	return &Authenticator{
		validator:   validator,
		ipLimiter:   ipLimiter,
		userLimiter: userLimiter,
	}
}

// Require rejects requests without a valid bearer token.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.allowIP(w, r) {
			return
		}

		claims, ok := a.authenticate(w, r)
		if !ok {
			return
		}

		if a.userLimiter != nil {
			if allowed, _ := a.userLimiter.Allow(r.Context(), claims.UserID); !allowed {
				common.RespondError(w, http.StatusTooManyRequests, "user rate limit exceeded")
				return
			}
		}

		ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{
			UserID: claims.UserID,
			Email:  claims.Email,
			Admin:  claims.Admin,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects non-admin users. Must run inside Require.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := auth.GetUserFromContext(r.Context())
		if err != nil {
			common.RespondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !user.Admin {
			common.RespondError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) allowIP(w http.ResponseWriter, r *http.Request) bool {
	if a.ipLimiter == nil {
		return true
	}
	allowed, _ := a.ipLimiter.Allow(r.Context(), clientIP(r))
	if !allowed {
		common.RespondError(w, http.StatusTooManyRequests, "rate limit exceeded")
	}
	return allowed
}

func (a *Authenticator) authenticate(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		common.RespondError(w, http.StatusUnauthorized, "missing authorization header")
		return nil, false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		common.RespondError(w, http.StatusUnauthorized, "invalid authorization header format")
		return nil, false
	}

	claims, err := a.validator.ValidateToken(parts[1])
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrExpiredToken):
			common.RespondError(w, http.StatusUnauthorized, "token has expired")
		case errors.Is(err, auth.ErrInvalidSignature):
			common.RespondError(w, http.StatusUnauthorized, "invalid token signature")
		default:
			common.RespondError(w, http.StatusUnauthorized, "invalid token")
		}
		return nil, false
	}
	return claims, true
}

// clientIP prefers the RealIP-rewritten RemoteAddr, stripping the port.
func clientIP(r *http.Request) string {
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx > 0 && !strings.HasSuffix(addr, "]") {
		addr = addr[:idx]
	}
	return addr
}
