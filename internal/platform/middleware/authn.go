// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package middleware

import (
	"net/http"
	"strings"

	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/ctxutil"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/sec"
)

// SessionAuthority authenticates a bearer token against the device session.
//
// The session store implements this: it checks the presented token matches
// the stored session token and that the token still clears the expiry
// safety margin. A failed check purges the stored token before returning.
type SessionAuthority interface {
	Authenticate(rawToken string) (*sec.Claims, error)
}

// Authenticate extracts the Bearer token, verifies it against the session
// authority, and injects the resulting claims into the request context.
//
// Requests without an Authorization header pass through anonymously; use
// [RequireAuth] on routes that must reject them.
func Authenticate(authority SessionAuthority) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. Extract the Authorization header
			header := request.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// 2. Enforce the Bearer scheme
			rawToken, found := strings.CutPrefix(header, "Bearer ")
			if !found || rawToken == "" {
				writeError(writer, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid Authorization header format")
				return
			}

			// 3. Verify against the session authority (fail closed)
			claims, err := authority.Authenticate(rawToken)
			if err != nil {
				writeError(writer, http.StatusUnauthorized, "SESSION_EXPIRED", "Your session has expired. Please sign in again.")
				return
			}

			// 4. Inject the authenticated identity into the context
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth rejects any request that did not pass [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			writeError(writer, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}
		next.ServeHTTP(writer, request)
	})
}
