package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"edcore.org/internal/access"
	"edcore.org/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var publicPaths = []string{
	"/v1/auth/token",
	"/metrics",
	"/healthz",
	"/readyz",
	"/",
}

func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := auth.ParseAndValidate(token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				writeError(w, r, http.StatusUnauthorized, "invalid token")
				return
			}
			writeError(w, r, http.StatusInternalServerError, "authentication error")
			return
		}

		ctx := auth.ContextWithPrincipal(r.Context(), claims.Principal())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireModule checks the caller's level on one module. Denials are a
// uniform 403 regardless of whether the module exists for the caller.
func (a *API) requireModule(w http.ResponseWriter, r *http.Request, module string, need access.Level) (access.Principal, bool) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return access.Principal{}, false
	}
	decision, err := a.access.EvaluateFor(r.Context(), principal, module)
	if err != nil {
		handleAccessError(w, r, err)
		return access.Principal{}, false
	}
	var allowed bool
	switch need {
	case access.LevelView:
		allowed = decision.CanView
	case access.LevelEdit:
		allowed = decision.CanEdit
	case access.LevelDelete:
		allowed = decision.CanDelete
	case access.LevelAll:
		allowed = decision.HasFull
	}
	if !allowed {
		writeError(w, r, http.StatusForbidden, "forbidden")
		return access.Principal{}, false
	}
	return principal, true
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
