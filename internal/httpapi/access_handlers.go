package httpapi

import (
	"net/http"
	"strings"
	"time"

	"edcore.org/internal/access"
	"edcore.org/internal/audit"
	"edcore.org/internal/auth"
)

type tokenRequest struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	SchoolID string `json:"school_id"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type grantRequest struct {
	Level     string `json:"access_level"`
	SubDomain string `json:"sub_domain"`
}

type replaceGrantsRequest struct {
	Grants []grantEntry `json:"grants"`
}

type grantEntry struct {
	Module    string `json:"module"`
	Level     string `json:"access_level"`
	SubDomain string `json:"sub_domain"`
}

type provisionRequest struct {
	Role string `json:"role"`
}

func (a *API) handleAuthToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		writeError(w, r, http.StatusBadRequest, "user_id is required")
		return
	}
	role, ok := access.ParseRole(req.Role)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "unknown role")
		return
	}

	token, err := auth.GenerateToken(userID, role, req.SchoolID, a.tokenTTL)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "token generation failed")
		return
	}

	expiresAt := time.Now().UTC().Add(a.tokenTTL)
	_ = audit.LogEvent(r.Context(), "auth.token.issued", map[string]any{
		"user":       userID,
		"role":       string(role),
		"expires_at": expiresAt.Format(time.RFC3339),
	})

	writeJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// handleAccessScoped routes everything under /v1/access/:
//
//	GET    /v1/access/{id}            full module map
//	PUT    /v1/access/{id}            replace the full grant set
//	GET    /v1/access/{id}/evaluate   decision for ?module=
//	POST   /v1/access/{id}/provision  apply role defaults
//	PUT    /v1/access/{id}/{module}   upsert one grant
//	DELETE /v1/access/{id}/{module}   remove one grant
func (a *API) handleAccessScoped(w http.ResponseWriter, r *http.Request) {
	if a.access == nil {
		writeError(w, r, http.StatusServiceUnavailable, "access service unavailable")
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/v1/access/")
	path = strings.Trim(path, "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	principalID := parts[0]

	switch len(parts) {
	case 1:
		a.handleAccessMap(w, r, principalID)
	case 2:
		switch parts[1] {
		case "evaluate":
			a.handleAccessEvaluate(w, r, principalID)
		case "provision":
			a.handleAccessProvision(w, r, principalID)
		default:
			a.handleAccessGrant(w, r, principalID, parts[1])
		}
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) handleAccessMap(w http.ResponseWriter, r *http.Request, principalID string) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := a.requireSelfOrSettings(w, r, principalID, access.LevelView); !ok {
			return
		}
		m, err := a.access.AccessMap(r.Context(), principalID)
		if err != nil {
			handleAccessError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"principal_id": principalID,
			"modules":      m,
		})

	case http.MethodPut:
		principal, ok := a.requireModule(w, r, access.ModuleSettings, access.LevelEdit)
		if !ok {
			return
		}
		var req replaceGrantsRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		grants := make([]access.Grant, 0, len(req.Grants))
		for _, g := range req.Grants {
			grants = append(grants, access.Grant{
				PrincipalID: principalID,
				Module:      g.Module,
				Level:       access.ParseLevel(g.Level),
				SubDomain:   g.SubDomain,
			})
		}
		if err := a.access.BulkReplace(r.Context(), principalID, grants); err != nil {
			handleAccessError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "access.grants.replace", map[string]any{
			"principal_id": principalID,
			"count":        len(grants),
			"actor":        principal.ID,
		})
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}

func (a *API) handleAccessEvaluate(w http.ResponseWriter, r *http.Request, principalID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := a.requireSelfOrSettings(w, r, principalID, access.LevelView)
	if !ok {
		return
	}
	module := strings.TrimSpace(r.URL.Query().Get("module"))
	if module == "" {
		writeError(w, r, http.StatusBadRequest, "module query parameter is required")
		return
	}

	subject := principal
	if subject.ID != principalID {
		// Evaluating someone else: their stored grants decide, not the
		// caller's role.
		subject = access.Principal{ID: principalID}
	}
	decision, err := a.access.EvaluateFor(r.Context(), subject, module)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"principal_id": principalID,
		"module":       module,
		"decision":     decision,
	})
}

func (a *API) handleAccessProvision(w http.ResponseWriter, r *http.Request, principalID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	principal, ok := a.requireModule(w, r, access.ModuleSettings, access.LevelEdit)
	if !ok {
		return
	}
	var req provisionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	role, okRole := access.ParseRole(req.Role)
	if !okRole {
		writeError(w, r, http.StatusBadRequest, "unknown role")
		return
	}
	if err := a.access.Provision(r.Context(), principalID, role); err != nil {
		handleAccessError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "access.provision", map[string]any{
		"principal_id": principalID,
		"role":         string(role),
		"actor":        principal.ID,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"principal_id": principalID,
		"role":         string(role),
		"provisioned":  true,
	})
}

func (a *API) handleAccessGrant(w http.ResponseWriter, r *http.Request, principalID, module string) {
	switch r.Method {
	case http.MethodPut:
		principal, ok := a.requireModule(w, r, access.ModuleSettings, access.LevelEdit)
		if !ok {
			return
		}
		var req grantRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		g := access.Grant{
			PrincipalID: principalID,
			Module:      module,
			Level:       access.ParseLevel(req.Level),
			SubDomain:   req.SubDomain,
		}
		if err := a.access.Upsert(r.Context(), g); err != nil {
			handleAccessError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "access.grant.upsert", map[string]any{
			"principal_id": principalID,
			"module":       module,
			"level":        string(g.Level),
			"actor":        principal.ID,
		})
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		principal, ok := a.requireModule(w, r, access.ModuleSettings, access.LevelDelete)
		if !ok {
			return
		}
		if err := a.access.Remove(r.Context(), principalID, module); err != nil {
			handleAccessError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "access.grant.remove", map[string]any{
			"principal_id": principalID,
			"module":       module,
			"actor":        principal.ID,
		})
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, r, http.MethodPut, http.MethodDelete)
	}
}

// requireSelfOrSettings lets principals read their own access data; anything
// else needs the settings module at the given level.
func (a *API) requireSelfOrSettings(w http.ResponseWriter, r *http.Request, principalID string, need access.Level) (access.Principal, bool) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return access.Principal{}, false
	}
	if principal.ID == principalID {
		return principal, true
	}
	return a.requireModule(w, r, access.ModuleSettings, need)
}
