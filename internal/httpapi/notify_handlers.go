package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"edcore.org/internal/access"
	"edcore.org/internal/audit"
	"edcore.org/internal/auth"
	"edcore.org/internal/notify"
)

type dispatchRequest struct {
	Type      string `json:"type"`
	SchoolID  string `json:"school_id"`
	Class     string `json:"class"`
	Section   string `json:"section"`
	Date      string `json:"date"`
	Period    string `json:"period"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Priority  string `json:"priority"`
	ActionURL string `json:"action_url"`
}

type markReadRequest struct {
	IDs []string `json:"ids"`
	All bool     `json:"all"`
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}

func (a *API) handleNotificationDispatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if a.orchestrator == nil {
		writeError(w, r, http.StatusServiceUnavailable, "notification service unavailable")
		return
	}
	principal, ok := a.requireModule(w, r, access.ModuleNotifications, access.LevelEdit)
	if !ok {
		return
	}

	var req dispatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	ev, err := eventFromRequest(req, principal)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := a.orchestrator.Dispatch(r.Context(), ev)
	if err != nil {
		if errors.Is(err, notify.ErrInvalidEvent) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, r, http.StatusInternalServerError, "dispatch failed")
		return
	}
	_ = audit.LogEvent(r.Context(), "notify.dispatch", map[string]any{
		"type":      string(ev.Type),
		"school_id": ev.SchoolID,
		"total":     summary.Total,
		"sms_sent":  summary.SMSSent,
		"app_sent":  summary.AppSent,
	})
	writeJSON(w, http.StatusOK, summary)
}

func eventFromRequest(req dispatchRequest, principal access.Principal) (notify.Event, error) {
	typ := notify.Type(strings.TrimSpace(strings.ToLower(req.Type)))
	if typ == "" {
		return notify.Event{}, errors.New("type is required")
	}
	schoolID := strings.TrimSpace(req.SchoolID)
	if schoolID == "" {
		// Scoped roles fall back to their own school.
		schoolID = principal.SchoolID
	}
	if schoolID == "" {
		return notify.Event{}, errors.New("school_id is required")
	}
	ev := notify.Event{
		Type:      typ,
		SchoolID:  schoolID,
		Class:     strings.TrimSpace(req.Class),
		Section:   strings.TrimSpace(req.Section),
		Period:    strings.TrimSpace(req.Period),
		Title:     strings.TrimSpace(req.Title),
		Message:   strings.TrimSpace(req.Message),
		Priority:  notify.Priority(strings.TrimSpace(req.Priority)),
		ActionURL: strings.TrimSpace(req.ActionURL),
	}
	if raw := strings.TrimSpace(req.Date); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return notify.Event{}, errors.New("date must be YYYY-MM-DD")
		}
		ev.Date = date
	}
	return ev, nil
}

func (a *API) handleNotificationList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if a.records == nil {
		writeError(w, r, http.StatusServiceUnavailable, "notification store unavailable")
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	opts := notify.ListOptions{}
	if v := r.URL.Query().Get("unread"); v != "" {
		unread, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "unread must be a boolean")
			return
		}
		opts.UnreadOnly = unread
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, r, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		opts.Limit = limit
	}

	records, err := a.records.List(r.Context(), principal.ID, opts)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "list failed")
		return
	}
	if records == nil {
		records = []notify.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": records,
		"count":         len(records),
	})
}

func (a *API) handleNotificationRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if a.records == nil {
		writeError(w, r, http.StatusServiceUnavailable, "notification store unavailable")
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var req markReadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.All {
		if err := a.records.MarkAllRead(r.Context(), principal.ID); err != nil {
			writeError(w, r, http.StatusInternalServerError, "mark read failed")
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	ids := cleanIDs(req.IDs)
	if len(ids) == 0 {
		writeError(w, r, http.StatusBadRequest, "ids or all is required")
		return
	}
	if err := a.records.MarkRead(r.Context(), ids); err != nil {
		writeError(w, r, http.StatusInternalServerError, "mark read failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleNotificationDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if a.records == nil {
		writeError(w, r, http.StatusServiceUnavailable, "notification store unavailable")
		return
	}
	if _, ok := auth.PrincipalFromContext(r.Context()); !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var req deleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	ids := cleanIDs(req.IDs)
	if len(ids) == 0 {
		writeError(w, r, http.StatusBadRequest, "ids is required")
		return
	}
	if err := a.records.Delete(r.Context(), ids); err != nil {
		writeError(w, r, http.StatusInternalServerError, "delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func cleanIDs(raw []string) []string {
	ids := make([]string, 0, len(raw))
	for _, id := range raw {
		id = strings.TrimSpace(id)
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
