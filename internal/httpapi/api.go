package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"edcore.org/internal/access"
	"edcore.org/internal/notify"
	"edcore.org/internal/obs"
)

// ReadyProbe reports whether backing services can take traffic.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer over the access and notification services.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	access       *access.Service
	orchestrator *notify.Orchestrator
	records      notify.RecordStore

	tokenTTL     time.Duration
	rateBurst    int
	ratePerSec   int
	maxBodyBytes int64
}

func New(rp ReadyProbe, version string, accessSvc *access.Service, orchestrator *notify.Orchestrator, records notify.RecordStore) *API {
	a := &API{
		mux:          http.NewServeMux(),
		readyProbe:   rp,
		version:      version,
		access:       accessSvc,
		orchestrator: orchestrator,
		records:      records,
		tokenTTL:     60 * time.Minute,
		rateBurst:    100,
		ratePerSec:   50,
		maxBodyBytes: 1 << 20,
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/v1/auth/token", a.handleAuthToken)
	a.mux.HandleFunc("/v1/access/", a.handleAccessScoped)
	a.mux.HandleFunc("/v1/notifications", a.handleNotificationList)
	a.mux.HandleFunc("/v1/notifications/dispatch", a.handleNotificationDispatch)
	a.mux.HandleFunc("/v1/notifications/read", a.handleNotificationRead)
	a.mux.HandleFunc("/v1/notifications/delete", a.handleNotificationDelete)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// SetLimits tunes rate limiting and body size; main wires these from config.
func (a *API) SetLimits(ratePerSec, rateBurst int, maxBodyBytes int64) {
	if ratePerSec > 0 {
		a.ratePerSec = ratePerSec
	}
	if rateBurst > 0 {
		a.rateBurst = rateBurst
	}
	if maxBodyBytes > 0 {
		a.maxBodyBytes = maxBodyBytes
	}
}

// SetTokenTTL overrides the issued token lifetime.
func (a *API) SetTokenTTL(ttl time.Duration) {
	if ttl > 0 {
		a.tokenTTL = ttl
	}
}

// Handler assembles the middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, a.maxBodyBytes)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- base handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "edcore-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		obs.SetReady(false)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "edcore-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}
