package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"assetd/internal/residency"
	"assetd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Status() types.StatusResponse
	MarkUsed(id residency.AssetID)
	SetResidencyPriority(id residency.AssetID, prio int) bool
	Activate(id residency.AssetID) error
	Ready() bool
}

// NewMux builds the router: health, status, asset control, metrics.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(corsMiddleware())
	}
	r.Use(MetricsMiddleware)
	r.Use(RequestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if !svc.Ready() {
			writeJSONError(w, http.StatusServiceUnavailable, "no instantiator bound")
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	})

	r.Get("/assets", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		st := svc.Status()
		if err := json.NewEncoder(w).Encode(map[string]any{"assets": st.Assets}); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	})

	r.Post("/assets/{id}/priority", func(w http.ResponseWriter, r *http.Request) {
		id, ok := assetIDParam(w, r)
		if !ok {
			return
		}
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.PriorityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		prio := req.Priority
		if req.Persistent {
			prio = residency.PriorityPersistent
		}
		if !svc.SetResidencyPriority(id, prio) {
			writeJSONError(w, http.StatusNotFound, residency.ErrUnknownAsset(id).Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/assets/{id}/used", func(w http.ResponseWriter, r *http.Request) {
		id, ok := assetIDParam(w, r)
		if !ok {
			return
		}
		// Fire-and-forget by contract; unknown ids are tolerated.
		svc.MarkUsed(id)
		w.WriteHeader(http.StatusAccepted)
	})

	r.Post("/assets/{id}/activate", func(w http.ResponseWriter, r *http.Request) {
		id, ok := assetIDParam(w, r)
		if !ok {
			return
		}
		if err := svc.Activate(id); err != nil {
			switch {
			case residency.IsUnknownAsset(err):
				writeJSONError(w, http.StatusNotFound, err.Error())
			case residency.IsNoInstantiator(err):
				writeJSONError(w, http.StatusServiceUnavailable, err.Error())
			default:
				writeJSONError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

func assetIDParam(w http.ResponseWriter, r *http.Request) (residency.AssetID, bool) {
	raw := chi.URLParam(r, "id")
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid asset id")
		return 0, false
	}
	return residency.AssetID(n), true
}
