package api

import (
	"net/http"
	"strings"

	"github.com/example/shipment-tracking/internal/api/middleware"
	"github.com/example/shipment-tracking/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	APIToken string
	Logger   *logger.Logger
}

func NewRouter(handlers *Handlers, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	token := middleware.RequireToken(cfg.APIToken)

	// Merchants
	merchants := token(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rest, ok := subPath(r.URL.Path, "/merchants")
		if !ok {
			notFound(w)
			return
		}
		if rest == "" {
			switch r.Method {
			case http.MethodGet:
				handlers.ListMerchants(w, r)
			case http.MethodPost:
				handlers.CreateMerchant(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
			return
		}

		segs := strings.Split(rest, "/")
		if len(segs) != 1 {
			notFound(w)
			return
		}
		id, ok := parseID(w, segs[0])
		if !ok {
			return
		}
		switch r.Method {
		case http.MethodGet:
			handlers.GetMerchant(w, r, id)
		case http.MethodDelete:
			handlers.DeleteMerchant(w, r, id)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodDelete)
		}
	}))
	mux.Handle("/merchants", merchants)
	mux.Handle("/merchants/", merchants)

	// Shipments
	shipments := token(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rest, ok := subPath(r.URL.Path, "/shipments")
		if !ok {
			notFound(w)
			return
		}
		if rest == "" {
			switch r.Method {
			case http.MethodGet:
				handlers.ListShipments(w, r)
			case http.MethodPost:
				handlers.CreateShipment(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
			return
		}

		segs := strings.Split(rest, "/")
		if len(segs) > 2 {
			notFound(w)
			return
		}
		if len(segs) == 2 && segs[1] != "full" && segs[1] != "events" {
			notFound(w)
			return
		}
		id, ok := parseID(w, segs[0])
		if !ok {
			return
		}

		switch {
		case len(segs) == 1:
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			handlers.GetShipment(w, r, id)
		case segs[1] == "full":
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			handlers.GetShipmentFull(w, r, id)
		default:
			switch r.Method {
			case http.MethodGet:
				handlers.ListShipmentEvents(w, r, id)
			case http.MethodPost:
				handlers.AppendShipmentEvent(w, r, id)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}
	}))
	mux.Handle("/shipments", shipments)
	mux.Handle("/shipments/", shipments)

	// Health
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		handlers.Health(w, r)
	})

	// Metrics
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		notFound(w)
	})

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return middleware.Logging(log)(mux)
}

// subPath returns the part of path after prefix with surrounding slashes trimmed.
func subPath(path, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(path, prefix)
	if !ok || (rest != "" && rest[0] != '/') {
		return "", false
	}
	return strings.Trim(rest, "/"), true
}

func parseID(w http.ResponseWriter, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(w, "invalid id "+raw, http.StatusUnprocessableEntity)
		return uuid.Nil, false
	}
	return id, true
}

func notFound(w http.ResponseWriter) {
	respondError(w, "not found", http.StatusNotFound)
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	respondError(w, "method not allowed", http.StatusMethodNotAllowed)
}
