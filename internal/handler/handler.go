package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"healthcare-booking-api/internal/logger"
	"healthcare-booking-api/internal/middleware"
	"healthcare-booking-api/internal/notify"
	"healthcare-booking-api/internal/store"
)

const publishTimeout = 5 * time.Second

type Handler struct {
	doctors      *store.DoctorCatalog
	appointments *store.AppointmentStore
	events       notify.Publisher
	log          *logger.Logger
	now          func() time.Time
}

func New(doctors *store.DoctorCatalog, appointments *store.AppointmentStore, events notify.Publisher, log *logger.Logger) *Handler {
	if events == nil {
		events = notify.Nop{}
	}
	return &Handler{
		doctors:      doctors,
		appointments: appointments,
		events:       events,
		log:          log,
		now:          time.Now,
	}
}

// Options configures the cross-cutting parts of the router. Zero values
// disable the corresponding feature.
type Options struct {
	Limiter    *middleware.RateLimiter
	Metrics    *middleware.Metrics
	Gatherer   prometheus.Gatherer
	CORSOrigin string
}

func (h *Handler) Router(o Options) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	r.Use(middleware.MatchedRoute)

	r.HandleFunc("/", h.index).Methods(http.MethodGet)
	r.HandleFunc("/api/health", h.health).Methods(http.MethodGet)
	if o.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(o.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/doctors", h.listDoctors).Methods(http.MethodGet)
	api.HandleFunc("/doctors/specializations", h.listSpecializations).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}", h.getDoctor).Methods(http.MethodGet)

	apts := api.PathPrefix("/appointments").Subrouter()
	if o.Limiter != nil {
		apts.Use(o.Limiter.Limit(http.MethodPost, http.MethodDelete))
	}
	apts.HandleFunc("", h.listAppointments).Methods(http.MethodGet)
	apts.HandleFunc("", h.createAppointment).Methods(http.MethodPost)
	apts.HandleFunc("/{id}", h.deleteAppointment).Methods(http.MethodDelete)

	// mux skips Use middleware for unmatched requests, so logging wraps the router
	return middleware.RequestID(middleware.AccessLog(h.log, o.Metrics)(middleware.CORS(o.CORSOrigin)(r)))
}

func (h *Handler) index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Healthcare Booking API",
		"endpoints": map[string]string{
			"health":       "/api/health",
			"doctors":      "/api/doctors",
			"appointments": "/api/appointments",
		},
	})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "Healthcare Booking API is running!",
		"timestamp": h.now().UTC().Format("2006-01-02T15:04:05.000Z"),
	})
}

// publish reports a persisted change. Failures are logged only: the change
// is already durable and the client must not see it as failed.
func (h *Handler) publish(ctx context.Context, e notify.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := h.events.Publish(ctx, e); err != nil {
		h.log.WithComponent(ctx, "handler").WithError(err).
			WithField("event", e.Type).
			WithField("appointment_id", e.AppointmentID).
			Warn("publishing booking event failed")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
