package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"healthcare-booking-api/internal/store"
)

func (h *Handler) listDoctors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.DoctorFilter{
		Search:         q.Get("q"),
		Availability:   q.Get("availability"),
		Specialization: q.Get("specialization"),
	}
	if f == (store.DoctorFilter{}) {
		writeJSON(w, http.StatusOK, h.doctors.ListDoctors(r.Context()))
		return
	}
	writeJSON(w, http.StatusOK, h.doctors.FindDoctors(r.Context(), f))
}

func (h *Handler) listSpecializations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.doctors.Specializations(r.Context()))
}

func (h *Handler) getDoctor(w http.ResponseWriter, r *http.Request) {
	d, err := h.doctors.GetDoctor(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Doctor not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch doctor")
		return
	}
	writeJSON(w, http.StatusOK, d)
}
