package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/gorilla/mux"

	"healthcare-booking-api/internal/notify"
	"healthcare-booking-api/internal/store"
)

const (
	maxBodyBytes   = 1 << 20
	missingMessage = "Missing required fields: doctor, patient, email, datetime"
)

func (h *Handler) listAppointments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.appointments.ListAppointments(r.Context()))
}

func (h *Handler) createAppointment(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBooking(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	apt, err := h.appointments.CreateAppointment(r.Context(), b)
	var invalid *store.ValidationError
	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   missingMessage,
			"missing": invalid.Missing,
		})
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to create appointment")
		return
	}

	h.publish(r.Context(), notify.Event{
		Type:          notify.AppointmentCreated,
		AppointmentID: apt.ID.String(),
		Appointment:   apt,
		At:            h.now().UTC(),
	})
	writeJSON(w, http.StatusCreated, apt)
}

func (h *Handler) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	err := h.appointments.DeleteAppointment(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Appointment not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete appointment")
		return
	}

	h.publish(r.Context(), notify.Event{
		Type:          notify.AppointmentDeleted,
		AppointmentID: id,
		At:            h.now().UTC(),
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Appointment deleted successfully"})
}

// decodeBooking accepts a JSON body or an urlencoded form.
func decodeBooking(w http.ResponseWriter, r *http.Request) (store.Booking, error) {
	var b store.Booking
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return b, err
		}
		b.Doctor = r.PostForm.Get("doctor")
		b.Patient = r.PostForm.Get("patient")
		b.Email = r.PostForm.Get("email")
		b.Datetime = r.PostForm.Get("datetime")
		return b, nil
	}

	// an empty body is a booking with every field missing
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil && !errors.Is(err, io.EOF) {
		return b, err
	}
	return b, nil
}
