package store

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"healthcare-booking-api/internal/logger"
	"healthcare-booking-api/internal/model"
	"healthcare-booking-api/internal/storage"
)

// createdAtLayout matches JavaScript's Date.toISOString.
const createdAtLayout = "2006-01-02T15:04:05.000Z"

// Booking is the input of CreateAppointment. Values are taken as given:
// a field is missing only when it is the empty string.
type Booking struct {
	Doctor   string `json:"doctor" validate:"required"`
	Patient  string `json:"patient" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Datetime string `json:"datetime" validate:"required"`
}

// AppointmentStore owns the appointment collection.
//
// Mutations are read-modify-write over the entire collection with no locking
// and no version check. Two concurrent writers can both load the same
// collection and the later Save silently discards the earlier change. Ids are
// derived from the creation time in milliseconds, so two bookings in the same
// millisecond get the same id.
type AppointmentStore struct {
	coll     storage.Collection
	log      *logger.Logger
	now      func() time.Time
	validate *validator.Validate
}

type Option func(*AppointmentStore)

// WithClock replaces time.Now as the source of ids and creation stamps.
func WithClock(now func() time.Time) Option {
	return func(s *AppointmentStore) { s.now = now }
}

func NewAppointmentStore(coll storage.Collection, log *logger.Logger, opts ...Option) *AppointmentStore {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	s := &AppointmentStore{coll: coll, log: log, now: time.Now, validate: v}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ListAppointments returns the stored appointments in append order.
func (s *AppointmentStore) ListAppointments(ctx context.Context) []model.Appointment {
	return load[model.Appointment](ctx, s.coll, s.log, storage.Appointments)
}

func (s *AppointmentStore) CreateAppointment(ctx context.Context, b Booking) (*model.Appointment, error) {
	if err := s.check(b); err != nil {
		return nil, err
	}

	records := s.records(ctx)

	now := s.now().UTC()
	a := model.Appointment{
		ID:        model.StringID(strconv.FormatInt(now.UnixMilli(), 10)),
		Doctor:    b.Doctor,
		Patient:   b.Patient,
		Email:     b.Email,
		Datetime:  b.Datetime,
		CreatedAt: now.Format(createdAtLayout),
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, &StorageError{Op: "encode", Err: err}
	}
	records = append(records, raw)

	if err := save(ctx, s.coll, records); err != nil {
		s.log.WithComponent(ctx, "store").WithError(err).Error("writing appointments failed")
		return nil, err
	}
	return &a, nil
}

// DeleteAppointment removes the appointment whose id is exactly id.
func (s *AppointmentStore) DeleteAppointment(ctx context.Context, id string) error {
	records := s.records(ctx)

	idx := -1
	for i, raw := range records {
		var ref recordID
		if json.Unmarshal(raw, &ref) != nil || ref.ID.IsZero() {
			continue
		}
		if ref.ID.Matches(id) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrNotFound
	}
	records = append(records[:idx], records[idx+1:]...)

	if err := save(ctx, s.coll, records); err != nil {
		s.log.WithComponent(ctx, "store").WithError(err).Error("writing appointments failed")
		return err
	}
	return nil
}

// recordID is the only part of a stored appointment that mutations inspect.
type recordID struct {
	ID model.ID `json:"id"`
}

// records loads the collection for a rewrite. Records stay raw so fields
// this service does not model survive unchanged.
func (s *AppointmentStore) records(ctx context.Context) []json.RawMessage {
	return load[json.RawMessage](ctx, s.coll, s.log, storage.Appointments)
}

func (s *AppointmentStore) check(b Booking) error {
	err := s.validate.Struct(b)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return err
	}
	missing := make([]string, 0, len(fields))
	for _, f := range fields {
		missing = append(missing, f.Field())
	}
	return &ValidationError{Missing: missing}
}
