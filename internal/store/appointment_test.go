package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthcare-booking-api/internal/logger"
	"healthcare-booking-api/internal/model"
	"healthcare-booking-api/internal/storage"
	"healthcare-booking-api/internal/store"
)

// stepClock advances one millisecond per call so ids stay distinct.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur := t
		t = t.Add(time.Millisecond)
		return cur
	}
}

var t0 = time.Date(2024, 1, 1, 9, 30, 0, 123_000_000, time.UTC)

func newAppointmentStore(t *testing.T, initial []byte) (*store.AppointmentStore, *storage.Memory) {
	t.Helper()
	mem := storage.NewMemory(initial)
	return store.NewAppointmentStore(mem, logger.Discard(), store.WithClock(stepClock(t0))), mem
}

var janeBooking = store.Booking{
	Doctor:   "Dr. A",
	Patient:  "Jane Doe",
	Email:    "jane@example.com",
	Datetime: "2024-01-01T10:00:00Z",
}

func TestCreateAppointmentOnEmptyCollection(t *testing.T) {
	s, _ := newAppointmentStore(t, []byte(`[]`))
	ctx := context.Background()

	a, err := s.CreateAppointment(ctx, janeBooking)
	require.NoError(t, err)

	assert.Equal(t, "1704101400123", a.ID.String())
	assert.Equal(t, "Dr. A", a.Doctor)
	assert.Equal(t, "Jane Doe", a.Patient)
	assert.Equal(t, "jane@example.com", a.Email)
	assert.Equal(t, "2024-01-01T10:00:00Z", a.Datetime)
	assert.Equal(t, "2024-01-01T09:30:00.123Z", a.CreatedAt)

	list := s.ListAppointments(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, *a, list[0])
}

func TestCreateAppointmentWithoutExistingCollection(t *testing.T) {
	s, mem := newAppointmentStore(t, nil)

	_, err := s.CreateAppointment(context.Background(), janeBooking)
	require.NoError(t, err)
	assert.NotNil(t, mem.Bytes())
	assert.Len(t, s.ListAppointments(context.Background()), 1)
}

func TestCreateAppointmentAppendsInOrder(t *testing.T) {
	s, _ := newAppointmentStore(t, []byte(`[]`))
	ctx := context.Background()

	var ids []string
	for _, p := range []string{"Ann", "Ben", "Cy"} {
		b := janeBooking
		b.Patient = p
		a, err := s.CreateAppointment(ctx, b)
		require.NoError(t, err)
		ids = append(ids, a.ID.String())
	}

	list := s.ListAppointments(ctx)
	require.Len(t, list, 3)
	for i, a := range list {
		assert.Equal(t, ids[i], a.ID.String())
	}
	assert.Equal(t, "Cy", list[2].Patient)
}

func TestCreateAppointmentPersistsReadableJSON(t *testing.T) {
	s, mem := newAppointmentStore(t, []byte(`[]`))
	_, err := s.CreateAppointment(context.Background(), janeBooking)
	require.NoError(t, err)

	raw := string(mem.Bytes())
	assert.Contains(t, raw, "\n  {\n    \"id\": \"1704101400123\",")

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(mem.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.ElementsMatch(t,
		[]string{"id", "doctor", "patient", "email", "datetime", "createdAt"},
		keys(decoded[0]))
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestCreateAppointmentValidation(t *testing.T) {
	tests := []struct {
		name    string
		booking store.Booking
		missing []string
	}{
		{"no doctor", store.Booking{Patient: "p", Email: "e", Datetime: "d"}, []string{"doctor"}},
		{"no patient", store.Booking{Doctor: "d", Email: "e", Datetime: "d"}, []string{"patient"}},
		{"no email", store.Booking{Doctor: "d", Patient: "p", Datetime: "d"}, []string{"email"}},
		{"no datetime", store.Booking{Doctor: "d", Patient: "p", Email: "e"}, []string{"datetime"}},
		{"empty", store.Booking{}, []string{"doctor", "patient", "email", "datetime"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := []byte(`[{"id":"1","doctor":"x","patient":"y","email":"z","datetime":"w","createdAt":"v"}]`)
			s, mem := newAppointmentStore(t, before)

			_, err := s.CreateAppointment(context.Background(), tt.booking)
			var ve *store.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.missing, ve.Missing)
			assert.Equal(t, before, mem.Bytes())
			assert.Zero(t, mem.Saves())
		})
	}
}

func TestCreateAppointmentAcceptsWhitespace(t *testing.T) {
	s, _ := newAppointmentStore(t, []byte(`[]`))
	b := janeBooking
	b.Patient = " "
	_, err := s.CreateAppointment(context.Background(), b)
	assert.NoError(t, err)
}

func TestCreateAppointmentStorageFailure(t *testing.T) {
	s, mem := newAppointmentStore(t, []byte(`[]`))
	mem.SaveErr = errors.New("disk full")

	a, err := s.CreateAppointment(context.Background(), janeBooking)
	assert.Nil(t, a)
	var se *store.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "save", se.Op)
	assert.ErrorIs(t, err, mem.SaveErr)
	assert.Equal(t, `[]`, string(mem.Bytes()))
}

func TestCreateThenDeleteRestoresCollection(t *testing.T) {
	initial := []model.Appointment{{
		ID: model.StringID("1700000000000"), Doctor: "Dr. B", Patient: "Sam",
		Email: "sam@example.com", Datetime: "2024-02-02T09:00:00Z", CreatedAt: "2023-11-14T22:13:20.000Z",
	}}
	raw, err := json.Marshal(initial)
	require.NoError(t, err)

	s, _ := newAppointmentStore(t, raw)
	ctx := context.Background()

	a, err := s.CreateAppointment(ctx, janeBooking)
	require.NoError(t, err)
	require.Len(t, s.ListAppointments(ctx), 2)

	require.NoError(t, s.DeleteAppointment(ctx, a.ID.String()))
	assert.Equal(t, initial, s.ListAppointments(ctx))
}

// legacySeed is laid out the way the store writes collections, with a record
// carrying a non-string field and a key the model does not know.
const legacySeed = "[\n" +
	"  {\n" +
	"    \"id\": \"1\",\n" +
	"    \"doctor\": 5,\n" +
	"    \"patient\": \"Old\",\n" +
	"    \"room\": \"B2\"\n" +
	"  }\n" +
	"]"

func TestCreateThenDeleteKeepsForeignRecordsVerbatim(t *testing.T) {
	s, mem := newAppointmentStore(t, []byte(legacySeed))
	ctx := context.Background()

	a, err := s.CreateAppointment(ctx, janeBooking)
	require.NoError(t, err)

	var stored []json.RawMessage
	require.NoError(t, json.Unmarshal(mem.Bytes(), &stored))
	require.Len(t, stored, 2)
	assert.JSONEq(t, `{"id":"1","doctor":5,"patient":"Old","room":"B2"}`, string(stored[0]))

	require.NoError(t, s.DeleteAppointment(ctx, a.ID.String()))
	assert.Equal(t, legacySeed, string(mem.Bytes()))
}

func TestDeleteAppointmentLeavesOtherRecordsUntouched(t *testing.T) {
	s, mem := newAppointmentStore(t, []byte(`[{"id":null,"patient":"x"},{"id":"2","patient":"y"},"stray"]`))

	require.NoError(t, s.DeleteAppointment(context.Background(), "2"))

	var stored []json.RawMessage
	require.NoError(t, json.Unmarshal(mem.Bytes(), &stored))
	require.Len(t, stored, 2)
	assert.JSONEq(t, `{"id":null,"patient":"x"}`, string(stored[0]))
	assert.JSONEq(t, `"stray"`, string(stored[1]))
}

func TestDeleteAppointmentSkipsRecordsWithoutID(t *testing.T) {
	before := []byte(`[{"patient":"x"},{"id":null}]`)
	s, mem := newAppointmentStore(t, before)

	assert.ErrorIs(t, s.DeleteAppointment(context.Background(), ""), store.ErrNotFound)
	assert.Zero(t, mem.Saves())
}

func TestDeleteAppointmentNotFound(t *testing.T) {
	before := []byte(`[{"id":"1","doctor":"x","patient":"y","email":"z","datetime":"w","createdAt":"v"}]`)
	s, mem := newAppointmentStore(t, before)

	err := s.DeleteAppointment(context.Background(), "2")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, before, mem.Bytes())
	assert.Zero(t, mem.Saves())
}

func TestDeleteAppointmentRemovesOnlyFirstMatch(t *testing.T) {
	s, _ := newAppointmentStore(t, []byte(`[
		{"id":"5","patient":"first"},
		{"id":"6","patient":"other"},
		{"id":"5","patient":"duplicate"}
	]`))
	ctx := context.Background()

	require.NoError(t, s.DeleteAppointment(ctx, "5"))
	list := s.ListAppointments(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, "other", list[0].Patient)
	assert.Equal(t, "duplicate", list[1].Patient)
}

func TestDeleteAppointmentStorageFailure(t *testing.T) {
	s, mem := newAppointmentStore(t, []byte(`[{"id":"1"}]`))
	mem.SaveErr = errors.New("read-only")

	err := s.DeleteAppointment(context.Background(), "1")
	var se *store.StorageError
	assert.ErrorAs(t, err, &se)
	assert.Len(t, s.ListAppointments(context.Background()), 1)
}

func TestListAppointmentsDegradesToEmpty(t *testing.T) {
	tests := []struct {
		name string
		mem  func() *storage.Memory
	}{
		{"missing", func() *storage.Memory { return storage.NewMemory(nil) }},
		{"corrupt", func() *storage.Memory { return storage.NewMemory([]byte(`{not json`)) }},
		{"wrong shape", func() *storage.Memory { return storage.NewMemory([]byte(`{"id":"1"}`)) }},
		{"null", func() *storage.Memory { return storage.NewMemory([]byte(`null`)) }},
		{"unreadable", func() *storage.Memory {
			m := storage.NewMemory([]byte(`[]`))
			m.LoadErr = errors.New("io")
			return m
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := store.NewAppointmentStore(tt.mem(), logger.Discard())
			list := s.ListAppointments(context.Background())
			assert.NotNil(t, list)
			assert.Empty(t, list)
		})
	}
}

// Both writers read the collection before either saves; the second save
// replaces the first one's append.
func TestConcurrentCreateIsLastWriteWins(t *testing.T) {
	snapshot := []byte(`[]`)
	stale := &staleReads{Memory: storage.NewMemory(snapshot), snapshot: snapshot}
	s := store.NewAppointmentStore(stale, logger.Discard(), store.WithClock(stepClock(t0)))
	ctx := context.Background()

	first, err := s.CreateAppointment(ctx, janeBooking)
	require.NoError(t, err)
	b := janeBooking
	b.Patient = "John Roe"
	second, err := s.CreateAppointment(ctx, b)
	require.NoError(t, err)

	var stored []model.Appointment
	require.NoError(t, json.Unmarshal(stale.Bytes(), &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, second.ID, stored[0].ID)
	assert.NotEqual(t, first.ID, stored[0].ID)
}

// staleReads always loads the same snapshot, as if every reader raced ahead
// of every writer.
type staleReads struct {
	*storage.Memory
	snapshot []byte
}

func (s *staleReads) Load(context.Context) ([]byte, error) {
	return append([]byte(nil), s.snapshot...), nil
}

func TestIDsCollideWithinOneMillisecond(t *testing.T) {
	fixed := func() time.Time { return t0 }
	s := store.NewAppointmentStore(storage.NewMemory(nil), logger.Discard(), store.WithClock(fixed))
	ctx := context.Background()

	a, err := s.CreateAppointment(ctx, janeBooking)
	require.NoError(t, err)
	b, err := s.CreateAppointment(ctx, janeBooking)
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
	assert.Len(t, s.ListAppointments(ctx), 2)
}
