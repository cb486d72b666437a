package store

import (
	"strings"

	"github.com/samber/lo"

	"healthcare-booking-api/internal/model"
)

// Sentinel filter values meaning "do not filter", as sent by the booking UI.
const (
	AnyAvailability   = "All"
	AnySpecialization = "All Specializations"
)

type DoctorFilter struct {
	// Search matches name or specialization, case-insensitively.
	Search         string
	Availability   string
	Specialization string
}

func (f DoctorFilter) Apply(doctors []model.Doctor) []model.Doctor {
	q := strings.ToLower(f.Search)
	out := lo.Filter(doctors, func(d model.Doctor, _ int) bool {
		if q != "" &&
			!strings.Contains(strings.ToLower(d.Name), q) &&
			!strings.Contains(strings.ToLower(d.Specialization), q) {
			return false
		}
		if f.Availability != "" && f.Availability != AnyAvailability && d.Availability != f.Availability {
			return false
		}
		if f.Specialization != "" && f.Specialization != AnySpecialization && d.Specialization != f.Specialization {
			return false
		}
		return true
	})
	if out == nil {
		out = []model.Doctor{}
	}
	return out
}

// Specializations returns the distinct specializations in first-seen order.
func Specializations(doctors []model.Doctor) []string {
	return lo.Uniq(lo.Map(doctors, func(d model.Doctor, _ int) string {
		return d.Specialization
	}))
}
