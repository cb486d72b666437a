package store

import (
	"context"

	"github.com/samber/lo"

	"healthcare-booking-api/internal/logger"
	"healthcare-booking-api/internal/model"
	"healthcare-booking-api/internal/storage"
)

// DoctorCatalog is a read-only view of the seeded doctor collection.
type DoctorCatalog struct {
	coll storage.Collection
	log  *logger.Logger
}

func NewDoctorCatalog(coll storage.Collection, log *logger.Logger) *DoctorCatalog {
	return &DoctorCatalog{coll: coll, log: log}
}

func (c *DoctorCatalog) ListDoctors(ctx context.Context) []model.Doctor {
	return load[model.Doctor](ctx, c.coll, c.log, storage.Doctors)
}

// GetDoctor returns the first doctor whose id, in its canonical text form,
// equals id. A doctor stored with the number 1 is found by "1".
func (c *DoctorCatalog) GetDoctor(ctx context.Context, id string) (*model.Doctor, error) {
	d, ok := lo.Find(c.ListDoctors(ctx), func(d model.Doctor) bool {
		return d.ID.Matches(id)
	})
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

// FindDoctors lists the doctors that pass f, in stored order.
func (c *DoctorCatalog) FindDoctors(ctx context.Context, f DoctorFilter) []model.Doctor {
	return f.Apply(c.ListDoctors(ctx))
}

func (c *DoctorCatalog) Specializations(ctx context.Context) []string {
	return Specializations(c.ListDoctors(ctx))
}
