// Package storage persists whole collections as opaque blobs. A collection is
// always loaded and saved in full; backends never see individual records.
package storage

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Load when the collection has never been saved.
var ErrNotExist = errors.New("collection does not exist")

// Collection is one named, durably stored blob.
type Collection interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Names of the collections the service keeps.
const (
	Doctors      = "doctors"
	Appointments = "appointments"
)
