// Package store reads and mutates the doctor and appointment collections.
//
// Every call reloads the whole collection from storage and every mutation
// writes the whole collection back. Reads degrade to an empty result when the
// collection cannot be loaded or decoded; writes always report failure.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"healthcare-booking-api/internal/logger"
	"healthcare-booking-api/internal/storage"
)

// load decodes the collection into a slice, returning an empty slice (never
// nil) when the collection is missing, unreadable or corrupt.
func load[T any](ctx context.Context, coll storage.Collection, log *logger.Logger, name string) []T {
	out := []T{}
	b, err := coll.Load(ctx)
	if err != nil {
		entry := log.WithComponent(ctx, "store").WithField("collection", name).WithError(err)
		if errors.Is(err, storage.ErrNotExist) {
			entry.Warn("collection missing, serving empty list")
		} else {
			entry.Error("reading collection failed, serving empty list")
		}
		return out
	}
	if err := json.Unmarshal(b, &out); err != nil {
		log.WithComponent(ctx, "store").WithField("collection", name).WithError(err).
			Error("decoding collection failed, serving empty list")
		return []T{}
	}
	if out == nil {
		out = []T{}
	}
	return out
}

func save[T any](ctx context.Context, coll storage.Collection, records []T) error {
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &StorageError{Op: "encode", Err: err}
	}
	if err := coll.Save(ctx, b); err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	return nil
}
