// Package source provides record iterators the pipeline reads accounts from
package source

import (
	"context"

	"github.com/Ramsey-B/bramble/pkg/models"
)

// Source streams raw account records to fn. Returning an error from fn stops the read.
type Source interface {
	Name() string
	Read(ctx context.Context, fn func(models.RawRecord) error) error
}

// ReadAll collects every record of src
func ReadAll(ctx context.Context, src Source) ([]models.RawRecord, error) {
	var records []models.RawRecord
	err := src.Read(ctx, func(r models.RawRecord) error {
		records = append(records, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Slice is an in-memory source
type Slice struct {
	records []models.RawRecord
}

func NewSlice(records []models.RawRecord) *Slice {
	return &Slice{records: records}
}

func (s *Slice) Name() string { return "memory" }

func (s *Slice) Read(ctx context.Context, fn func(models.RawRecord) error) error {
	for _, r := range s.records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

// optional turns a blank value into nil
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
