package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/Ramsey-B/bramble/pkg/pipeline"
)

// MappingCSV writes account_id,customer_id rows ordered by account id
type MappingCSV struct {
	name   string
	create func() (io.WriteCloser, error)
}

// NewMappingFile writes the mapping to path, replacing any existing file
func NewMappingFile(path string) *MappingCSV {
	return &MappingCSV{
		name:   path,
		create: func() (io.WriteCloser, error) { return os.Create(path) },
	}
}

// NewMappingWriter writes the mapping to w
func NewMappingWriter(w io.Writer) *MappingCSV {
	return &MappingCSV{
		name:   "writer",
		create: func() (io.WriteCloser, error) { return nopWriteCloser{w}, nil },
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func (m *MappingCSV) Name() string { return "csv" }

func (m *MappingCSV) Write(ctx context.Context, result *pipeline.Result) error {
	out, err := m.create()
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", m.name, err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write([]string{"account_id", "customer_id"}); err != nil {
		return err
	}
	for _, rec := range result.Records {
		if err := ctx.Err(); err != nil {
			return err
		}
		customerID, _ := result.Partition.CustomerID(rec.AccountID)
		if err := w.Write([]string{rec.AccountID, customerID}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", m.name, err)
	}
	return out.Close()
}
