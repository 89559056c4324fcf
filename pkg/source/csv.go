package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/bramble/pkg/models"
)

// CSV column names
const (
	ColumnAccountID = "account_id"
	ColumnFirstName = "first_name"
	ColumnLastName  = "last_name"
	ColumnDOB       = "dob"
	ColumnEmail     = "email"
	ColumnPhone     = "phone"
	ColumnAddress   = "address"
	ColumnGovID     = "gov_id"
)

// CSV reads records from a header-prefixed CSV stream. Only account_id is a required
// column; missing optional columns read as blank.
type CSV struct {
	logger ectologger.Logger
	name   string
	open   func() (io.ReadCloser, error)
}

// NewCSVFile reads records from the CSV file at path
func NewCSVFile(logger ectologger.Logger, path string) *CSV {
	return &CSV{
		logger: logger,
		name:   path,
		open:   func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// NewCSVReader reads records from r. The reader can be consumed once.
func NewCSVReader(logger ectologger.Logger, name string, r io.Reader) *CSV {
	return &CSV{
		logger: logger,
		name:   name,
		open:   func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
	}
}

func (c *CSV) Name() string { return c.name }

func (c *CSV) Read(ctx context.Context, fn func(models.RawRecord) error) error {
	rc, err := c.open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.name, err)
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = false

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", c.name, err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := columns[ColumnAccountID]; !ok {
		return fmt.Errorf("%s has no %s column", c.name, ColumnAccountID)
	}

	log := c.logger.WithContext(ctx).WithField("source", c.name)
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("failed to read %s line %d: %w", c.name, line, err)
		}

		field := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		record := models.RawRecord{
			AccountID: strings.TrimSpace(field(ColumnAccountID)),
			FirstName: field(ColumnFirstName),
			LastName:  field(ColumnLastName),
			DOB:       optional(strings.TrimSpace(field(ColumnDOB))),
			Email:     field(ColumnEmail),
			Phone:     field(ColumnPhone),
			Address:   field(ColumnAddress),
			GovID:     optional(strings.TrimSpace(field(ColumnGovID))),
		}
		if record.AccountID == "" {
			log.WithField("line", line).Warn("Skipping row without account id")
			continue
		}

		if err := fn(record); err != nil {
			return err
		}
	}
}
