// Package importer converts flat spreadsheet-style records into a cost
// schedule. Parsing the source file format is the caller's concern; the
// importer consumes decoded records and builds the chapter hierarchy from
// classification code prefixes.
package importer

import (
	"encoding/json"
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/alexanderramin/bouwkost/internal/domain"
)

// Record is one flat import row. Kind is inferred: a record with a
// quantity or unit price becomes a cost item, a record with only a code
// becomes a chapter, and a record with neither becomes a text line.
type Record struct {
	Code         string              `json:"code,omitempty"`
	SFBCode      string              `json:"sfb_code,omitempty"`
	Description  string              `json:"description"`
	Quantity     *decimal.Decimal    `json:"quantity,omitempty"`
	QuantityType domain.QuantityType `json:"quantity_type,omitempty"`
	UnitPrice    *decimal.Decimal    `json:"unit_price,omitempty"`
	ExternalRef  string              `json:"external_ref,omitempty"`
}

// Validate checks one record. Malformed classification codes are NOT an
// error here: they are stored and flagged during import so a document
// with provisional codes stays importable.
func (r Record) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Description, validation.Required),
		validation.Field(&r.QuantityType, validation.In(
			domain.QuantityCount, domain.QuantityLength, domain.QuantityArea,
			domain.QuantityVolume, domain.QuantityWeight, domain.QuantityTime,
		)),
	)
}

// ValidateRecords checks the whole record set and returns every error
// found, with record indexes, so a user can fix a sheet in one round
// trip.
func ValidateRecords(records []Record) []error {
	var errs []error
	refs := make(map[string]int)
	for i, r := range records {
		if err := r.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("record[%d]: %w", i, err))
		}
		if r.ExternalRef != "" {
			if first, dup := refs[r.ExternalRef]; dup {
				errs = append(errs, fmt.Errorf("record[%d]: external_ref %q already used by record[%d]", i, r.ExternalRef, first))
			} else {
				refs[r.ExternalRef] = i
			}
		}
	}
	return errs
}

// LoadRecords reads a JSON array of records from disk.
func LoadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return records, nil
}
