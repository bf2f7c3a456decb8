// Package ingest is the catalog bulk-load boundary.
// It decodes raw JSON records, drops invalid ones, normalizes the rest and hands them to the store.
package ingest

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tariff-duty/core/catalog"
	"tariff-duty/core/tariff"
	"tariff-duty/internal/errors"
	"tariff-duty/internal/logging"
)

// DefaultCategory labels records that arrive without a category
const DefaultCategory = "Не указана"

// Record is a raw catalog record as submitted
type Record struct {
	Code     string           `json:"code"`
	Name     string           `json:"name"`
	Section  string           `json:"section,omitempty"`
	Keywords []string         `json:"keywords,omitempty"`
	Category string           `json:"category,omitempty"`
	DutyRate *decimal.Decimal `json:"dutyRate,omitempty"`
	VATRate  *decimal.Decimal `json:"vatRate,omitempty"`
	Notes    string           `json:"notes,omitempty"`
}

// Valid reports whether the record has a name and a ten-digit code
func (r Record) Valid() bool {
	return strings.TrimSpace(r.Code) != "" &&
		strings.TrimSpace(r.Name) != "" &&
		tariff.IsFullCode(r.Code)
}

// Entry converts a valid record into a normalized catalog entry with defaults filled in
func (r Record) Entry() catalog.Entry {
	return withDefaults(r.partial())
}

// partial converts the record without filling absent fields
func (r Record) partial() catalog.Entry {
	return catalog.Entry{
		Code:     tariff.Normalize(r.Code),
		Name:     r.Name,
		Section:  r.Section,
		Keywords: r.Keywords,
		Category: r.Category,
		DutyRate: r.DutyRate,
		VATRate:  r.VATRate,
		Notes:    r.Notes,
	}
}

func withDefaults(e catalog.Entry) catalog.Entry {
	if e.Keywords == nil {
		e.Keywords = []string{}
	}
	if e.Category == "" {
		e.Category = DefaultCategory
	}
	if e.Section == "" {
		e.Section = tariff.SectionOf(e.Code)
	}
	return e
}

// Report counts the outcome of a bulk load
type Report struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Total    int `json:"total"`
}

// Loader receives accepted entries
type Loader interface {
	Load(entries []catalog.Entry)
}

// Upserter receives accepted entries one at a time
type Upserter interface {
	FindByCode(code string) (catalog.Entry, bool)
	Upsert(entry catalog.Entry) bool
}

// Decode reads a JSON array of records or a single record object.
// Records that fail to decode or validate are counted as rejected.
func Decode(r io.Reader) ([]catalog.Entry, Report, error) {
	records, report, err := decodeRecords(r)
	if err != nil {
		return nil, report, err
	}
	entries := make([]catalog.Entry, len(records))
	for i, rec := range records {
		entries[i] = rec.Entry()
	}
	return entries, report, nil
}

func decodeRecords(r io.Reader) ([]Record, Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, Report{}, errors.Internal("failed to read catalog data", err)
	}

	raws, err := split(data)
	if err != nil {
		return nil, Report{}, err
	}

	records := make([]Record, 0, len(raws))
	report := Report{Total: len(raws)}
	for _, raw := range raws {
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil || !rec.Valid() {
			report.Rejected++
			continue
		}
		records = append(records, rec)
		report.Accepted++
	}
	return records, report, nil
}

func noValidRecords(report Report) error {
	return errors.Validation("file", "no valid tariff codes found").
		WithContext("rejected", report.Rejected)
}

func split(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.Validation("file", "catalog data is empty")
	}

	if trimmed[0] == '[' {
		var raws []json.RawMessage
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, errors.Parsing("failed to parse catalog JSON", err)
		}
		return raws, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, errors.Parsing("failed to parse catalog JSON", err)
	}
	return []json.RawMessage{json.RawMessage(trimmed)}, nil
}

// Load decodes records and replaces the catalog with the accepted ones.
// A batch with no valid records is a validation error and leaves the catalog untouched.
func Load(dst Loader, r io.Reader) (Report, error) {
	entries, report, err := Decode(r)
	if err != nil {
		return report, err
	}
	if report.Accepted == 0 {
		return report, noValidRecords(report)
	}

	dst.Load(entries)
	logging.Info("catalog loaded",
		zap.Int("accepted", report.Accepted),
		zap.Int("rejected", report.Rejected))
	return report, nil
}

// Merge decodes records and upserts the accepted ones into the catalog.
// Fields absent from a record keep their stored values; defaults apply only to new codes.
// A batch with no valid records is a validation error and leaves the catalog untouched.
func Merge(dst Upserter, r io.Reader) (Report, error) {
	records, report, err := decodeRecords(r)
	if err != nil {
		return report, err
	}
	if report.Accepted == 0 {
		return report, noValidRecords(report)
	}

	inserted := 0
	for _, rec := range records {
		e := rec.partial()
		if _, ok := dst.FindByCode(e.Code); !ok {
			e = withDefaults(e)
		}
		if dst.Upsert(e) {
			inserted++
		}
	}
	logging.Info("catalog merged",
		zap.Int("accepted", report.Accepted),
		zap.Int("inserted", inserted),
		zap.Int("rejected", report.Rejected))
	return report, nil
}

// LoadFile loads a catalog JSON file
func LoadFile(dst Loader, path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, errors.Config("failed to open catalog file", err).WithContext("path", path)
	}
	defer f.Close()
	return Load(dst, f)
}
