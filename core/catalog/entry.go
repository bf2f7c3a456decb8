// Package catalog - In-memory tariff-code catalog
// Holds the working set of codes and answers exact, category and free-text queries.
package catalog

import (
	"github.com/shopspring/decimal"

	"tariff-duty/core/tariff"
)

// Entry is a catalog record for a single tariff code
type Entry struct {
	// Code is the normalized ten-digit code
	Code string `json:"code"`

	// Name is the canonical product description
	Name string `json:"name"`

	// Section is the section label (I..XXI)
	Section string `json:"section"`

	// Keywords boost search relevance
	Keywords []string `json:"keywords"`

	// Category is a free-text grouping label
	Category string `json:"category"`

	// DutyRate is informational; authoritative rates live in the duty schedule
	DutyRate *decimal.Decimal `json:"dutyRate,omitempty"`

	// VATRate is informational
	VATRate *decimal.Decimal `json:"vatRate,omitempty"`

	// Notes is free text
	Notes string `json:"notes,omitempty"`
}

// Display returns the code in grouped display form
func (e Entry) Display() string {
	return tariff.Format(e.Code)
}

// Hierarchy returns the group/position/subsection views of the code
func (e Entry) Hierarchy() tariff.Hierarchy {
	return tariff.HierarchyOf(e.Code)
}

// Group returns digits 1-2
func (e Entry) Group() string { return e.Hierarchy().Group }

// Position returns digits 1-4
func (e Entry) Position() string { return e.Hierarchy().Position }

// Subsection returns digits 1-6
func (e Entry) Subsection() string { return e.Hierarchy().Subsection }

// Subsubsection returns all ten digits
func (e Entry) Subsubsection() string { return e.Hierarchy().Subsubsection }

// clone returns a copy that shares no mutable state with e
func (e Entry) clone() Entry {
	c := e
	c.Code = tariff.Normalize(e.Code)
	if e.Keywords != nil {
		c.Keywords = append([]string(nil), e.Keywords...)
	}
	if e.DutyRate != nil {
		d := *e.DutyRate
		c.DutyRate = &d
	}
	if e.VATRate != nil {
		v := *e.VATRate
		c.VATRate = &v
	}
	return c
}

// merge overwrites fields of e with the populated fields of update
func (e Entry) merge(update Entry) Entry {
	out := e
	if update.Name != "" {
		out.Name = update.Name
	}
	if update.Section != "" {
		out.Section = update.Section
	}
	if update.Keywords != nil {
		out.Keywords = update.Keywords
	}
	if update.Category != "" {
		out.Category = update.Category
	}
	if update.DutyRate != nil {
		out.DutyRate = update.DutyRate
	}
	if update.VATRate != nil {
		out.VATRate = update.VATRate
	}
	if update.Notes != "" {
		out.Notes = update.Notes
	}
	return out
}
