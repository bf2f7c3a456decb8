// Package duty - Tariff rate resolution and customs payment computation
// A Schedule is immutable once built and safe for concurrent use.
package duty

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"tariff-duty/core/tariff"
)

// Rule is the duty/VAT rule for a four-digit code prefix
type Rule struct {
	// Prefix is the first four digits of the codes this rule covers
	Prefix string `json:"code"`

	// Category groups rules for display only
	Category string `json:"category,omitempty"`

	// DutyRate is the ad valorem duty in percent
	DutyRate decimal.Decimal `json:"dutyRate"`

	// FixedDuty is a per-unit duty; when set and non-zero it replaces DutyRate
	FixedDuty *decimal.Decimal `json:"fixedDuty,omitempty"`

	// VATRate is the VAT in percent
	VATRate decimal.Decimal `json:"vatRate"`

	// Excise is informational
	Excise *decimal.Decimal `json:"excise,omitempty"`

	Notes string `json:"notes,omitempty"`
}

// HasFixedDuty reports whether the rule charges a per-unit amount
func (r Rule) HasFixedDuty() bool {
	return r.FixedDuty != nil && !r.FixedDuty.IsZero()
}

// Bound says which side of the threshold a fee tier covers
type Bound string

const (
	// UpperBound tiers match values <= threshold
	UpperBound Bound = "max"

	// LowerBound tiers match values >= threshold
	LowerBound Bound = "min"
)

// FeeTier maps a customs value band to a clearance fee
type FeeTier struct {
	Bound     Bound           `json:"bound"`
	Threshold decimal.Decimal `json:"threshold"`
	Fee       decimal.Decimal `json:"fee"`
}

// Matches reports whether value falls in the tier
func (t FeeTier) Matches(value decimal.Decimal) bool {
	switch t.Bound {
	case UpperBound:
		return value.LessThanOrEqual(t.Threshold)
	case LowerBound:
		return value.GreaterThanOrEqual(t.Threshold)
	default:
		return false
	}
}

// NonIndexedFees are the item-count fees listed for reference
type NonIndexedFees struct {
	UpTo50Items  decimal.Decimal `json:"upTo50Items"`
	From51To100  decimal.Decimal `json:"from51To100Items"`
	Over100Items decimal.Decimal `json:"over101Items"`
}

// VATClasses are the named VAT rates listed for reference
type VATClasses struct {
	Standard decimal.Decimal `json:"standard"`
	Reduced  decimal.Decimal `json:"reduced"`
	Zero     decimal.Decimal `json:"zero"`
}

// Options configure a Schedule
type Options struct {
	// Year labels the schedule
	Year int

	// DefaultVATRate applies when no rule matches
	DefaultVATRate decimal.Decimal

	// MinFee applies when no fee tier matches
	MinFee decimal.Decimal

	// MaxFee is informational
	MaxFee decimal.Decimal

	// ElectronicsFee replaces the tiered fee for electronics prefixes
	ElectronicsFee decimal.Decimal

	// ElectronicsPrefixes lists the four-digit electronics prefixes
	ElectronicsPrefixes []string

	NonIndexed *NonIndexedFees
	VAT        *VATClasses
}

// Schedule holds the rate tables for one generation
type Schedule struct {
	opts        Options
	rules       []Rule
	byPrefix    map[string]int
	tiers       []FeeTier
	electronics map[string]struct{}
}

// NewSchedule validates and indexes rules and tiers.
// Rule prefixes must be four digits and unique; tier order is kept as given.
func NewSchedule(opts Options, rules []Rule, tiers []FeeTier) (*Schedule, error) {
	s := &Schedule{
		opts:        opts,
		rules:       make([]Rule, 0, len(rules)),
		byPrefix:    make(map[string]int, len(rules)),
		tiers:       append([]FeeTier(nil), tiers...),
		electronics: make(map[string]struct{}, len(opts.ElectronicsPrefixes)),
	}

	for _, r := range rules {
		r.Prefix = tariff.Normalize(r.Prefix)
		if len(r.Prefix) != tariff.PrefixLength || !tariff.IsDigits(r.Prefix) {
			return nil, fmt.Errorf("rule prefix %q: must be %d digits", r.Prefix, tariff.PrefixLength)
		}
		if _, dup := s.byPrefix[r.Prefix]; dup {
			return nil, fmt.Errorf("rule prefix %q: duplicate", r.Prefix)
		}
		if r.DutyRate.IsNegative() || r.VATRate.IsNegative() {
			return nil, fmt.Errorf("rule prefix %q: negative rate", r.Prefix)
		}
		if r.FixedDuty != nil && r.FixedDuty.IsNegative() {
			return nil, fmt.Errorf("rule prefix %q: negative fixed duty", r.Prefix)
		}
		s.byPrefix[r.Prefix] = len(s.rules)
		s.rules = append(s.rules, r)
	}

	for i, t := range s.tiers {
		if t.Bound != UpperBound && t.Bound != LowerBound {
			return nil, fmt.Errorf("fee tier %d: unknown bound %q", i, t.Bound)
		}
		if t.Fee.IsNegative() {
			return nil, fmt.Errorf("fee tier %d: negative fee", i)
		}
	}

	for _, p := range opts.ElectronicsPrefixes {
		p = tariff.Normalize(p)
		if !tariff.IsDigits(p) {
			return nil, fmt.Errorf("electronics prefix %q: must be digits", p)
		}
		s.electronics[p] = struct{}{}
	}

	return s, nil
}

// MustNewSchedule is NewSchedule that panics on invalid tables
func MustNewSchedule(opts Options, rules []Rule, tiers []FeeTier) *Schedule {
	s, err := NewSchedule(opts, rules, tiers)
	if err != nil {
		panic(fmt.Sprintf("duty: invalid schedule: %v", err))
	}
	return s
}

// Options returns the schedule options
func (s *Schedule) Options() Options {
	return s.opts
}

// Rules returns all rules in table order
func (s *Schedule) Rules() []Rule {
	return append([]Rule(nil), s.rules...)
}

// Tiers returns the fee tiers in scan order
func (s *Schedule) Tiers() []FeeTier {
	return append([]FeeTier(nil), s.tiers...)
}

// Categories returns the rules grouped by category label
func (s *Schedule) Categories() map[string][]Rule {
	out := make(map[string][]Rule)
	for _, r := range s.rules {
		out[r.Category] = append(out[r.Category], r)
	}
	return out
}

// CategoryNames returns the sorted category labels
func (s *Schedule) CategoryNames() []string {
	cats := s.Categories()
	names := make([]string, 0, len(cats))
	for name := range cats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveRate looks up the rule for the first four digits of the normalized code.
// A miss is not an error; callers fall back to defaults.
func (s *Schedule) ResolveRate(code string) (Rule, bool) {
	i, ok := s.byPrefix[tariff.Prefix(code)]
	if !ok {
		return Rule{}, false
	}
	return s.rules[i], true
}

// IsElectronics reports whether the code starts with an electronics prefix
func (s *Schedule) IsElectronics(code string) bool {
	n := tariff.Normalize(code)
	for p := range s.electronics {
		if len(n) >= len(p) && n[:len(p)] == p {
			return true
		}
	}
	return false
}

// TieredFee scans the tiers in order and returns the first match, or MinFee
func (s *Schedule) TieredFee(value decimal.Decimal) decimal.Decimal {
	for _, t := range s.tiers {
		if t.Matches(value) {
			return t.Fee
		}
	}
	return s.opts.MinFee
}
