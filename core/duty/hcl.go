package duty

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"

	"tariff-duty/internal/errors"
)

type scheduleFile struct {
	Year                int              `hcl:"year,optional"`
	DefaultVATRate      float64          `hcl:"default_vat_rate"`
	MinFee              float64          `hcl:"min_fee"`
	MaxFee              *float64         `hcl:"max_fee,optional"`
	ElectronicsFee      *float64         `hcl:"electronics_fee,optional"`
	ElectronicsPrefixes []string         `hcl:"electronics_prefixes,optional"`
	VAT                 *vatBlock        `hcl:"vat_classes,block"`
	NonIndexed          *nonIndexedBlock `hcl:"non_indexed_fees,block"`
	Tiers               []tierBlock      `hcl:"fee_tier,block"`
	Rules               []ruleBlock      `hcl:"rule,block"`
}

type vatBlock struct {
	Standard float64 `hcl:"standard"`
	Reduced  float64 `hcl:"reduced"`
	Zero     float64 `hcl:"zero,optional"`
}

type nonIndexedBlock struct {
	UpTo50Items  float64 `hcl:"up_to_50_items"`
	From51To100  float64 `hcl:"from_51_to_100_items"`
	Over100Items float64 `hcl:"over_100_items"`
}

type tierBlock struct {
	MaxValue *float64 `hcl:"max_value,optional"`
	MinValue *float64 `hcl:"min_value,optional"`
	Fee      float64  `hcl:"fee"`
}

type ruleBlock struct {
	Prefix    string   `hcl:"prefix,label"`
	Category  string   `hcl:"category,optional"`
	DutyRate  *float64 `hcl:"duty_rate,optional"`
	FixedDuty *float64 `hcl:"fixed_duty,optional"`
	VATRate   *float64 `hcl:"vat_rate,optional"`
	Excise    *float64 `hcl:"excise,optional"`
	Notes     string   `hcl:"notes,optional"`
}

// LoadHCL reads a schedule file
func LoadHCL(path string) (*Schedule, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Config("failed to read schedule file", err).WithContext("path", path)
	}
	return ParseHCL(src, path)
}

// ParseHCL decodes a schedule from HCL source
func ParseHCL(src []byte, filename string) (*Schedule, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.Parsing("failed to parse schedule", diagError(diags))
	}

	var f scheduleFile
	if diags := gohcl.DecodeBody(file.Body, nil, &f); diags.HasErrors() {
		return nil, errors.Parsing("failed to decode schedule", diagError(diags))
	}

	opts := Options{
		Year:                f.Year,
		DefaultVATRate:      decimal.NewFromFloat(f.DefaultVATRate),
		MinFee:              decimal.NewFromFloat(f.MinFee),
		ElectronicsPrefixes: f.ElectronicsPrefixes,
	}
	if f.MaxFee != nil {
		opts.MaxFee = decimal.NewFromFloat(*f.MaxFee)
	}
	if f.ElectronicsFee != nil {
		opts.ElectronicsFee = decimal.NewFromFloat(*f.ElectronicsFee)
	} else if len(f.ElectronicsPrefixes) > 0 {
		return nil, errors.Config("electronics_prefixes requires electronics_fee", nil)
	}
	if f.VAT != nil {
		opts.VAT = &VATClasses{
			Standard: decimal.NewFromFloat(f.VAT.Standard),
			Reduced:  decimal.NewFromFloat(f.VAT.Reduced),
			Zero:     decimal.NewFromFloat(f.VAT.Zero),
		}
	}
	if f.NonIndexed != nil {
		opts.NonIndexed = &NonIndexedFees{
			UpTo50Items:  decimal.NewFromFloat(f.NonIndexed.UpTo50Items),
			From51To100:  decimal.NewFromFloat(f.NonIndexed.From51To100),
			Over100Items: decimal.NewFromFloat(f.NonIndexed.Over100Items),
		}
	}

	tiers := make([]FeeTier, 0, len(f.Tiers))
	for i, t := range f.Tiers {
		switch {
		case t.MaxValue != nil && t.MinValue != nil:
			return nil, errors.Newf(errors.TypeConfig, "fee_tier %d: set only one of max_value and min_value", i)
		case t.MaxValue != nil:
			tiers = append(tiers, FeeTier{Bound: UpperBound, Threshold: decimal.NewFromFloat(*t.MaxValue), Fee: decimal.NewFromFloat(t.Fee)})
		case t.MinValue != nil:
			tiers = append(tiers, FeeTier{Bound: LowerBound, Threshold: decimal.NewFromFloat(*t.MinValue), Fee: decimal.NewFromFloat(t.Fee)})
		default:
			return nil, errors.Newf(errors.TypeConfig, "fee_tier %d: max_value or min_value is required", i)
		}
	}

	rules := make([]Rule, 0, len(f.Rules))
	for _, r := range f.Rules {
		rule := Rule{
			Prefix:   r.Prefix,
			Category: r.Category,
			DutyRate: decimal.Zero,
			VATRate:  opts.DefaultVATRate,
			Notes:    r.Notes,
		}
		if r.DutyRate != nil {
			rule.DutyRate = decimal.NewFromFloat(*r.DutyRate)
		}
		if r.VATRate != nil {
			rule.VATRate = decimal.NewFromFloat(*r.VATRate)
		}
		if r.FixedDuty != nil {
			v := decimal.NewFromFloat(*r.FixedDuty)
			rule.FixedDuty = &v
		}
		if r.Excise != nil {
			v := decimal.NewFromFloat(*r.Excise)
			rule.Excise = &v
		}
		rules = append(rules, rule)
	}

	s, err := NewSchedule(opts, rules, tiers)
	if err != nil {
		return nil, errors.Config("invalid schedule", err).WithContext("file", filename)
	}
	return s, nil
}

func diagError(diags hcl.Diagnostics) error {
	msgs := make([]string, 0, len(diags))
	for _, diag := range diags {
		if diag.Severity != hcl.DiagError {
			continue
		}
		if diag.Subject != nil {
			msgs = append(msgs, fmt.Sprintf("line %d: %s: %s", diag.Subject.Start.Line, diag.Summary, diag.Detail))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: %s", diag.Summary, diag.Detail))
		}
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
